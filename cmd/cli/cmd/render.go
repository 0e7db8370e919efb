package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

var renderCmd = &cobra.Command{
	Use:   "render <config.yaml>",
	Short: "Print the fully resolved configuration",
	Long: `Render resolves the configuration through its template chain,
applies overrides, environment interpolation and empty-string disables,
and prints the resulting document as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: renderConfig,
}

func renderConfig(cmd *cobra.Command, args []string) error {
	index, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	cfg, err := simconfig.LoadFile(args[0])
	if err != nil {
		return err
	}

	res, err := simconfig.Resolve(cfg, index, simconfig.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	for _, path := range res.Disabled {
		logger.Debugf("Disabled: %s", path)
	}

	out := map[string]any{"modules": res.Modules}
	for k, v := range res.Doc {
		out[k] = v
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}
