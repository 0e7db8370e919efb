package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skysim-labs/skysim/pkg/dataservice"
	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/schema"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>...",
	Short: "Validate configuration files",
	Long: `Validate parses each configuration, resolves its template chain and
checks the result against the configuration schema. Local catalog file
references are checked for existence.`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateConfigs,
}

func validateConfigs(cmd *cobra.Command, args []string) error {
	index, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	failures := 0
	for _, path := range args {
		if err := validateOne(path, index, validator); err != nil {
			logger.Errorf("%s: %v", path, err)
			failures++
			continue
		}
		logger.Successf("%s is valid", path)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failures, len(args))
	}
	return nil
}

func validateOne(path string, index simconfig.TemplateSource, validator *schema.Validator) error {
	cfg, err := simconfig.LoadFile(path)
	if err != nil {
		return err
	}

	res, err := simconfig.Resolve(cfg, index, simconfig.ResolveOptions{})
	if err != nil {
		return err
	}

	if err := validator.Validate(map[string]any(res.Doc)); err != nil {
		return err
	}

	return checkFileRefs(res)
}

// checkFileRefs verifies that local catalog references point at existing
// files. Remote URLs are not touched.
func checkFileRefs(res *simconfig.Resolved) error {
	refs := []string{
		"input.sky_catalog.file_name",
		"input.instance_catalog.file_name",
	}
	for _, key := range refs {
		if !res.Doc.Has(key) {
			continue
		}
		name, err := res.Doc.GetString(key)
		if err != nil {
			return err
		}
		if dataservice.IsRemote(name) {
			continue
		}
		resolved := res.Source.ResolvePath(name)
		if _, err := os.Stat(resolved); err != nil {
			return fmt.Errorf("%s: referenced file %s not found", key, resolved)
		}
	}
	return nil
}
