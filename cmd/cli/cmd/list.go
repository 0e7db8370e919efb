package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skysim-labs/skysim/pkg/pipeline"

	// Import pipeline modules so the registry is populated
	_ "github.com/skysim-labs/skysim/pkg/modules/atmpsf"
	_ "github.com/skysim-labs/skysim/pkg/modules/imsim"
	_ "github.com/skysim-labs/skysim/pkg/modules/instcat"
	_ "github.com/skysim-labs/skysim/pkg/modules/skycat"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates and pipeline modules",
	RunE:  listAvailable,
}

func listAvailable(cmd *cobra.Command, args []string) error {
	index, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "TEMPLATE\tVERSION\tPARAMETERS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "--------\t-------\t----------\t-----------")
	for _, info := range index.List() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			info.Name, info.Version, len(info.Parameters), info.Description)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "MODULE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "------\t-----------")
	for _, name := range pipeline.DefaultRegistry.List() {
		mod, err := pipeline.DefaultRegistry.Get(name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, mod.Description())
	}

	return w.Flush()
}
