package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/prompt"
	"github.com/skysim-labs/skysim/pkg/report"
	"github.com/skysim-labs/skysim/pkg/schema"
	"github.com/skysim-labs/skysim/pkg/simconfig"
	"github.com/skysim-labs/skysim/pkg/templates"

	// Import pipeline modules to register them
	_ "github.com/skysim-labs/skysim/pkg/modules/atmpsf"
	_ "github.com/skysim-labs/skysim/pkg/modules/imsim"
	_ "github.com/skysim-labs/skysim/pkg/modules/instcat"
	_ "github.com/skysim-labs/skysim/pkg/modules/skycat"
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run a simulation from a configuration file",
	Long: `Run resolves the configuration through its template chain, prompts
for any template parameters the document leaves unset, validates the
result and executes the simulation pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().String("report-format", "json", "run report format (json, markdown)")
	runCmd.Flags().Bool("no-prompt", false, "fail instead of prompting for missing parameters")
}

func runSimulation(cmd *cobra.Command, args []string) error {
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

	if err := promptForMissing(cmd, index, cfg, res); err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	if err := validator.Validate(map[string]any(res.Doc)); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", args[0], err)
	}

	plan, err := pipeline.BuildPlan(res, pipeline.DefaultRegistry)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		logger.Warn("Received interrupt signal, stopping run...")
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting run: camera %s", plan.Camera))
	if plan.CatalogName != "" {
		logger.LogKeyValue("Catalog", plan.CatalogName)
	}
	logger.LogKeyValue("Output", plan.OutputDir)
	logger.LogKeyValue("Files", plan.NFiles)
	logger.LogKeyValue("Seed", plan.Seed)
	logger.LogList("Modules", res.Modules)

	runner := pipeline.NewRunner(plan)
	runner.OnFileDone = func(fr pipeline.FileResult) {
		logger.Debugf("Finished %s (%d objects, seed %d)", fr.FileName, fr.NObjects, fr.Seed)
	}

	result, runErr := runner.Run(ctx)
	if result != nil {
		format, _ := cmd.Flags().GetString("report-format")
		rep := report.Build(result)
		if _, err := report.Save(rep, report.Config{OutputDir: plan.OutputDir, Format: format}); err != nil {
			logger.Errorf("Failed to save run report: %v", err)
		}
		report.PrintSummary(rep)
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}

	logger.Success("Run completed successfully")
	return nil
}

// promptForMissing asks for template parameters the user document does
// not set itself and writes the answers into the resolved document.
func promptForMissing(cmd *cobra.Command, index *templates.Index, cfg *simconfig.Config, res *simconfig.Resolved) error {
	params, err := index.Parameters(cfg)
	if err != nil {
		return err
	}

	// Parameters the user's own overrides pin are never prompted for.
	userSet, err := simconfig.Expand(cfg.Overrides)
	if err != nil {
		return err
	}
	var missing []templates.Parameter
	for _, p := range params {
		if userSet.Has(p.Key) {
			continue
		}
		missing = append(missing, p)
	}
	if len(missing) == 0 {
		return nil
	}

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		for _, p := range missing {
			if p.Required {
				return fmt.Errorf("parameter %s (%s) not set and prompting disabled", p.Name, p.Key)
			}
		}
		return nil
	}

	values, err := prompt.ForParameters(missing)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}
	return prompt.Apply(res.Doc, missing, values)
}
