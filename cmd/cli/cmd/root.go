package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/templates"
)

var (
	cfgFile      string
	templateDirs []string
	logLevel     string
	noColor      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skysim",
	Short: "Sky survey image simulation CLI",
	Long: `skysim drives survey image simulations from layered YAML
configuration: a user document selects pipeline modules and a template,
then overrides individual settings with dotted keys.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file (default is $HOME/.skysim/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&templateDirs, "template-dir", nil, "additional template directories")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(envCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	logger.SetLevel(logger.ParseLevel(logLevel))
	logger.SetNoColor(noColor)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/.skysim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SKYSIM")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// loadTemplates builds the template index from the built-ins, the
// configured template directories and any --template-dir flags.
func loadTemplates() (*templates.Index, error) {
	dirs := viper.GetStringSlice("template_dirs")
	dirs = append(dirs, templateDirs...)
	return templates.Load(dirs)
}
