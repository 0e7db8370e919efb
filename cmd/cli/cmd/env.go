package cmd

import (
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skysim-labs/skysim/pkg/config"
	"github.com/skysim-labs/skysim/pkg/dataservice"
	"github.com/skysim-labs/skysim/pkg/logger"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage catalog data endpoints",
	Long:  `Manage the remote catalog data endpoints stored in ~/.skysim/environments.yaml`,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured endpoints",
	RunE:  listEndpoints,
}

var envAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new endpoint",
	RunE:  addEndpoint,
}

var envRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove an endpoint",
	RunE:  removeEndpoint,
}

var envTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Test the connection to an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  testEndpoint,
}

func init() {
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envAddCmd)
	envCmd.AddCommand(envRemoveCmd)
	envCmd.AddCommand(envTestCmd)
}

func listEndpoints(cmd *cobra.Command, args []string) error {
	eps, err := config.LoadEndpoints()
	if err != nil {
		return fmt.Errorf("failed to load endpoints: %w", err)
	}

	if len(eps.Endpoints) == 0 {
		fmt.Println("No endpoints configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tURL\tAPI KEY")
	_, _ = fmt.Fprintln(w, "----\t---\t-------")
	for _, ep := range eps.Endpoints {
		keyInfo := "none"
		if ep.APIKeyEnv != "" {
			keyInfo = fmt.Sprintf("env %s", ep.APIKeyEnv)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ep.Name, ep.URL, keyInfo)
	}
	return w.Flush()
}

func addEndpoint(cmd *cobra.Command, args []string) error {
	eps, err := config.LoadEndpoints()
	if err != nil {
		return fmt.Errorf("failed to load endpoints: %w", err)
	}

	var ep config.Endpoint

	namePrompt := &survey.Input{Message: "Endpoint name:"}
	if err := survey.AskOne(namePrompt, &ep.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	urlPrompt := &survey.Input{
		Message: "Data service URL:",
		Default: "https://data.example.org",
	}
	if err := survey.AskOne(urlPrompt, &ep.URL, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	keyPrompt := &survey.Input{
		Message: "API key environment variable (empty for none):",
		Help:    "Name of the environment variable that holds the API key; the key itself is never stored",
	}
	if err := survey.AskOne(keyPrompt, &ep.APIKeyEnv); err != nil {
		return err
	}

	if err := eps.Add(ep); err != nil {
		return err
	}
	if err := config.SaveEndpoints(eps); err != nil {
		return fmt.Errorf("failed to save endpoints: %w", err)
	}

	logger.Successf("Endpoint %s added", ep.Name)
	return nil
}

func removeEndpoint(cmd *cobra.Command, args []string) error {
	eps, err := config.LoadEndpoints()
	if err != nil {
		return fmt.Errorf("failed to load endpoints: %w", err)
	}
	if len(eps.Endpoints) == 0 {
		fmt.Println("No endpoints to remove")
		return nil
	}

	names := make([]string, len(eps.Endpoints))
	for i, ep := range eps.Endpoints {
		names[i] = ep.Name
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select endpoint to remove:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Removal cancelled")
		return nil
	}

	if err := eps.Remove(selected); err != nil {
		return err
	}
	if err := config.SaveEndpoints(eps); err != nil {
		return fmt.Errorf("failed to save endpoints: %w", err)
	}

	logger.Successf("Endpoint %s removed", selected)
	return nil
}

func testEndpoint(cmd *cobra.Command, args []string) error {
	eps, err := config.LoadEndpoints()
	if err != nil {
		return fmt.Errorf("failed to load endpoints: %w", err)
	}
	ep, err := eps.Get(args[0])
	if err != nil {
		return err
	}

	apiKey := dataservice.GetAPIKey(ep.APIKeyEnv)
	if apiKey == "" && ep.APIKeyEnv != "" {
		apiKey, err = readKeyNoEcho(ep.APIKeyEnv)
		if err != nil {
			return err
		}
	}

	client, err := dataservice.NewClient(dataservice.Config{BaseURL: ep.URL, APIKey: apiKey})
	if err != nil {
		return err
	}

	return logger.WithSpinner(fmt.Sprintf("Connecting to %s", ep.URL), func() error {
		return client.ValidateConnection(cmd.Context())
	})
}

// readKeyNoEcho reads an API key from the terminal without echoing it.
func readKeyNoEcho(envName string) (string, error) {
	fmt.Printf("%s is not set. Enter API key: ", envName)
	key, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return string(key), nil
}
