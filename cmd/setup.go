package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"callsight/internal/config"
	"callsight/internal/security"
	"callsight/internal/ui"
	"callsight/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initial configuration setup",
	Run:   runSetup,
}

func runSetup(cmd *cobra.Command, args []string) {
	ui.ShowHeader("Callsight Setup")
	fmt.Println()

	if config.Exists() {
		var overwrite bool
		prompt := &survey.Confirm{
			Message: "Configuration already exists. Do you want to overwrite it?",
			Default: false,
		}
		survey.AskOne(prompt, &overwrite)
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return
		}
	}

	cfg := &models.Config{}

	fmt.Println("Snowflake Configuration")
	fmt.Println("-----------------------")

	snowflakeQs := []*survey.Question{
		{
			Name: "account",
			Prompt: &survey.Input{
				Message: "Snowflake Account (e.g., xy12345.us-east-1):",
			},
			Validate: survey.Required,
		},
		{
			Name: "username",
			Prompt: &survey.Input{
				Message: "Username:",
			},
			Validate: survey.Required,
		},
		{
			Name: "role",
			Prompt: &survey.Input{
				Message: "Role:",
				Default: "SYSADMIN",
			},
			Validate: survey.Required,
		},
		{
			Name: "warehouse",
			Prompt: &survey.Input{
				Message: "Warehouse:",
				Default: "COMPUTE_WH",
			},
			Validate: survey.Required,
		},
		{
			Name: "database",
			Prompt: &survey.Input{
				Message: "Database:",
				Default: "SALES_CALLS",
			},
			Validate: survey.Required,
		},
		{
			Name: "schema",
			Prompt: &survey.Input{
				Message: "Schema:",
				Default: "PUBLIC",
			},
			Validate: survey.Required,
		},
	}

	if err := survey.Ask(snowflakeQs, &cfg.Snowflake); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var password string
	if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Password goes to the credential store, never the YAML file
	store, err := security.NewCredentialStore()
	if err != nil {
		fmt.Printf("Error opening credential store: %v\n", err)
		os.Exit(1)
	}
	if err := store.Set(passwordCredential, password); err != nil {
		fmt.Printf("Error storing password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Normalization Configuration")
	fmt.Println("---------------------------")

	var internalDomains string
	if err := survey.AskOne(&survey.Input{
		Message: "Internal email domains to exclude from customer lists (comma separated):",
	}, &internalDomains); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, d := range strings.Split(internalDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			cfg.Ingest.InternalDomains = append(cfg.Ingest.InternalDomains, d)
		}
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Cortex search service (db.schema.name, optional):",
	}, &cfg.Cortex.SearchService); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Defaults()

	if err := config.Save(cfg); err != nil {
		fmt.Printf("Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", config.GetConfigFile())
	fmt.Println("Run 'callsight provision' to create the warehouse tables")
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
