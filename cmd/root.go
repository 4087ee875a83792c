package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"callsight/internal/logger"
	"callsight/internal/ui"
)

var (
	log = logger.New()

	rootCmd = &cobra.Command{
		Use:   "callsight",
		Short: "Analyze sales-call transcripts with Snowflake Cortex",
		Long: "Callsight - A CLI tool for loading call transcript exports into Snowflake, " +
			"normalizing them into analytics-ready tables and running Cortex AI functions over them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Optional .env for local development
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(fmt.Sprintf("%s/.callsight", home))
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay for now
	}
}
