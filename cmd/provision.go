package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"callsight/internal/transcript"
	"callsight/internal/ui"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the database, schema and warehouse tables",
	RunE:  runProvision,
}

func runProvision(cmd *cobra.Command, args []string) error {
	svc, cfg, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := svc.CreateDatabase(ctx, cfg.Snowflake.Database); err != nil {
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Database %s ready", cfg.Snowflake.Database))

	if err := svc.CreateSchema(ctx, cfg.Snowflake.Database, cfg.Snowflake.Schema); err != nil {
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Schema %s.%s ready", cfg.Snowflake.Database, cfg.Snowflake.Schema))

	if err := svc.CreateTable(ctx, cfg.Warehouse.RawCallsTable, transcript.RawCallColumns); err != nil {
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Table %s ready", cfg.Warehouse.RawCallsTable))

	if err := svc.CreateTable(ctx, cfg.Warehouse.UsersTable, transcript.UserColumns); err != nil {
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Table %s ready", cfg.Warehouse.UsersTable))

	if err := svc.CreateTable(ctx, cfg.Warehouse.NormalizedCallsTable, transcript.TableColumns); err != nil {
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Table %s ready", cfg.Warehouse.NormalizedCallsTable))

	ui.ShowSuccess("Provisioning complete")
	return nil
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}
