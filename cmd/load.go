package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"callsight/internal/transcript"
	"callsight/internal/ui"
)

var loadCmd = &cobra.Command{
	Use:   "load [export.json]",
	Short: "Load a transcript export into the raw Snowflake tables",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	svc, cfg, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	path := cfg.Ingest.ExportPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no export file given and no ingest.export_path configured")
	}

	export, err := transcript.LoadExport(path)
	if err != nil {
		return err
	}

	log.WithField("calls", len(export.Calls)).
		WithField("users", len(export.Users)).
		Info("export parsed")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ingestor := transcript.NewIngestor(svc, cfg.Warehouse.RawCallsTable, cfg.Warehouse.UsersTable)
	batchID, err := ingestor.Ingest(ctx, export)
	if err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Loaded %d calls and %d users (batch %s)",
		len(export.Calls), len(export.Users), batchID))
	return nil
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
