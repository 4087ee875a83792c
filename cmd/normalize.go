package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"callsight/internal/transcript"
	"callsight/internal/ui"
)

var (
	normalizeFile   string
	normalizeDryRun bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a transcript export and publish the call table",
	Long: "Reads a transcript export, reconstructs one chronological transcript per call " +
		"with call-level metadata, and replaces the normalized call table in Snowflake. " +
		"The replace is atomic: a failed run leaves the previous table untouched.",
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	svc, cfg, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	path := normalizeFile
	if path == "" {
		path = cfg.Ingest.ExportPath
	}
	if path == "" {
		return fmt.Errorf("no export file given (use --file or set ingest.export_path)")
	}

	export, err := transcript.LoadExport(path)
	if err != nil {
		return err
	}

	calls, report, err := transcript.Normalize(export.Calls, export.Users, transcript.Options{
		InternalDomains: cfg.Ingest.InternalDomains,
	})
	if err != nil {
		return err
	}

	log.WithField("normalized", len(calls)).
		WithField("skipped", len(report.Skipped)).
		Info("export normalized")

	printReport(report)

	if normalizeDryRun {
		ui.ShowInfo("Dry run: nothing published")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	publisher := transcript.NewPublisher(svc, cfg.Warehouse.NormalizedCallsTable)
	if err := publisher.Publish(ctx, calls); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Published %d calls to %s", len(calls), cfg.Warehouse.NormalizedCallsTable))
	return nil
}

func printReport(report *transcript.Report) {
	fmt.Printf("Calls in export:  %s\n", color.GreenString("%d", report.CallsIn))
	fmt.Printf("Calls normalized: %s\n", color.GreenString("%d", report.CallsOut))

	if len(report.Skipped) > 0 {
		fmt.Printf("Calls skipped:    %s\n", color.YellowString("%d", len(report.Skipped)))
		for _, s := range report.Skipped {
			ui.ShowWarning(fmt.Sprintf("%s skipped: %s", s.CallID, s.Reason))
		}
	}
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeFile, "file", "f", "", "transcript export file")
	normalizeCmd.Flags().BoolVar(&normalizeDryRun, "dry-run", false, "normalize and report without publishing")
	rootCmd.AddCommand(normalizeCmd)
}
