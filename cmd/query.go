package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"callsight/internal/ui"
)

var queryFormat string

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run an ad-hoc query and print the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Execute a DDL/DML statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, _, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rs, err := svc.QueryRows(ctx, args[0])
	if err != nil {
		return err
	}

	if len(rs.Rows) == 0 {
		ui.ShowInfo("Query returned no rows")
		return nil
	}

	return ui.RenderResults(os.Stdout, rs, queryFormat)
}

func runExec(cmd *cobra.Command, args []string) error {
	svc, _, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := svc.ExecContext(ctx, args[0])
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil {
		ui.ShowSuccess(fmt.Sprintf("Statement executed, %d rows affected", affected))
	} else {
		ui.ShowSuccess("Statement executed")
	}
	return nil
}

func init() {
	queryCmd.Flags().StringVarP(&queryFormat, "format", "o", ui.FormatTable, "output format: table, json or csv")
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)
}
