package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"callsight/internal/cortex"
	"callsight/internal/snowflake"
	"callsight/internal/ui"
)

var (
	searchColumns []string
	searchLimit   int
	searchFormat  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query the Cortex search service over normalized transcripts",
	Long: "Runs a natural-language query (AND/OR/NOT operators supported) against the " +
		"configured Cortex search service and prints the ranked results.",
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, cfg, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.Cortex.SearchService == "" {
		return fmt.Errorf("no cortex.search_service configured (run 'callsight setup')")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Cortex.SearchLimit
	}

	columns := searchColumns
	if len(columns) == 0 {
		columns = []string{"CALL_ID", "TRANSCRIPT", "PARTICIPANTS", "TOPICS"}
	}

	cx := cortex.NewService(svc, cfg.Cortex.Model)
	hits, err := cx.Search(ctx, cortex.SearchRequest{
		Service: cfg.Cortex.SearchService,
		Query:   args[0],
		Columns: columns,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		ui.ShowInfo("No results")
		return nil
	}

	rs := &snowflake.ResultSet{Columns: columns}
	for _, hit := range hits {
		row := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := hit[col]; ok {
				row[i] = fmt.Sprintf("%v", v)
			} else if v, ok := hit[strings.ToLower(col)]; ok {
				row[i] = fmt.Sprintf("%v", v)
			}
		}
		rs.Rows = append(rs.Rows, row)
	}

	return ui.RenderResults(os.Stdout, rs, searchFormat)
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchColumns, "columns", nil, "columns to return")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "o", ui.FormatTable, "output format: table, json or csv")
	rootCmd.AddCommand(searchCmd)
}
