package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"callsight/internal/common"
	"callsight/internal/cortex"
	"callsight/internal/snowflake"
	"callsight/pkg/errors"
)

var (
	analyzeCallID string
	analyzeText   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run Cortex AI functions over call transcripts",
}

var classifyCmd = &cobra.Command{
	Use:   "classify <category> [category...]",
	Short: "Classify a transcript into one of the given categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCortex(cmd, func(ctx context.Context, cx *cortex.Service, text string) error {
			label, err := cx.Classify(ctx, text, args)
			if err != nil {
				return err
			}
			fmt.Println(label)
			return nil
		})
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <predicate>",
	Short: "Evaluate a natural-language yes/no predicate against a transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCortex(cmd, func(ctx context.Context, cx *cortex.Service, text string) error {
			ok, err := cx.Filter(ctx, text, args[0])
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		})
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCortex(cmd, func(ctx context.Context, cx *cortex.Service, text string) error {
			summary, err := cx.Summarize(ctx, text)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		})
	},
}

var similarityCmd = &cobra.Command{
	Use:   "similarity <other-text>",
	Short: "Score semantic similarity between a transcript and a second text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCortex(cmd, func(ctx context.Context, cx *cortex.Service, text string) error {
			score, err := cx.Similarity(ctx, text, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%.4f\n", score)
			return nil
		})
	},
}

// withCortex connects, resolves the subject text from --call-id or --text,
// and hands both to the given function.
func withCortex(cmd *cobra.Command, fn func(context.Context, *cortex.Service, string) error) error {
	if analyzeCallID == "" && analyzeText == "" {
		return fmt.Errorf("one of --call-id or --text is required")
	}

	svc, cfg, err := loadConfigAndConnect()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text := analyzeText
	if analyzeCallID != "" {
		text, err = fetchTranscript(ctx, svc, cfg.Warehouse.NormalizedCallsTable, analyzeCallID)
		if err != nil {
			return err
		}
	}

	return fn(ctx, cortex.NewService(svc, cfg.Cortex.Model), text)
}

func fetchTranscript(ctx context.Context, svc *snowflake.Service, table, callID string) (string, error) {
	if err := common.ValidateIdentifier(table); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid table name")
	}

	var transcriptText sql.NullString
	row := svc.QueryRowContext(ctx,
		fmt.Sprintf("SELECT TRANSCRIPT FROM %s WHERE CALL_ID = ?", table), callID)
	if err := row.Scan(&transcriptText); err != nil {
		if err == sql.ErrNoRows {
			return "", errors.New(errors.ErrCodeNoResults,
				fmt.Sprintf("Call %s not found in %s", callID, table)).
				WithSuggestions("Run 'callsight normalize' first", "Check the call id")
		}
		return "", errors.SQLError("Failed to fetch transcript", "SELECT TRANSCRIPT", err)
	}
	if !transcriptText.Valid || strings.TrimSpace(transcriptText.String) == "" {
		return "", errors.New(errors.ErrCodeNoResults,
			fmt.Sprintf("Call %s has an empty transcript", callID))
	}
	return transcriptText.String, nil
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeCallID, "call-id", "", "analyze the transcript of this call")
	analyzeCmd.PersistentFlags().StringVar(&analyzeText, "text", "", "analyze this literal text instead of a call")

	analyzeCmd.AddCommand(classifyCmd)
	analyzeCmd.AddCommand(filterCmd)
	analyzeCmd.AddCommand(summarizeCmd)
	analyzeCmd.AddCommand(similarityCmd)
	rootCmd.AddCommand(analyzeCmd)
}
