package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"callsight/internal/snowflake"
	"callsight/pkg/errors"
)

// TableColumns is the schema of the normalized call table
var TableColumns = []snowflake.Column{
	{Name: "CALL_ID", Type: "STRING"},
	{Name: "TRANSCRIPT", Type: "STRING"},
	{Name: "CALL_START_SECONDS", Type: "NUMBER"},
	{Name: "CALL_END_SECONDS", Type: "NUMBER"},
	{Name: "DURATION_MINUTES", Type: "FLOAT"},
	{Name: "SPEAKER_COUNT", Type: "NUMBER"},
	{Name: "SENTENCE_COUNT", Type: "NUMBER"},
	{Name: "PARTICIPANTS", Type: "STRING"},
	{Name: "EMAILS", Type: "STRING"},
	{Name: "CUSTOMER_EMAILS", Type: "STRING"},
	{Name: "TOPICS", Type: "STRING"},
	{Name: "DOMAINS", Type: "STRING"},
}

// Publisher writes normalized calls to Snowflake with full-replace
// semantics: rows are loaded into a staging table which is then swapped
// with the live table. A failed run never touches the previous output.
type Publisher struct {
	svc   *snowflake.Service
	table string
}

// NewPublisher creates a publisher targeting the given table
func NewPublisher(svc *snowflake.Service, table string) *Publisher {
	return &Publisher{svc: svc, table: table}
}

// StagingTable returns the name of the staging table used during publish
func (p *Publisher) StagingTable() string {
	return p.table + "_STAGE"
}

// Publish replaces the live table contents with the given calls
func (p *Publisher) Publish(ctx context.Context, calls []NormalizedCall) error {
	stage := p.StagingTable()

	if err := p.svc.CreateTable(ctx, p.table, TableColumns); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "Failed to ensure live table exists")
	}
	if err := p.svc.DropTable(ctx, stage); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "Failed to reset staging table")
	}
	if err := p.svc.CreateTable(ctx, stage, TableColumns); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "Failed to create staging table")
	}

	if err := p.svc.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		return insertCalls(ctx, tx, stage, calls)
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "Failed to load staging table").
			WithContext("table", stage)
	}

	if err := p.svc.SwapTables(ctx, p.table, stage); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "Failed to swap staging table into place").
			WithContext("table", p.table)
	}

	// Stage now holds the previous generation; drop it. Not fatal if this
	// fails, the next run resets the stage anyway.
	_ = p.svc.DropTable(ctx, stage)

	return nil
}

func insertCalls(ctx context.Context, tx *sql.Tx, table string, calls []NormalizedCall) error {
	names := make([]string, len(TableColumns))
	placeholders := make([]string, len(TableColumns))
	for i, col := range TableColumns {
		names[i] = col.Name
		placeholders[i] = "?"
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to prepare insert statement")
	}
	defer stmt.Close()

	for _, call := range calls {
		if _, err := stmt.ExecContext(ctx,
			call.CallID,
			call.Transcript,
			call.StartSeconds,
			call.EndSeconds,
			call.DurationMinutes,
			call.SpeakerCount,
			call.SentenceCount,
			call.Participants,
			call.Emails,
			call.CustomerEmails,
			call.Topics,
			call.Domains,
		); err != nil {
			return errors.SQLError(fmt.Sprintf("Failed to insert call %s", call.CallID), "INSERT", err).
				WithContext("call_id", call.CallID)
		}
	}

	return nil
}
