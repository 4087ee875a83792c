package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"callsight/internal/snowflake"
	"callsight/pkg/errors"
)

// RawCallColumns is the schema of the raw call staging table. The nested
// segment/sentence structure is kept as VARIANT so the export survives
// loading byte-for-byte.
var RawCallColumns = []snowflake.Column{
	{Name: "CALL_ID", Type: "STRING"},
	{Name: "BATCH_ID", Type: "STRING"},
	{Name: "PAYLOAD", Type: "VARIANT"},
	{Name: "LOADED_AT", Type: "TIMESTAMP_NTZ"},
}

// UserColumns is the schema of the user directory table
var UserColumns = []snowflake.Column{
	{Name: "ID", Type: "STRING"},
	{Name: "FIRST_NAME", Type: "STRING"},
	{Name: "LAST_NAME", Type: "STRING"},
	{Name: "EMAIL", Type: "STRING"},
	{Name: "TITLE", Type: "STRING"},
	{Name: "CREATED_AT", Type: "TIMESTAMP_NTZ"},
	{Name: "BATCH_ID", Type: "STRING"},
}

// Ingestor loads a validated export into the raw Snowflake tables
type Ingestor struct {
	svc        *snowflake.Service
	callsTable string
	usersTable string
}

// NewIngestor creates an ingestor targeting the raw tables
func NewIngestor(svc *snowflake.Service, callsTable, usersTable string) *Ingestor {
	return &Ingestor{svc: svc, callsTable: callsTable, usersTable: usersTable}
}

// Ingest writes the export to the raw tables in one transaction and
// returns the batch id shared by every loaded row.
func (in *Ingestor) Ingest(ctx context.Context, export *Export) (string, error) {
	if err := in.svc.CreateTable(ctx, in.callsTable, RawCallColumns); err != nil {
		return "", err
	}
	if err := in.svc.CreateTable(ctx, in.usersTable, UserColumns); err != nil {
		return "", err
	}

	batchID := uuid.New().String()

	err := in.svc.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		callStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (CALL_ID, BATCH_ID, PAYLOAD, LOADED_AT) SELECT ?, ?, PARSE_JSON(?), CURRENT_TIMESTAMP()",
			in.callsTable))
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to prepare call insert")
		}
		defer callStmt.Close()

		for _, call := range export.Calls {
			payload, err := json.Marshal(call)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeExportMalformed,
					fmt.Sprintf("Failed to re-encode call %s", call.CallID))
			}
			if _, err := callStmt.ExecContext(ctx, call.CallID, batchID, string(payload)); err != nil {
				return errors.SQLError(fmt.Sprintf("Failed to insert raw call %s", call.CallID), "INSERT", err)
			}
		}

		userStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (ID, FIRST_NAME, LAST_NAME, EMAIL, TITLE, CREATED_AT, BATCH_ID) VALUES (?, ?, ?, ?, ?, ?, ?)",
			in.usersTable))
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to prepare user insert")
		}
		defer userStmt.Close()

		for _, user := range export.Users {
			if _, err := userStmt.ExecContext(ctx,
				user.ID, user.FirstName, user.LastName, user.Email, user.Title, user.CreatedAt, batchID,
			); err != nil {
				return errors.SQLError(fmt.Sprintf("Failed to insert user %s", user.ID), "INSERT", err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return batchID, nil
}
