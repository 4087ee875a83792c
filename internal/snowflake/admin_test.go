package snowflake

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callsight/pkg/errors"
)

func TestCreateTable(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS CALL_TRANSCRIPTS \(CALL_ID VARCHAR\(255\), TRANSCRIPT STRING\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.CreateTable(context.Background(), "CALL_TRANSCRIPTS", []Column{
		{Name: "CALL_ID", Type: "VARCHAR(255)"},
		{Name: "TRANSCRIPT", Type: "STRING"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableRejectsBadIdentifiers(t *testing.T) {
	svc, _ := newMockService(t)

	tests := []struct {
		name    string
		table   string
		columns []Column
	}{
		{
			name:    "table name with injection",
			table:   "CALLS; DROP TABLE USERS",
			columns: []Column{{Name: "ID", Type: "STRING"}},
		},
		{
			name:    "column name with quote",
			table:   "CALLS",
			columns: []Column{{Name: `ID"`, Type: "STRING"}},
		},
		{
			name:    "no columns",
			table:   "CALLS",
			columns: nil,
		},
		{
			name:    "unsupported column type",
			table:   "CALLS",
			columns: []Column{{Name: "ID", Type: "GEOGRAPHY"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateTable(context.Background(), tt.table, tt.columns)
			assert.Error(t, err)
		})
	}
}

func TestSwapTables(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`ALTER TABLE CALL_TRANSCRIPTS_STAGE SWAP WITH CALL_TRANSCRIPTS`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.SwapTables(context.Background(), "CALL_TRANSCRIPTS_STAGE", "CALL_TRANSCRIPTS")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapTablesRejectsBadIdentifier(t *testing.T) {
	svc, _ := newMockService(t)

	err := svc.SwapTables(context.Background(), "CALLS", "CALLS WHERE 1=1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidIdentifier, errors.GetErrorCode(err))
}

func TestInsertBindsValues(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`INSERT INTO CRM_USERS \(ID, EMAIL\) VALUES \(\?, \?\)`).
		WithArgs("u1", "alice@acme.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Insert(context.Background(), "CRM_USERS",
		[]string{"ID", "EMAIL"}, []interface{}{"u1", "alice@acme.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRejectsMismatchedColumns(t *testing.T) {
	svc, _ := newMockService(t)

	err := svc.Insert(context.Background(), "CRM_USERS",
		[]string{"ID", "EMAIL"}, []interface{}{"u1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
}
