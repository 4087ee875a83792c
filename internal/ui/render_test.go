package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callsight/internal/snowflake"
)

func sampleResults() *snowflake.ResultSet {
	return &snowflake.ResultSet{
		Columns: []string{"CALL_ID", "SPEAKER_COUNT"},
		Rows: [][]string{
			{"call-1", "2"},
			{"call-2", "3"},
		},
	}
}

func TestRenderResultsTable(t *testing.T) {
	var buf bytes.Buffer

	err := RenderResults(&buf, sampleResults(), FormatTable)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "CALL_ID")
	assert.Contains(t, out, "call-1")
	assert.Contains(t, out, "call-2")
}

func TestRenderResultsDefaultsToTable(t *testing.T) {
	var buf bytes.Buffer

	err := RenderResults(&buf, sampleResults(), "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "CALL_ID")
}

func TestRenderResultsJSON(t *testing.T) {
	var buf bytes.Buffer

	err := RenderResults(&buf, sampleResults(), FormatJSON)
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "call-1", records[0]["CALL_ID"])
	assert.Equal(t, "3", records[1]["SPEAKER_COUNT"])
}

func TestRenderResultsCSV(t *testing.T) {
	var buf bytes.Buffer

	err := RenderResults(&buf, sampleResults(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "CALL_ID,SPEAKER_COUNT\ncall-1,2\ncall-2,3\n", buf.String())
}

func TestRenderResultsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer

	err := RenderResults(&buf, sampleResults(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
