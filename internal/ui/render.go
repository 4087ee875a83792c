package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"callsight/internal/snowflake"
)

// Output formats supported by RenderResults
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// RenderResults writes a query result set in the requested format
func RenderResults(w io.Writer, rs *snowflake.ResultSet, format string) error {
	switch format {
	case FormatTable, "":
		renderTable(w, rs)
		return nil
	case FormatJSON:
		return renderJSON(w, rs)
	case FormatCSV:
		return renderCSV(w, rs)
	default:
		return fmt.Errorf("unknown output format %q (expected table, json or csv)", format)
	}
}

func renderTable(w io.Writer, rs *snowflake.ResultSet) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(rs.Columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, row := range rs.Rows {
		table.Append(row)
	}
	table.Render()
}

func renderJSON(w io.Writer, rs *snowflake.ResultSet) error {
	records := make([]map[string]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		record := make(map[string]string, len(rs.Columns))
		for i, col := range rs.Columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderCSV(w io.Writer, rs *snowflake.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
