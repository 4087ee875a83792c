package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"callsight/internal/common"
	"callsight/pkg/errors"
)

// Column describes one column of a table to create
type Column struct {
	Name string
	Type string
}

// ResultSet holds a query result with every value stringified for display
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

var allowedColumnTypes = map[string]bool{
	"STRING": true, "TEXT": true, "VARCHAR": true, "CHAR": true,
	"NUMBER": true, "INT": true, "INTEGER": true, "BIGINT": true,
	"FLOAT": true, "DOUBLE": true, "BOOLEAN": true, "DATE": true,
	"TIME": true, "TIMESTAMP": true, "TIMESTAMP_NTZ": true,
	"TIMESTAMP_TZ": true, "VARIANT": true, "OBJECT": true, "ARRAY": true,
}

// CreateDatabase creates a database if it does not exist
func (s *Service) CreateDatabase(ctx context.Context, name string) error {
	if err := common.ValidateIdentifier(name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid database name")
	}
	_, err := s.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name))
	return err
}

// CreateSchema creates a schema if it does not exist
func (s *Service) CreateSchema(ctx context.Context, database, schema string) error {
	qualified, err := common.QualifiedName(database, schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid schema name")
	}
	_, err = s.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", qualified))
	return err
}

// CreateTable creates a table if it does not exist. Column types are checked
// against an allow-list since identifiers and types cannot be bound.
func (s *Service) CreateTable(ctx context.Context, table string, columns []Column) error {
	if err := common.ValidateIdentifier(table); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid table name")
	}
	if len(columns) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "Table requires at least one column")
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if err := common.ValidateIdentifier(col.Name); err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid column name")
		}
		baseType := strings.ToUpper(strings.TrimSpace(col.Type))
		// Strip a length suffix like VARCHAR(255) before checking
		if idx := strings.Index(baseType, "("); idx > 0 {
			baseType = baseType[:idx]
		}
		if !allowedColumnTypes[baseType] {
			return errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("Unsupported column type %q for column %q", col.Type, col.Name))
		}
		defs = append(defs, fmt.Sprintf("%s %s", col.Name, strings.ToUpper(col.Type)))
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	_, err := s.ExecContext(ctx, stmt)
	return err
}

// DropTable drops a table if it exists
func (s *Service) DropTable(ctx context.Context, table string) error {
	if err := common.ValidateIdentifier(table); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid table name")
	}
	_, err := s.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	return err
}

// SwapTables atomically exchanges two tables
func (s *Service) SwapTables(ctx context.Context, a, b string) error {
	for _, name := range []string{a, b} {
		if err := common.ValidateIdentifier(name); err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid table name")
		}
	}
	_, err := s.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s SWAP WITH %s", a, b))
	return err
}

// Insert inserts one row using bind parameters
func (s *Service) Insert(ctx context.Context, table string, columns []string, values []interface{}) error {
	if err := common.ValidateIdentifier(table); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid table name")
	}
	if len(columns) == 0 || len(columns) != len(values) {
		return errors.New(errors.ErrCodeInvalidInput, "Column and value counts must match")
	}

	placeholders := make([]string, len(values))
	for i, col := range columns {
		if err := common.ValidateIdentifier(col); err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid column name")
		}
		placeholders[i] = "?"
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err := s.ExecContext(ctx, stmt, values...)
	return err
}

// QueryRows runs a query and returns a stringified result set for display
func (s *Service) QueryRows(ctx context.Context, query string, args ...interface{}) (*ResultSet, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return ScanRows(rows)
}

// ScanRows converts sql.Rows into a stringified ResultSet
func ScanRows(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = stringify(v)
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, rows.Err()
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
