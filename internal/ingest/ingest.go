// Package ingest pulls source tables out of live databases and renders
// them as raw tables for analysis.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/vatskrypt/DataMimic/internal/table"
)

// FromPostgres reads up to limit rows of tableName over a PostgreSQL
// connection. limit <= 0 means no limit.
func FromPostgres(ctx context.Context, dsn, tableName string, limit int) (*table.Table, error) {
	ident, err := sanitizeIdentifier(tableName)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close(ctx)

	query := fmt.Sprintf("SELECT * FROM %s", ident)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	out := &table.Table{Headers: headers}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		out.Rows = append(out.Rows, renderRow(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", tableName, err)
	}
	return out, nil
}

// FromMSSQL reads up to limit rows of tableName from SQL Server.
// limit <= 0 means no limit.
func FromMSSQL(ctx context.Context, dsn, tableName string, limit int) (*table.Table, error) {
	ident, err := sanitizeIdentifier(tableName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM %s", ident)
	if limit > 0 {
		query = fmt.Sprintf("SELECT TOP %d * FROM %s", limit, ident)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	out := &table.Table{Headers: headers}
	holders := make([]any, len(headers))
	ptrs := make([]any, len(headers))
	for i := range holders {
		ptrs[i] = &holders[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		out.Rows = append(out.Rows, renderRow(holders))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", tableName, err)
	}
	return out, nil
}

func renderRow(vals []any) []string {
	cells := make([]string, len(vals))
	for i, v := range vals {
		cells[i] = renderCell(v)
	}
	return cells
}

// renderCell turns a driver value into a cell. Commas and newlines
// would break the comma-separated wire form, so they become spaces.
func renderCell(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		s = string(x)
	case time.Time:
		s = x.Format(time.RFC3339)
	case string:
		s = x
	default:
		s = fmt.Sprint(x)
	}
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// sanitizeIdentifier accepts plain or schema-qualified table names and
// rejects anything that could smuggle SQL into the query text.
func sanitizeIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("table name is empty")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid table name %q", name)
		}
		for _, r := range p {
			valid := r == '_' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9')
			if !valid {
				return "", fmt.Errorf("invalid table name %q", name)
			}
		}
	}
	return strings.Join(parts, "."), nil
}
