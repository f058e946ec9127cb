// Package table implements the in-memory tabular dataset and its wire
// format: newline-separated rows of comma-separated cells, first line
// being the header row. The format has no quoting, so embedded commas
// are not representable.
package table

import "strings"

// Table is an ordered set of column headers plus rows of string cells
// aligned positionally to the headers. Headers are unique by position,
// not necessarily by name. Rows may be ragged; missing cells read as
// empty strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse decodes a raw text blob into a Table. The header line is trimmed
// per header; data cells are trimmed individually. Blank lines between
// rows are skipped. Empty input degrades to a single empty-string header
// and zero rows rather than an error.
func Parse(raw string) *Table {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	t := &Table{Headers: headers}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Serialize encodes the table back to the wire format, header row first,
// with a trailing newline.
func (t *Table) Serialize() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, ","))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the first header with the given
// name, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when the row is ragged and
// has no cell at that position.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column collects every cell of the named column, including empties,
// with missing cells filled in as empty strings.
func (t *Table) Column(name string) []string {
	ix := t.ColumnIndex(name)
	if ix < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, ix)
	}
	return values
}

// RowMap returns row i keyed by header name. When headers repeat, the
// last position wins; positional access via Cell is unaffected.
func (t *Table) RowMap(i int) map[string]string {
	m := make(map[string]string, len(t.Headers))
	for col, h := range t.Headers {
		m[h] = t.Cell(i, col)
	}
	return m
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{Headers: append([]string(nil), t.Headers...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}
