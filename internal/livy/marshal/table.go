package marshal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// Table is a tabular remote value. Columns are the union of record keys in
// first-seen order; Rows keep emission order and hold nil for missing cells.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Tag returns the remote type tag
func (t *Table) Tag() string { return TagDataFrame }

// Interface returns the rows as records
func (t *Table) Interface() any {
	out := make([]map[string]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Record(i)
	}
	return out
}

func (*Table) value() {}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Record returns row i keyed by column name
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for j, col := range t.Columns {
		rec[col] = t.Rows[i][j]
	}
	return rec
}

// Column returns every value of the named column, or nil if it does not exist
func (t *Table) Column(name string) []any {
	for j, col := range t.Columns {
		if col != name {
			continue
		}
		out := make([]any, len(t.Rows))
		for i, row := range t.Rows {
			out[i] = row[j]
		}
		return out
	}
	return nil
}

// ParseRows builds a table from a line-delimited JSON stream with one
// object per line. Blank lines are skipped.
func ParseRows(raw string) (*Table, error) {
	t := &Table{}
	index := make(map[string]int)

	for n, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// ObjectEach stops at the closing brace and ignores trailing input
		if !json.Valid([]byte(line)) {
			return nil, fmt.Errorf("line %d: not a single JSON record", n+1)
		}

		cells := make(map[int]any)
		err := jsonparser.ObjectEach([]byte(line), func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			cell, err := cellValue(value, dataType)
			if err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}

			idx, ok := index[name]
			if !ok {
				idx = len(t.Columns)
				index[name] = idx
				t.Columns = append(t.Columns, name)
			}
			cells[idx] = cell
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}

		row := make([]any, len(t.Columns))
		for idx, cell := range cells {
			row[idx] = cell
		}
		t.Rows = append(t.Rows, row)
	}

	// earlier rows were sized before later rows introduced new columns
	for i, row := range t.Rows {
		if len(row) < len(t.Columns) {
			t.Rows[i] = append(row, make([]any, len(t.Columns)-len(row))...)
		}
	}
	return t, nil
}

func cellValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			return i, nil
		}
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object, jsonparser.Array:
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %q", value)
	}
}
