package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one parsed record: an ordered mapping from column name to value.
// Rows produced by one parse share the same column slice, which must be
// treated as read-only.
type Row struct {
	columns []string
	values  []FieldValue
}

// NewRow builds a row from parallel column and value slices. Missing values
// are padded with Empty(); surplus values are dropped.
func NewRow(columns []string, values []FieldValue) Row {
	vals := make([]FieldValue, len(columns))
	copy(vals, values)
	return Row{columns: columns, values: vals}
}

// Columns returns the row's column names in header order.
func (r Row) Columns() []string { return r.columns }

// Values returns the row's values in header order.
func (r Row) Values() []FieldValue { return r.values }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Get returns the value for a column.
func (r Row) Get(column string) (FieldValue, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return FieldValue{}, false
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]FieldValue {
	m := make(map[string]FieldValue, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// Strings returns the display form of each value in header order.
func (r Row) Strings() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = v.String()
	}
	return out
}

// Equal reports whether two rows have the same columns and values in order.
func (r Row) Equal(o Row) bool {
	if len(r.columns) != len(o.columns) {
		return false
	}
	for i := range r.columns {
		if r.columns[i] != o.columns[i] || !r.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object with keys in header order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ingest: row must be a JSON object")
	}

	var columns []string
	var values []FieldValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ingest: unexpected row key %v", tok)
		}
		var v FieldValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ingest: column %q: %w", key, err)
		}
		columns = append(columns, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	r.columns = columns
	r.values = values
	return nil
}

// Align returns rows re-keyed to the given columns. Each row keeps values for
// columns it has and receives Empty() for the rest.
func Align(columns []string, rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		vals := make([]FieldValue, len(columns))
		for j, c := range columns {
			if v, ok := row.Get(c); ok {
				vals[j] = v
			}
		}
		out[i] = Row{columns: columns, values: vals}
	}
	return out
}

// ColumnsOf returns the union of column names across rows in first-seen order.
func ColumnsOf(rows []Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for _, c := range row.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
