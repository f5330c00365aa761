package database

import (
	"database/sql"
	"fmt"

	"github.com/adrtdr/mysqlconn/internal/errs"
)

// Row is an ordered column-name → value mapping for one result row.
// It supports map-style access (Get, comma-ok) and field-style access
// (Field, which reports a field-not-found error on a miss so callers can
// tell a misspelled column from an ordinary absent key).
//
// A Row is built once from the result set's column metadata and never
// mutated afterwards.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

func newRow(columns []string, values []any) *Row {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		// Duplicate column names keep the last position for keyed access.
		index[col] = i
	}
	return &Row{columns: columns, values: values, index: index}
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}

// Columns returns the column names in result-set order.
func (r *Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns the values in result-set order.
func (r *Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// At returns the value at position i. It panics when i is out of range,
// matching slice indexing.
func (r *Row) At(i int) any {
	return r.values[i]
}

// Get looks a value up by column name, map-style.
func (r *Row) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Field looks a value up by column name and returns a field-not-found
// error when the column is absent.
func (r *Row) Field(name string) (any, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, errs.New(errs.ErrKindFieldNotFound, fmt.Sprintf("row has no field %q", name))
	}
	return r.values[i], nil
}

// Map returns the row as a plain map. Mutating the result does not affect
// the Row.
func (r *Row) Map() map[string]any {
	out := make(map[string]any, len(r.columns))
	for name, i := range r.index {
		out[name] = r.values[i]
	}
	return out
}

// scanRow reads the current result-set row into a fresh Row using the
// pointer-indirection trick: the driver writes each column's native value
// through *any.
func scanRow(rows *sql.Rows, columns []string) (*Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return newRow(columns, values), nil
}

// collectRows drains the result set into a slice. The caller owns closing
// rows; errors are returned raw for the connection to translate.
func collectRows(rows *sql.Rows) ([]*Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]*Row, 0)
	for rows.Next() {
		row, err := scanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
