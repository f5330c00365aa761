package database

import "database/sql"

// Rows is a lazy, finite sequence of result rows bound to one query.
//
// The underlying result set is released exactly once: automatically when
// iteration ends (exhaustion or error), or via Close when the caller stops
// early. Close is idempotent, so `defer rows.Close()` is always safe.
//
//	rows, err := conn.Iter(ctx, "SELECT id, name FROM users")
//	if err != nil { ... }
//	defer rows.Close()
//	for rows.Next() {
//	    row := rows.Row()
//	    ...
//	}
//	if err := rows.Err(); err != nil { ... }
type Rows struct {
	conn    *Connection
	rows    *sql.Rows
	columns []string

	cur    *Row
	err    error
	closed bool
}

// Next advances to the next row. It returns false at the end of the set or
// on error, releasing the result set either way.
func (it *Rows) Next() bool {
	if it.closed {
		return false
	}
	if !it.rows.Next() {
		it.err = it.conn.translate(it.rows.Err())
		_ = it.Close()
		return false
	}

	row, err := scanRow(it.rows, it.columns)
	if err != nil {
		it.err = it.conn.translate(err)
		_ = it.Close()
		return false
	}
	it.cur = row
	return true
}

// Row returns the row produced by the last successful Next.
func (it *Rows) Row() *Row {
	return it.cur
}

// Err returns the error that terminated iteration, if any.
func (it *Rows) Err() error {
	return it.err
}

// Columns returns the column names of the result set.
func (it *Rows) Columns() []string {
	out := make([]string, len(it.columns))
	copy(out, it.columns)
	return out
}

// Close releases the underlying result set. Safe to call repeatedly.
func (it *Rows) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.rows.Close()
}
