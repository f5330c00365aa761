// Package database implements a lightweight wrapper around a single MySQL
// connection.
//
// A Connection owns exactly one underlying driver connection. Every
// operation first validates the handle: if it is absent, or has been idle
// longer than Config.MaxIdleTime, the connection is reopened before the
// statement runs. When the driver reports an operational failure mid-query
// the handle is force-closed (so the next call reconnects) and the error is
// returned to the caller unretried — the caller must decide whether the
// statement's side effects committed.
//
// The wrapper performs no locking. A Connection must be used from a single
// goroutine or behind external synchronization; use one Connection per
// worker for concurrent workloads.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver

	"github.com/adrtdr/mysqlconn/internal/errs"
	"github.com/adrtdr/mysqlconn/internal/logger"
)

// connectFunc establishes a validated handle. Swapped out in tests.
type connectFunc func(ctx context.Context, cfg *Config) (*sql.DB, error)

// Connection manages the lifecycle of a single MySQL connection and exposes
// query and execute helpers over it.
type Connection struct {
	cfg     *Config
	log     *logger.Logger
	connect connectFunc

	db      *sql.DB // nil while disconnected
	lastUse time.Time
}

// New creates a Connection and attempts an initial connect. A failed initial
// connect is logged, not returned: the Connection stays usable and the first
// operation retries. A nil log uses the package default logger.
func New(ctx context.Context, cfg *Config, log *logger.Logger) *Connection {
	return newConnection(ctx, cfg, log, dial)
}

func newConnection(ctx context.Context, cfg *Config, log *logger.Logger, connect connectFunc) *Connection {
	if log == nil {
		log = logger.Default()
	}
	c := &Connection{
		cfg:     cfg.withDefaults(),
		log:     log,
		connect: connect,
		lastUse: time.Now(),
	}
	if err := c.Reconnect(ctx); err != nil {
		log.ErrorWith("cannot connect to mysql", err, map[string]any{"host": c.cfg.Host})
	}
	return c
}

// dial opens the DSN pinned to a single underlying connection and validates
// it with a ping bound by ConnectTimeout. Idleness is managed by the
// wrapper, so the pool's own lifetime limits are disabled.
func dial(ctx context.Context, cfg *Config) (*sql.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Reconnect closes any existing handle and opens a fresh one.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Close()
	db, err := c.connect(ctx, c.cfg)
	if err != nil {
		var werr *errs.Error
		if errors.As(err, &werr) {
			return err
		}
		return errs.Wrap(errs.ErrKindConnect, fmt.Sprintf("cannot open connection to %s", c.cfg.Host), err)
	}
	c.db = db
	return nil
}

// Close releases the handle if present. Safe to call repeatedly.
func (c *Connection) Close() {
	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
}

// ensure reconnects when the handle is absent or has been idle past
// MaxIdleTime, then stamps last use. The idle check exists because MySQL
// drops idle clients server-side after wait_timeout without notifying them;
// reconnecting here beats discovering that mid-query.
func (c *Connection) ensure(ctx context.Context) error {
	if c.db == nil || time.Since(c.lastUse) > c.cfg.MaxIdleTime {
		if err := c.Reconnect(ctx); err != nil {
			return err
		}
	}
	c.lastUse = time.Now()
	return nil
}

// translate maps a driver error into the errs taxonomy. Operational
// failures additionally force-close the handle so the next call reconnects;
// the statement is never retried.
func (c *Connection) translate(err error) error {
	if err == nil {
		return nil
	}
	if isOperational(err) {
		c.log.ErrorWith("mysql connection lost, closing handle", err, map[string]any{"host": c.cfg.Host})
		c.Close()
		return errs.Wrap(errs.ErrKindOperational, "connection failure during statement", err)
	}
	return mapError(err)
}

// run is the shared query primitive: validate the handle, bind parameters,
// execute. The returned result set is owned by the caller.
func (c *Connection) run(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	q, bound, err := bindArgs(query, args)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, q, bound...)
	if err != nil {
		return nil, c.translate(err)
	}
	return rows, nil
}

// Query executes a statement and eagerly collects every result row.
// The result set is released on all paths. Zero rows yields an empty,
// non-nil slice.
func (c *Connection) Query(ctx context.Context, query string, args ...any) ([]*Row, error) {
	rows, err := c.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := collectRows(rows)
	if err != nil {
		return nil, c.translate(err)
	}
	return out, nil
}

// Iter executes a statement and returns a lazy iterator over its rows.
// The iterator releases the result set when exhausted; callers abandoning
// it early must call Close.
func (c *Connection) Iter(ctx context.Context, query string, args ...any) (*Rows, error) {
	rows, err := c.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, c.translate(err)
	}
	return &Rows{conn: c, rows: rows, columns: columns}, nil
}

// Get runs a point lookup. Zero rows returns (nil, nil); exactly one row
// returns it; more than one is a multiple-rows error. This is a strict
// helper, not a LIMIT 1.
func (c *Connection) Get(ctx context.Context, query string, args ...any) (*Row, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, errs.New(errs.ErrKindMultipleRows,
			fmt.Sprintf("query matched %d rows, expected at most one", len(rows)))
	}
}

// exec is the shared execute primitive.
func (c *Connection) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	q, bound, err := bindArgs(query, args)
	if err != nil {
		return nil, err
	}
	res, err := c.db.ExecContext(ctx, q, bound...)
	if err != nil {
		return nil, c.translate(err)
	}
	return res, nil
}

// Exec runs a statement and returns the driver-reported last insert id.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, c.translate(err)
	}
	return id, nil
}

// Insert runs a statement and returns the last insert id. Same contract
// as Exec under the conventional name.
func (c *Connection) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	return c.Exec(ctx, query, args...)
}

// ExecRowcount runs a statement and returns the affected-row count.
func (c *Connection) ExecRowcount(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, c.translate(err)
	}
	return n, nil
}

// Update runs a statement and returns the affected-row count. Same contract
// as ExecRowcount under the conventional name.
func (c *Connection) Update(ctx context.Context, query string, args ...any) (int64, error) {
	return c.ExecRowcount(ctx, query, args...)
}

// execMany prepares the statement once and executes it per parameter set on
// the single connection. MySQL has no true batch protocol in database/sql;
// the prepared statement keeps parse cost out of the loop.
func (c *Connection) execMany(ctx context.Context, query string, argSets [][]any) (lastID, affected int64, err error) {
	if err := c.ensure(ctx); err != nil {
		return 0, 0, err
	}
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, 0, c.translate(err)
	}
	defer stmt.Close()

	for _, set := range argSets {
		res, execErr := stmt.ExecContext(ctx, set...)
		if execErr != nil {
			return 0, 0, c.translate(execErr)
		}
		if id, idErr := res.LastInsertId(); idErr == nil {
			lastID = id
		}
		if n, nErr := res.RowsAffected(); nErr == nil {
			affected += n
		}
	}
	return lastID, affected, nil
}

// ExecMany runs the statement once per parameter set and returns the last
// set's insert id.
func (c *Connection) ExecMany(ctx context.Context, query string, argSets [][]any) (int64, error) {
	lastID, _, err := c.execMany(ctx, query, argSets)
	return lastID, err
}

// InsertMany is ExecMany under the conventional name.
func (c *Connection) InsertMany(ctx context.Context, query string, argSets [][]any) (int64, error) {
	return c.ExecMany(ctx, query, argSets)
}

// ExecManyRowcount runs the statement once per parameter set and returns
// the total affected-row count across all sets.
func (c *Connection) ExecManyRowcount(ctx context.Context, query string, argSets [][]any) (int64, error) {
	_, affected, err := c.execMany(ctx, query, argSets)
	return affected, err
}

// UpdateMany is ExecManyRowcount under the conventional name.
func (c *Connection) UpdateMany(ctx context.Context, query string, argSets [][]any) (int64, error) {
	return c.ExecManyRowcount(ctx, query, argSets)
}
