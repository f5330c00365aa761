package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/adrtdr/mysqlconn/internal/errs"
)

// MySQL server error numbers this wrapper classifies.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDuplicateEntry     = 1062
	errColumnCannotBeNull = 1048
	errRowIsReferenced    = 1451
	errNoReferencedRow    = 1452

	errTooManyConnections = 1040
	errServerShutdown     = 1053
	errUserLimitReached   = 1203

	errAccessDenied    = 1045
	errUnknownDatabase = 1049
)

// isOperational reports whether err means the connection itself is broken
// rather than the statement. These errors trigger the force-close path.
func isOperational(err error) bool {
	// Deadline and cancellation errors satisfy net.Error; rule them out
	// before the interface check so they classify as statement failures.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errTooManyConnections, errServerShutdown, errUserLimitReached:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// mapError converts a MySQL driver error into the errs taxonomy.
// Operational detection runs before this (see Connection.translate), so
// here the connection is assumed to still be usable.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errDuplicateEntry, errColumnCannotBeNull, errRowIsReferenced, errNoReferencedRow:
			return errs.Wrap(errs.ErrKindIntegrity,
				fmt.Sprintf("constraint violation: %s", mysqlErr.Message), err)
		case errAccessDenied, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnect,
				fmt.Sprintf("connection refused by server: %s", mysqlErr.Message), err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed,
			fmt.Sprintf("statement failed: %s", mysqlErr.Message), err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, "statement failed", err)
}
