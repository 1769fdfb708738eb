package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/dshills/mininet/internal/errors"
)

// driverCode pulls the SQLSTATE and vendor number out of whichever driver
// produced err.
func driverCode(err error) (code string, vendor int) {
	var myErr *mysql.MySQLError
	if stderrors.As(err, &myErr) {
		if myErr.SQLState != [5]byte{} {
			code = string(myErr.SQLState[:])
		}
		return code, int(myErr.Number)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code), 0
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code, 0
	}

	var liteErr *sqlite.Error
	if stderrors.As(err, &liteErr) {
		return "", liteErr.Code()
	}

	return "", 0
}

// connectionLost reports whether err means the session itself is gone, as
// opposed to one bad statement.
func connectionLost(err error, code string) bool {
	if errors.ConnectionLost(code) {
		return true
	}
	if stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, sql.ErrConnDone) ||
		stderrors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// classifyConnect wraps a failure from opening or pinging the session.
func classifyConnect(err error) *errors.Error {
	code, vendor := driverCode(err)
	return errors.NewConnection(err).WithCode(code).WithVendor(vendor)
}

// classifyQuery wraps a failure from running a statement.
func classifyQuery(err error) *errors.Error {
	code, vendor := driverCode(err)
	if connectionLost(err, code) {
		return errors.NewConnection(err).WithCode(code).WithVendor(vendor)
	}
	return errors.NewQuery(err).WithCode(code).WithVendor(vendor)
}
