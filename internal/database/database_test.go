package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mininet/internal/config"
	"github.com/dshills/mininet/internal/errors"
	"github.com/dshills/mininet/internal/log"
	"github.com/dshills/mininet/internal/testutil"
)

func connect(t *testing.T) *Session {
	t.Helper()
	s, err := Connect(context.Background(), testutil.SQLiteConfig(t), log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   Dialect
		title  string
	}{
		{"mysql", MySQL, "MySQL"},
		{"postgres", Postgres, "PostgreSQL"},
		{"PGX", Pgx, "PostgreSQL"},
		{"sqlite", SQLite, "SQLite"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.title, d.Title())
		})
	}

	_, err := DialectFor("oracle")
	assert.EqualError(t, err, `unsupported driver "oracle"`)
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM Users WHERE Username = ? AND Country = ?"
	assert.Equal(t, query, MySQL.Rebind(query))
	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t, "SELECT * FROM Users WHERE Username = $1 AND Country = $2", Postgres.Rebind(query))
	assert.Equal(t, Postgres.Rebind(query), Pgx.Rebind(query))

	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
	assert.Equal(t, "SELECT $1,\n  $2, $3", Postgres.Rebind("SELECT ?,\n  ?, ?"))
}

func TestAliasAndYears(t *testing.T) {
	assert.Equal(t, "Country", MySQL.Alias("Country"))
	assert.Equal(t, `"Country"`, Postgres.Alias("Country"))
	assert.Equal(t, "YEAR(CURDATE()) - YEAR(DOB)", MySQL.YearsSince("DOB"))
	assert.Equal(t, "CAST(strftime('%Y', 'now') AS INTEGER) - CAST(strftime('%Y', DOB) AS INTEGER)", SQLite.YearsSince("DOB"))
	assert.Contains(t, Pgx.YearsSince("DOB"), "EXTRACT(YEAR FROM DOB)")
}

func TestPostgresConnString(t *testing.T) {
	cfg := config.Config{Host: "db.local", Database: "mininet_db", User: "root"}
	assert.Equal(t, "host=db.local user=root dbname=mininet_db sslmode=disable", postgresConnString(cfg))

	cfg.Password = `it's a secret`
	assert.Equal(t, `host=db.local user=root dbname=mininet_db sslmode=disable password='it\'s a secret'`, postgresConnString(cfg))

	cfg = config.Config{Host: "127.0.0.1:55432", Database: "mininet_db", User: "root"}
	assert.Equal(t, "host=127.0.0.1 port=55432 user=root dbname=mininet_db sslmode=disable", postgresConnString(cfg))
}

func TestOpenDoesNotDial(t *testing.T) {
	cfg := config.Config{Host: "127.0.0.1", Database: "mininet_db", User: "root", Password: "pw"}
	for _, d := range []Dialect{MySQL, Postgres, Pgx} {
		t.Run(d.Name(), func(t *testing.T) {
			db, err := d.Open(cfg)
			require.NoError(t, err)
			assert.NoError(t, db.Close())
		})
	}
}

func TestConnectAndQuery(t *testing.T) {
	s := connect(t)
	assert.Equal(t, SQLite, s.Dialect())
	assert.NotEmpty(t, s.ID())

	rs, err := s.Query(context.Background(), "SELECT Username, Country FROM Users WHERE Subscription_type = ? ORDER BY User_id", "UHD")
	require.NoError(t, err)
	assert.Equal(t, []string{"Username", "Country"}, rs.Columns)
	assert.Equal(t, [][]any{{"bob", "Greece"}, {"dave", "Spain"}}, rs.Rows)
}

func TestQueryEmptyResult(t *testing.T) {
	s := connect(t)

	rs, err := s.Query(context.Background(), "SELECT Username FROM Users WHERE Country = ?", "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, []string{"Username"}, rs.Columns)
	assert.Empty(t, rs.Rows)
	assert.NotNil(t, rs.Rows)
}

func TestQueryErrorKeepsSessionUsable(t *testing.T) {
	s := connect(t)

	_, err := s.Query(context.Background(), "SELECT * FROM NoSuchTable")
	require.Error(t, err)
	assert.True(t, errors.IsQuery(err))
	assert.Contains(t, errors.Message(err), "no such table: NoSuchTable")

	e, ok := errors.As(err)
	require.True(t, ok)
	assert.NotZero(t, e.Vendor)

	rs, err := s.Query(context.Background(), "SELECT COUNT(*) AS n FROM Movies")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(3)}}, rs.Rows)
}

func TestQueryAfterCloseIsConnectionError(t *testing.T) {
	s := connect(t)
	require.NoError(t, s.conn.Close())

	_, err := s.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.IsConnection(err))
}

func TestConnectFailure(t *testing.T) {
	cfg := config.Config{Driver: config.DriverSQLite, Database: filepath.Join(t.TempDir(), "missing", "mininet.db")}

	s, err := Connect(context.Background(), cfg, log.Discard())
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.IsConnection(err))
	assert.NotEmpty(t, errors.Message(err))
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.Config{Driver: "oracle"}, log.Discard())
	require.Error(t, err)
	assert.True(t, errors.IsConnection(err))
	assert.Equal(t, `unsupported driver "oracle"`, errors.Message(err))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   errors.Kind
		wantCode   string
		wantVendor int
	}{
		{
			name:       "mysql missing table",
			err:        &mysql.MySQLError{Number: 1146, SQLState: [5]byte{'4', '2', 'S', '0', '2'}, Message: "Table 'mininet_db.Foo' doesn't exist"},
			wantKind:   errors.Query,
			wantCode:   "42S02",
			wantVendor: 1146,
		},
		{
			name:     "pq syntax error",
			err:      &pq.Error{Code: "42601", Message: "syntax error"},
			wantKind: errors.Query,
			wantCode: "42601",
		},
		{
			name:     "pgx admin shutdown",
			err:      &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"},
			wantKind: errors.Connection,
			wantCode: "57P01",
		},
		{
			name:     "pq connection failure",
			err:      &pq.Error{Code: "08006", Message: "connection failure"},
			wantKind: errors.Connection,
			wantCode: "08006",
		},
		{
			name:     "bad conn",
			err:      fmt.Errorf("exec: %w", driver.ErrBadConn),
			wantKind: errors.Connection,
		},
		{
			name:     "conn done",
			err:      sql.ErrConnDone,
			wantKind: errors.Connection,
		},
		{
			name:     "mysql invalid conn",
			err:      mysql.ErrInvalidConn,
			wantKind: errors.Connection,
		},
		{
			name:     "network timeout",
			err:      timeoutErr{},
			wantKind: errors.Connection,
		},
		{
			name:     "plain error",
			err:      stderrors.New("sql: expected 1 arguments, got 0"),
			wantKind: errors.Query,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyQuery(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantVendor, got.Vendor)
			assert.Equal(t, tt.err.Error(), got.Message)
		})
	}
}

func TestClassifyConnectAlwaysConnection(t *testing.T) {
	err := classifyConnect(&mysql.MySQLError{Number: 1045, SQLState: [5]byte{'2', '8', '0', '0', '0'}, Message: "Access denied for user 'root'@'10.0.0.2' (using password: YES)"})
	assert.Equal(t, errors.Connection, err.Kind)
	assert.Equal(t, "28000", err.Code)
	assert.Equal(t, 1045, err.Vendor)
	assert.Equal(t, "Error 1045 (28000): Access denied for user 'root'@'10.0.0.2' (using password: YES)", err.Message)
}

func TestQueryHonoursContext(t *testing.T) {
	s := connect(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := s.Query(ctx, "SELECT 1")
	require.Error(t, err)
}
