package database

import (
	"database/sql"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/dshills/mininet/internal/config"
)

// Dialect covers the differences between the supported servers: how to
// open a pool, how placeholders look, how to compute an age in years and
// how to keep a result alias's case.
type Dialect interface {
	// Name is the driver key from the configuration.
	Name() string
	// Title is the human name used in status lines.
	Title() string
	// Open returns a pool for cfg. It does not dial.
	Open(cfg config.Config) (*sql.DB, error)
	// Rebind rewrites ? placeholders into the driver's native form.
	Rebind(query string) string
	// YearsSince returns an integer expression for the whole calendar years
	// between column and today.
	YearsSince(column string) string
	// Alias renders a result column alias.
	Alias(name string) string
}

// DialectFor returns the dialect registered for a driver key.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case config.DriverMySQL:
		return MySQL, nil
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverPgx:
		return Pgx, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Built-in dialects.
var (
	MySQL    Dialect = mysqlDialect{}
	Postgres Dialect = postgresDialect{driver: config.DriverPostgres}
	Pgx      Dialect = postgresDialect{driver: config.DriverPgx}
	SQLite   Dialect = sqliteDialect{}
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string  { return config.DriverMySQL }
func (mysqlDialect) Title() string { return "MySQL" }

func (mysqlDialect) Open(cfg config.Config) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host
	mc.DBName = cfg.Database
	mc.ParseTime = true

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) YearsSince(column string) string {
	return fmt.Sprintf("YEAR(CURDATE()) - YEAR(%s)", column)
}

func (mysqlDialect) Alias(name string) string { return name }

// postgresDialect serves both lib/pq ("postgres") and pgx ("pgx").
type postgresDialect struct {
	driver string
}

func (d postgresDialect) Name() string { return d.driver }
func (postgresDialect) Title() string  { return "PostgreSQL" }

func (d postgresDialect) Open(cfg config.Config) (*sql.DB, error) {
	connStr := postgresConnString(cfg)
	if d.driver == config.DriverPgx {
		pc, err := pgx.ParseConfig(connStr)
		if err != nil {
			return nil, err
		}
		return stdlib.OpenDB(*pc), nil
	}
	return sql.Open("postgres", connStr)
}

// postgresConnString builds a key/value connection string understood by
// both lib/pq and pgx. A host of the form host:port sets the port too.
func postgresConnString(cfg config.Config) string {
	host, port := cfg.Host, ""
	if h, p, err := net.SplitHostPort(cfg.Host); err == nil {
		host, port = h, p
	}
	parts := []string{"host=" + quoteConnValue(host)}
	if port != "" {
		parts = append(parts, "port="+quoteConnValue(port))
	}
	parts = append(parts,
		"user="+quoteConnValue(cfg.User),
		"dbname="+quoteConnValue(cfg.Database),
		"sslmode=disable",
	)
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteConnValue(cfg.Password))
	}
	return strings.Join(parts, " ")
}

func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (postgresDialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func (postgresDialect) YearsSince(column string) string {
	return fmt.Sprintf("CAST(EXTRACT(YEAR FROM CURRENT_DATE) - EXTRACT(YEAR FROM %s) AS INTEGER)", column)
}

// Alias quotes the name; unquoted identifiers are folded to lower case.
func (postgresDialect) Alias(name string) string { return `"` + name + `"` }

type sqliteDialect struct{}

func (sqliteDialect) Name() string  { return config.DriverSQLite }
func (sqliteDialect) Title() string { return "SQLite" }

// Open treats the database field as a file path.
func (sqliteDialect) Open(cfg config.Config) (*sql.DB, error) {
	return sql.Open("sqlite", cfg.Database)
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) YearsSince(column string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', 'now') AS INTEGER) - CAST(strftime('%%Y', %s) AS INTEGER)", column)
}

func (sqliteDialect) Alias(name string) string { return name }
