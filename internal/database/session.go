package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mininet/internal/config"
	"github.com/dshills/mininet/internal/errors"
	"github.com/dshills/mininet/internal/log"
)

// Session is the single live connection a run works with. Every statement
// goes through the same *sql.Conn.
type Session struct {
	id      string
	dialect Dialect
	db      *sql.DB
	conn    *sql.Conn
	logger  log.Logger
}

// ResultSet is one statement's output, fully fetched.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Connect opens a session for cfg. On failure the returned error is an
// *errors.Error of kind Connection carrying the driver's message.
func Connect(ctx context.Context, cfg config.Config, logger log.Logger) (*Session, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, errors.NewConnection(err)
	}

	id := uuid.NewString()
	logger = logger.With(log.String("session", id), log.String("driver", dialect.Name()))
	logger.Debug("connecting", log.String("host", cfg.Host), log.String("database", cfg.Database), log.String("user", cfg.User))

	db, err := dialect.Open(cfg)
	if err != nil {
		return nil, classifyConnect(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, classifyConnect(err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, classifyConnect(err)
	}

	logger.Info("connected")
	return &Session{
		id:      id,
		dialect: dialect,
		db:      db,
		conn:    conn,
		logger:  logger,
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Dialect returns the dialect the session was opened with.
func (s *Session) Dialect() Dialect {
	return s.dialect
}

// Query runs query with args bound positionally and returns every row.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	start := time.Now()

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Debug("statement failed", log.Err(err))
		return nil, classifyQuery(err)
	}
	defer rows.Close()

	rs, err := scan(rows)
	if err != nil {
		s.logger.Debug("fetch failed", log.Err(err))
		return nil, classifyQuery(err)
	}

	log.Latency(s.logger, start, "query", log.Int("rows", len(rs.Rows)), log.Int("params", len(args)))
	return rs, nil
}

func scan(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Close releases the connection and the pool behind it.
func (s *Session) Close() error {
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return connErr
	}
	s.logger.Debug("closed")
	return dbErr
}
