package report

import (
	"context"

	"github.com/dshills/mininet/internal/database"
	"github.com/dshills/mininet/internal/log"
)

// Querier runs one statement and returns all of its rows.
// *database.Session satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error)
}

// Executor runs a statement and prints either its table or its error.
type Executor struct {
	q       Querier
	console *Console
	logger  log.Logger
}

// NewExecutor returns an Executor printing through console.
func NewExecutor(q Querier, console *Console, logger log.Logger) *Executor {
	return &Executor{q: q, console: console, logger: logger}
}

// Execute binds params positionally into query, runs it and prints the
// result table followed by "Query successful". On failure it prints the
// driver's message instead and returns the error; whether that error ends
// the session is the caller's decision.
func (e *Executor) Execute(ctx context.Context, query string, params ...string) error {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	rs, err := e.q.Query(ctx, query, args...)
	if err != nil {
		e.logger.Debug("report failed", log.Err(err))
		e.console.Failure(err)
		return err
	}

	Render(e.console.Writer(), rs)
	e.console.Success()
	return nil
}
