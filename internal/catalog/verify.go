package catalog

import (
	"database/sql"
	"fmt"

	"github.com/xwb1989/sqlparser"

	"github.com/dshills/mininet/internal/config"
	"github.com/dshills/mininet/internal/database"
)

// canonical renders statements in plain MySQL grammar with a generic age
// function, so the parser sees the same shape whatever dialect runs it.
type canonical struct{}

var _ database.Dialect = canonical{}

func (canonical) Name() string  { return "canonical" }
func (canonical) Title() string { return "canonical" }

func (canonical) Open(config.Config) (*sql.DB, error) {
	return nil, fmt.Errorf("canonical dialect cannot connect")
}

func (canonical) Rebind(query string) string      { return query }
func (canonical) YearsSince(column string) string { return "age_in_years(" + column + ")" }
func (canonical) Alias(name string) string        { return name }

// Verify parses e's statement and checks that it is a single SELECT whose
// bind placeholders match the declared parameters one for one.
func Verify(e Entry) error {
	stmt, err := sqlparser.Parse(e.build(canonical{}))
	if err != nil {
		return fmt.Errorf("report %s: %w", e.Key, err)
	}
	if _, ok := stmt.(*sqlparser.Select); !ok {
		return fmt.Errorf("report %s: expected a SELECT, got %T", e.Key, stmt)
	}

	binds := 0
	err = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if v, ok := node.(*sqlparser.SQLVal); ok && v.Type == sqlparser.ValArg {
			binds++
		}
		return true, nil
	}, stmt)
	if err != nil {
		return fmt.Errorf("report %s: %w", e.Key, err)
	}

	if binds != len(e.Params) {
		return fmt.Errorf("report %s: %d placeholders for %d parameters", e.Key, binds, len(e.Params))
	}
	return nil
}
