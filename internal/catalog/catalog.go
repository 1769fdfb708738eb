package catalog

import (
	"context"
	"fmt"

	"github.com/dshills/mininet/internal/database"
)

// Param is one value a report asks the user for.
type Param struct {
	Name   string
	Prompt string
	// Choices lists the expected answers. They are advisory: the prompt
	// text already names them and any answer is bound as given.
	Choices []string
}

// Entry is one fixed report: a menu key, its title, the parameters it
// binds, and the SQL it runs.
type Entry struct {
	Key    string
	Title  string
	Params []Param
	build  func(database.Dialect) string
}

// SQL renders the entry's statement for d.
func (e Entry) SQL(d database.Dialect) string {
	return d.Rebind(e.build(d))
}

// Runner executes a statement with positional string parameters.
// *report.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, query string, params ...string) error
}

var entries = []Entry{
	{
		Key:   "1",
		Title: "Export all data about users in the HD or UHD subscriptions.",
		Params: []Param{{
			Name:    "subscription type",
			Prompt:  "Enter the subscription (HD/UHD) of your choice: ",
			Choices: []string{"HD", "UHD"},
		}},
		build: usersBySubscription,
	},
	{
		Key:   "2",
		Title: "Export all data about actors and their associated movies.",
		build: actorsWithMovies,
	},
	{
		Key:   "3",
		Title: "Export all data to group actors from a specific city, showing also the average age (per city).",
		Params: []Param{{
			Name:   "city",
			Prompt: "Enter the specific city of your choice: ",
		}},
		build: actorsByCity,
	},
	{
		Key:   "4",
		Title: "Export all data to show the favourite comedy movies for a specific user.",
		Params: []Param{{
			Name:   "username",
			Prompt: "Enter the specific user of your choice: ",
		}},
		build: comedyFavorites,
	},
	{
		Key:   "5",
		Title: "Export all data to count how many subscriptions are in the database per country.",
		build: subscriptionsByCountry,
	},
}

// Catalog is the set of reports rendered for one dialect.
type Catalog struct {
	dialect    database.Dialect
	entries    []Entry
	statements map[string]string
}

// New renders and verifies every report for d.
func New(d database.Dialect) (*Catalog, error) {
	c := &Catalog{
		dialect:    d,
		entries:    entries,
		statements: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if err := Verify(e); err != nil {
			return nil, err
		}
		c.statements[e.Key] = e.SQL(d)
	}
	return c, nil
}

// Entries returns the reports in menu order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Lookup finds a report by its menu key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	for _, e := range c.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Statement returns the rendered SQL for key, or "" if there is none.
func (c *Catalog) Statement(key string) string {
	return c.statements[key]
}

// Run executes report key through r with args bound in order.
func (c *Catalog) Run(ctx context.Context, r Runner, key string, args ...string) error {
	stmt, ok := c.statements[key]
	if !ok {
		return fmt.Errorf("unknown report %q", key)
	}
	return r.Execute(ctx, stmt, args...)
}
