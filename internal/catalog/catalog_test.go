package catalog

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mininet/internal/database"
	"github.com/dshills/mininet/internal/log"
	"github.com/dshills/mininet/internal/report"
	"github.com/dshills/mininet/internal/testutil"
)

type recordingRunner struct {
	queries [][]string
}

func (r *recordingRunner) Execute(_ context.Context, query string, params ...string) error {
	r.queries = append(r.queries, append([]string{query}, params...))
	return nil
}

// runReport executes one report against the seeded SQLite fixture and
// returns the single table it printed.
func runReport(t *testing.T, key string, args ...string) testutil.Table {
	t.Helper()
	color.NoColor = true

	s, err := database.Connect(context.Background(), testutil.SQLiteConfig(t), log.Discard())
	require.NoError(t, err)
	defer s.Close()

	cat, err := New(s.Dialect())
	require.NoError(t, err)

	var out bytes.Buffer
	exec := report.NewExecutor(s, report.NewConsole(&out), log.Discard())
	require.NoError(t, cat.Run(context.Background(), exec, key, args...))
	require.True(t, strings.HasSuffix(out.String(), "Query successful\n"), out.String())

	tables := testutil.ParseTables(out.String())
	require.Len(t, tables, 1)
	return tables[0]
}

func TestEntriesInMenuOrder(t *testing.T) {
	cat, err := New(database.MySQL)
	require.NoError(t, err)

	var keys []string
	for _, e := range cat.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, keys)

	e, ok := cat.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, []string{"HD", "UHD"}, e.Params[0].Choices)

	_, ok = cat.Lookup("e")
	assert.False(t, ok)
}

func TestEveryDialectVerifies(t *testing.T) {
	for _, d := range []database.Dialect{database.MySQL, database.Postgres, database.Pgx, database.SQLite} {
		t.Run(d.Name(), func(t *testing.T) {
			cat, err := New(d)
			require.NoError(t, err)
			for _, e := range cat.Entries() {
				assert.NotEmpty(t, cat.Statement(e.Key))
			}
		})
	}
}

func TestStatementsPerDialect(t *testing.T) {
	my, err := New(database.MySQL)
	require.NoError(t, err)
	pg, err := New(database.Postgres)
	require.NoError(t, err)

	assert.Contains(t, my.Statement("1"), "WHERE Subscription_type = ?")
	assert.Contains(t, pg.Statement("1"), "WHERE Subscription_type = $1")

	assert.Contains(t, my.Statement("3"), "ROUND(AVG(YEAR(CURDATE()) - YEAR(DOB)), 2) AS AverageAge")
	assert.Contains(t, pg.Statement("3"), `AS "AverageAge"`)

	assert.Contains(t, my.Statement("4"), "M.Category = 'Comedy'")
	assert.Contains(t, pg.Statement("5"), `COUNT(S.sub_id) AS "SubscriptionCount"`)
	assert.Empty(t, my.Statement("9"))
}

func TestVerifyRejectsArityMismatch(t *testing.T) {
	e := Entry{
		Key:    "x",
		Params: []Param{{Name: "city"}},
		build:  func(database.Dialect) string { return "SELECT * FROM Actors" },
	}
	assert.EqualError(t, Verify(e), "report x: 0 placeholders for 1 parameters")

	e.build = func(database.Dialect) string { return "DELETE FROM Actors WHERE City = ?" }
	assert.ErrorContains(t, Verify(e), "expected a SELECT")

	e.build = func(database.Dialect) string { return "SELEC nonsense" }
	assert.Error(t, Verify(e))
}

func TestRunBindsDeclaredParameters(t *testing.T) {
	cat, err := New(database.Postgres)
	require.NoError(t, err)

	calls := map[string][]string{
		"1": {"HD"},
		"2": nil,
		"3": {"Athens"},
		"4": {"alice"},
		"5": nil,
	}
	for key, args := range calls {
		r := &recordingRunner{}
		require.NoError(t, cat.Run(context.Background(), r, key, args...))
		require.Len(t, r.queries, 1, key)

		e, _ := cat.Lookup(key)
		assert.Len(t, r.queries[0][1:], len(e.Params), key)
		assert.Equal(t, cat.Statement(key), r.queries[0][0])
		assert.Equal(t, len(e.Params), strings.Count(r.queries[0][0], "$"), key)
	}

	assert.EqualError(t, cat.Run(context.Background(), &recordingRunner{}, "7"), `unknown report "7"`)
}

func TestUsersBySubscription(t *testing.T) {
	for _, sub := range []string{"HD", "UHD"} {
		t.Run(sub, func(t *testing.T) {
			tbl := runReport(t, "1", sub)
			assert.Equal(t, []string{"User_id", "Username", "Subscription_type", "Country", "sub_id"}, tbl.Header)
			require.NotEmpty(t, tbl.Rows)
			for _, row := range tbl.Rows {
				assert.Equal(t, sub, row[2])
			}
		})
	}

	tbl := runReport(t, "1", "HD")
	assert.Len(t, tbl.Rows, 3)
	assert.Contains(t, tbl.Rows, []string{"5", "erin", "HD", "Italy", "NULL"})
}

func TestUsersBySubscriptionIsNotInjectable(t *testing.T) {
	tbl := runReport(t, "1", "HD' OR '1'='1")
	assert.Empty(t, tbl.Rows)
}

func TestActorsWithMovies(t *testing.T) {
	tbl := runReport(t, "2")
	assert.Equal(t, []string{"ActorID", "Name", "City", "DateOfBirth", "MovieID", "Title", "Genre", "ReleaseDate", "Role"}, tbl.Header)
	assert.Len(t, tbl.Rows, 4)
	assert.Contains(t, tbl.Rows, []string{"2", "Ann Rio", "Athens", "1990-07-15", "1", "Laugh Out", "Comedy", "2001-01-01", "Cameo"})
}

func TestActorsByCity(t *testing.T) {
	tbl := runReport(t, "3", "Athens")
	assert.Equal(t, []string{"City", "NumberOfActors", "AverageAge"}, tbl.Header)

	avg := strconv.FormatFloat(float64(time.Now().UTC().Year()-1985), 'f', -1, 64)
	assert.Equal(t, [][]string{{"Athens", "2", avg}}, tbl.Rows)
}

func TestActorsByUnknownCity(t *testing.T) {
	tbl := runReport(t, "3", "Atlantis")
	assert.Equal(t, [][]string{{"NULL", "0", "NULL"}}, tbl.Rows)
}

func TestComedyFavorites(t *testing.T) {
	tbl := runReport(t, "4", "alice")
	assert.Equal(t, []string{"Username", "MovieID", "Title", "Genre", "ReleaseDate"}, tbl.Header)
	assert.Equal(t, [][]string{{"alice", "1", "Laugh Out", "Comedy", "2001-01-01"}}, tbl.Rows)
}

func TestComedyFavoritesWithoutComedies(t *testing.T) {
	tbl := runReport(t, "4", "bob")
	assert.Equal(t, []string{"Username", "MovieID", "Title", "Genre", "ReleaseDate"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestSubscriptionsByCountry(t *testing.T) {
	tbl := runReport(t, "5")
	assert.Equal(t, []string{"Country", "SubscriptionCount"}, tbl.Header)
	assert.ElementsMatch(t, [][]string{{"Greece", "2"}, {"Italy", "1"}, {"Spain", "1"}}, tbl.Rows)
}
