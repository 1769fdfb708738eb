// Package testutil provides a small, fully populated copy of the reporting
// schema for tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/dshills/mininet/internal/config"
)

// Schema creates the tables the reports read. The DDL is plain enough for
// both SQLite and MySQL.
var Schema = []string{
	`CREATE TABLE Subscriptions (
		sub_id INT PRIMARY KEY,
		Plan VARCHAR(32) NOT NULL
	)`,
	`CREATE TABLE Users (
		User_id INT PRIMARY KEY,
		Username VARCHAR(64) NOT NULL,
		Subscription_type VARCHAR(8) NOT NULL,
		Country VARCHAR(64) NOT NULL,
		sub_id INT NULL
	)`,
	`CREATE TABLE Actors (
		Actor_id INT PRIMARY KEY,
		Name VARCHAR(64) NOT NULL,
		City VARCHAR(64) NOT NULL,
		DOB DATE NOT NULL
	)`,
	`CREATE TABLE Movies (
		Movie_id INT PRIMARY KEY,
		Title VARCHAR(128) NOT NULL,
		Category VARCHAR(32) NOT NULL,
		ReleaseDate DATE NOT NULL
	)`,
	`CREATE TABLE MovieActors (
		Actor_id INT NOT NULL,
		Movie_id INT NOT NULL,
		Role VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE FavoriteMovies (
		User_id INT NOT NULL,
		Movie_id INT NOT NULL
	)`,
}

// Data populates the schema.
//
//   - HD users: alice, carol, erin. UHD users: bob, dave.
//   - erin has no subscription row, so countries are Greece 2, Italy 1, Spain 1.
//   - Athens has two actors born 1980 and 1990; Rome has one.
//   - alice likes one comedy and one drama, bob only a drama.
var Data = []string{
	`INSERT INTO Subscriptions (sub_id, Plan) VALUES (1, 'HD'), (2, 'UHD'), (3, 'HD'), (4, 'UHD')`,
	`INSERT INTO Users (User_id, Username, Subscription_type, Country, sub_id) VALUES
		(1, 'alice', 'HD', 'Greece', 1),
		(2, 'bob', 'UHD', 'Greece', 2),
		(3, 'carol', 'HD', 'Italy', 3),
		(4, 'dave', 'UHD', 'Spain', 4),
		(5, 'erin', 'HD', 'Italy', NULL)`,
	`INSERT INTO Actors (Actor_id, Name, City, DOB) VALUES
		(1, 'Tom Hale', 'Athens', '1980-03-01'),
		(2, 'Ann Rio', 'Athens', '1990-07-15'),
		(3, 'Leo Ventura', 'Rome', '1975-01-20')`,
	`INSERT INTO Movies (Movie_id, Title, Category, ReleaseDate) VALUES
		(1, 'Laugh Out', 'Comedy', '2001-01-01'),
		(2, 'Dark Night', 'Drama', '2008-07-18'),
		(3, 'Funny Bones', 'Comedy', '1995-05-05')`,
	`INSERT INTO MovieActors (Actor_id, Movie_id, Role) VALUES
		(1, 1, 'Lead'),
		(2, 2, 'Villain'),
		(3, 3, 'Support'),
		(2, 1, 'Cameo')`,
	`INSERT INTO FavoriteMovies (User_id, Movie_id) VALUES
		(1, 1), (1, 2), (2, 2), (3, 3)`,
}

// Seed runs Schema then Data against db.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, stmt := range append(append([]string{}, Schema...), Data...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// SQLiteConfig creates a seeded SQLite file in a temp dir and returns a
// configuration pointing at it.
func SQLiteConfig(t *testing.T) config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mininet.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if err := Seed(context.Background(), db); err != nil {
		t.Fatalf("%v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Driver = config.DriverSQLite
	cfg.Host = ""
	cfg.User = ""
	cfg.Database = path
	return *cfg
}
