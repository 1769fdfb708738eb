package catalog

import (
	"fmt"

	"github.com/dshills/mininet/internal/database"
)

// The five reports, in menu order. Placeholders are always "?"; dialects
// rebind them.

// usersBySubscription - every column of the users on one subscription type.
func usersBySubscription(d database.Dialect) string {
	return `
SELECT *
FROM Users U
WHERE Subscription_type = ?`
}

// actorsWithMovies - each actor next to every movie they appear in and the
// role they played.
func actorsWithMovies(d database.Dialect) string {
	return fmt.Sprintf(`
SELECT
    A.Actor_id AS %s,
    A.Name AS %s,
    A.City AS %s,
    A.DOB AS %s,
    M.Movie_id AS %s,
    M.Title AS %s,
    M.Category AS %s,
    M.ReleaseDate AS %s,
    MA.Role AS %s
FROM Actors A
JOIN MovieActors MA ON A.Actor_id = MA.Actor_id
JOIN Movies M ON MA.Movie_id = M.Movie_id`,
		d.Alias("ActorID"), d.Alias("Name"), d.Alias("City"), d.Alias("DateOfBirth"),
		d.Alias("MovieID"), d.Alias("Title"), d.Alias("Genre"), d.Alias("ReleaseDate"),
		d.Alias("Role"))
}

// actorsByCity - how many actors live in a city and their average age.
// Without GROUP BY the aggregate always yields exactly one row: a city with
// no actors gives a count of 0 and a NULL average.
func actorsByCity(d database.Dialect) string {
	return fmt.Sprintf(`
SELECT
    MAX(City) AS %s,
    COUNT(Actor_id) AS %s,
    ROUND(AVG(%s), 2) AS %s
FROM Actors
WHERE City = ?`,
		d.Alias("City"), d.Alias("NumberOfActors"), d.YearsSince("DOB"), d.Alias("AverageAge"))
}

// comedyFavorites - a user's favourite movies, comedies only.
func comedyFavorites(d database.Dialect) string {
	return fmt.Sprintf(`
SELECT
    U.Username AS %s,
    M.Movie_id AS %s,
    M.Title AS %s,
    M.Category AS %s,
    M.ReleaseDate AS %s
FROM Users U
JOIN FavoriteMovies FM ON U.User_id = FM.User_id
JOIN Movies M ON FM.Movie_id = M.Movie_id
WHERE U.Username = ? AND M.Category = 'Comedy'`,
		d.Alias("Username"), d.Alias("MovieID"), d.Alias("Title"), d.Alias("Genre"), d.Alias("ReleaseDate"))
}

// subscriptionsByCountry - number of subscriptions held per country.
func subscriptionsByCountry(d database.Dialect) string {
	return fmt.Sprintf(`
SELECT
    U.Country AS %s,
    COUNT(S.sub_id) AS %s
FROM Subscriptions S
JOIN Users U ON S.sub_id = U.sub_id
GROUP BY U.Country`,
		d.Alias("Country"), d.Alias("SubscriptionCount"))
}
