package timeutil

import "time"

// Layouts used when printing temporal values.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// IsMidnight reports whether t carries no time-of-day component.
func IsMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// Format prints a DATE column as a date and anything with a time of day as
// a full timestamp. Drivers hand both back as time.Time.
func Format(t time.Time) string {
	if IsMidnight(t) {
		return t.Format(DateFormat)
	}
	return t.Format(DateTimeFormat)
}
