// Package weeks maps calendar dates onto the weeks of a life and resolves
// which phases, memories and milestones annotate each week.
//
// All functions are pure. Dates are calendar days: callers may pass any
// time of day, but only the year, month and day are used.
package weeks

import (
	"errors"
	"time"
)

const (
	// DaysPerWeek is the width of one week cell.
	DaysPerWeek = 7

	// WeeksPerYear is the number of cells in one grid row.
	WeeksPerYear = 52
)

// ErrInvalidWeek is returned for week numbers below 1.
var ErrInvalidWeek = errors.New("week number must be at least 1")

// Day truncates t to midnight of its calendar day. The result is in UTC so
// day arithmetic is never skewed by daylight saving transitions.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// secondsPerDay is exact for UTC midnights; Unix time has no leap seconds.
const secondsPerDay = 24 * 60 * 60

// dayNumber counts days since 1970-01-01. It stays exact for spans longer
// than a time.Duration can hold.
func dayNumber(t time.Time) int64 {
	return Day(t).Unix() / secondsPerDay
}

// daysBetween returns the whole number of days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dayNumber(b) - dayNumber(a))
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// WeekIndexOf returns the 1-based week of life containing target.
// Dates before birth yield indices below 1.
func WeekIndexOf(birth, target time.Time) int {
	return floorDiv(daysBetween(birth, target), DaysPerWeek) + 1
}

// WeekRange returns the first and last day of week index. The index is not
// validated; see ValidateWeekNumber.
func WeekRange(birth time.Time, index int) (start, end time.Time) {
	start = Day(birth).AddDate(0, 0, (index-1)*DaysPerWeek)
	end = start.AddDate(0, 0, DaysPerWeek-1)
	return start, end
}

// WeeksLived returns the number of complete weeks between birth and today.
func WeeksLived(birth, today time.Time) int {
	return floorDiv(daysBetween(birth, today), DaysPerWeek)
}

// ValidateWeekNumber reports whether n is a usable week index.
func ValidateWeekNumber(n int) error {
	if n < 1 {
		return ErrInvalidWeek
	}
	return nil
}
