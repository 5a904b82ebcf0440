package weeks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/historia/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWeekIndexOf(t *testing.T) {
	birth := mustDate(t, "1990-06-15")

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"birth day", "1990-06-15", 1},
		{"last day of week 1", "1990-06-21", 1},
		{"first day of week 2", "1990-06-22", 2},
		{"day before birth", "1990-06-14", 0},
		{"week before birth", "1990-06-08", 0},
		{"eight days before birth", "1990-06-07", -1},
		{"first birthday", "1991-06-15", 53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekIndexOf(birth, mustDate(t, tt.target)))
		})
	}
}

func TestWeekIndexOf_IgnoresTimeOfDay(t *testing.T) {
	birth := time.Date(1990, 6, 15, 23, 30, 0, 0, time.UTC)
	target := time.Date(1990, 6, 22, 0, 5, 0, 0, time.FixedZone("EST", -5*3600))

	assert.Equal(t, 2, WeekIndexOf(birth, target))
}

func TestWeekRange_RoundTrip(t *testing.T) {
	births := []string{"1990-06-15", "2000-02-29", "1987-12-31", "2023-03-12"}

	for _, b := range births {
		birth := mustDate(t, b)
		for n := 1; n <= LifeWeeks100; n++ {
			start, end := WeekRange(birth, n)

			require.Equal(t, n, WeekIndexOf(birth, start), "start of week %d (birth %s)", n, b)
			require.Equal(t, n, WeekIndexOf(birth, end), "end of week %d (birth %s)", n, b)
			require.Equal(t, 6*24*time.Hour, end.Sub(start), "week %d width", n)

			nextStart, _ := WeekRange(birth, n+1)
			require.Equal(t, 24*time.Hour, nextStart.Sub(end), "gap after week %d", n)
		}
	}
}

func TestWeekIndexOf_LongSpans(t *testing.T) {
	birth := mustDate(t, "1800-01-01")
	target := mustDate(t, "2300-01-01")

	// 500 years of 365 days plus 121 leap days.
	require.Equal(t, 182621, daysBetween(birth, target))
	assert.Equal(t, -182621, daysBetween(target, birth))

	n := WeekIndexOf(birth, target)
	assert.Equal(t, 26089, n)

	start, end := WeekRange(birth, n)
	assert.Equal(t, "2299-12-27", models.FormatDate(start))
	assert.Equal(t, "2300-01-02", models.FormatDate(end))
	assert.Equal(t, n, WeekIndexOf(birth, start))
	assert.Equal(t, 26088, WeeksLived(birth, target))
}

func TestWeekRange_ContainsMappedDate(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	d := mustDate(t, "2011-11-11")

	start, end := WeekRange(birth, WeekIndexOf(birth, d))

	assert.False(t, d.Before(start))
	assert.False(t, d.After(end))
}

func TestWeeksLived(t *testing.T) {
	birth := mustDate(t, "1990-06-15")

	assert.Equal(t, 1774, WeeksLived(birth, mustDate(t, "2024-06-15")))
	assert.Equal(t, 0, WeeksLived(birth, birth))
	assert.Equal(t, 0, WeeksLived(birth, mustDate(t, "1990-06-21")))
	assert.Equal(t, 1, WeeksLived(birth, mustDate(t, "1990-06-22")))

	// The week that contains "today" is the one after the last complete week.
	today := mustDate(t, "2024-06-15")
	lived := WeeksLived(birth, today)
	start, end := WeekRange(birth, lived)
	assert.True(t, end.Before(today))
	assert.Equal(t, lived+1, WeekIndexOf(birth, today))
	assert.False(t, start.After(today))
}

func TestValidateWeekNumber(t *testing.T) {
	assert.ErrorIs(t, ValidateWeekNumber(0), ErrInvalidWeek)
	assert.ErrorIs(t, ValidateWeekNumber(-3), ErrInvalidWeek)
	assert.NoError(t, ValidateWeekNumber(1))
	assert.NoError(t, ValidateWeekNumber(LifeWeeks100))
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{14, 7, 2},
		{13, 7, 1},
		{0, 7, 0},
		{-1, 7, -1},
		{-7, 7, -1},
		{-8, 7, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}
