// Package birthdays generates the system-owned birthday milestones of a
// profile and backfills the ones that are missing.
package birthdays

import (
	"fmt"
	"time"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/weeks"
)

// MaxAge is the last birthday generated.
const MaxAge = 100

// Generate returns the birthday candidates for ages 1..MaxAge. Each falls
// on the birth month and day of birth year + age; a Feb 29 birthday lands
// on Mar 1 in non-leap years. IDs and owners are left empty.
func Generate(birth time.Time) []models.Milestone {
	birth = weeks.Day(birth)
	out := make([]models.Milestone, 0, MaxAge)
	for age := 1; age <= MaxAge; age++ {
		year := birth.Year() + age
		out = append(out, models.Milestone{
			Title:         fmt.Sprintf("%d in %d", age, year),
			MilestoneDate: time.Date(year, birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC),
			IsBirthday:    true,
		})
	}
	return out
}

// Reconcile returns the candidates whose date is not already taken by a
// birthday milestone in existing. Non-birthday milestones are ignored, so
// a custom milestone on a birthday does not suppress it.
func Reconcile(existing, candidates []models.Milestone) []models.Milestone {
	taken := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		if m.IsBirthday {
			taken[models.FormatDate(m.MilestoneDate)] = struct{}{}
		}
	}

	var out []models.Milestone
	for _, c := range candidates {
		if _, ok := taken[models.FormatDate(c.MilestoneDate)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
