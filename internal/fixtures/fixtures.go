// Package fixtures holds the dev-mode identity and sample journal.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

// Dev identity.
const (
	UserID = "dev-user-123"
	Email  = "dev@historia.app"
	Name   = "Dev User"
)

// BirthDate is the dev profile's date of birth.
var BirthDate = time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Profile returns the dev profile.
func Profile(now time.Time) models.Profile {
	name := Name
	return models.Profile{
		ID:          UserID,
		Email:       Email,
		FullName:    &name,
		DateOfBirth: BirthDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Phases returns the sample phases, ordered and non-overlapping.
func Phases(now time.Time) []models.Phase {
	y := BirthDate.Year()
	phases := []models.Phase{
		{ID: "phase-1", Title: "Early Childhood", StartDate: BirthDate, EndDate: date(y+5, time.August, 31), Color: "#84CC16"},
		{ID: "phase-2", Title: "School Years", StartDate: date(y+5, time.September, 1), EndDate: date(y+18, time.June, 15), Color: "#3B82F6"},
		{ID: "phase-3", Title: "University", StartDate: date(y+18, time.September, 1), EndDate: date(y+22, time.May, 31), Color: "#A855F7"},
		{ID: "phase-4", Title: "Adult Life", StartDate: date(y+22, time.July, 1), EndDate: date(y+34, time.June, 1), Color: "#F97316"},
	}
	desc := "Moved to San Francisco, California."
	phases[3].Description = &desc
	for i := range phases {
		phases[i].UserID = UserID
		phases[i].CreatedAt = now
		phases[i].UpdatedAt = now
	}
	return phases
}

// Memories returns the sample memories.
func Memories(now time.Time) []models.Memory {
	y := BirthDate.Year()
	content := "This is a sample reflection. Life was good."
	memories := []models.Memory{
		{ID: "memory-1", Title: "Home from the hospital", MemoryDate: date(y, time.June, 18)},
		{ID: "memory-2", Title: "Summer in Fresno", Content: &content, MemoryDate: date(y+6, time.July, 4)},
		{ID: "memory-3", Title: "Road trip up the coast", MemoryDate: date(y+20, time.August, 12)},
		{ID: "memory-4", Title: "First apartment", Content: &content, MemoryDate: date(y+25, time.March, 1)},
	}
	for i := range memories {
		memories[i].UserID = UserID
		memories[i].CreatedAt = now
		memories[i].UpdatedAt = now
	}
	return memories
}

// Milestones returns the sample custom milestones. Birthdays are left to
// the backfill.
func Milestones(now time.Time) []models.Milestone {
	y := BirthDate.Year()
	milestones := []models.Milestone{
		{ID: "milestone-1", Title: "First steps", MilestoneDate: date(y+1, time.March, 10)},
		{ID: "milestone-2", Title: "Started kindergarten", MilestoneDate: date(y+5, time.September, 5)},
		{ID: "milestone-3", Title: "Graduated high school", MilestoneDate: date(y+18, time.June, 15)},
		{ID: "milestone-4", Title: "Got first job", MilestoneDate: date(y+22, time.July, 1)},
	}
	for i := range milestones {
		milestones[i].UserID = UserID
		milestones[i].CreatedAt = now
		milestones[i].UpdatedAt = now
	}
	return milestones
}

// Seed writes the dev journal into repo. It does nothing when the dev
// profile already exists, so a persistent dev database keeps its edits.
func Seed(ctx context.Context, repo store.Repository) error {
	_, err := repo.Profiles().Get(ctx, UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking dev profile: %w", err)
	}

	now := time.Now().UTC()
	profile := Profile(now)
	if err := repo.Profiles().Create(ctx, &profile); err != nil {
		return fmt.Errorf("creating dev profile: %w", err)
	}
	for _, p := range Phases(now) {
		if err := repo.Phases().Create(ctx, &p); err != nil {
			return fmt.Errorf("creating phase %q: %w", p.Title, err)
		}
	}
	for _, m := range Memories(now) {
		if err := repo.Memories().Create(ctx, &m); err != nil {
			return fmt.Errorf("creating memory %q: %w", m.Title, err)
		}
	}
	if err := repo.Milestones().CreateBatch(ctx, Milestones(now)); err != nil {
		return fmt.Errorf("creating milestones: %w", err)
	}
	return nil
}
