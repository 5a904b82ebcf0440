// Package store declares the persistence boundary of the journal. The week
// engine and services only ever see these interfaces; main decides whether
// PostgreSQL or the SQLite dev store sits behind them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/justestif/historia/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository groups the per-entity repositories.
type Repository interface {
	Profiles() ProfileRepository
	Phases() PhaseRepository
	Memories() MemoryRepository
	Milestones() MilestoneRepository
}

// ProfileRepository handles profile records.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateName(ctx context.Context, id string, fullName *string) error
}

// PhaseRepository handles phase records.
type PhaseRepository interface {
	// ListForUser returns phases ordered by start date ascending.
	ListForUser(ctx context.Context, userID string) ([]models.Phase, error)
	Create(ctx context.Context, phase *models.Phase) error
	Update(ctx context.Context, phase *models.Phase) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepository handles memory records.
type MemoryRepository interface {
	// ListForUser returns memories ordered by date ascending.
	ListForUser(ctx context.Context, userID string) ([]models.Memory, error)
	// ListInRange returns memories dated within [start, end] inclusive.
	ListInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Memory, error)
	Create(ctx context.Context, memory *models.Memory) error
	Update(ctx context.Context, memory *models.Memory) error
	Delete(ctx context.Context, id string) error
}

// MilestoneRepository handles milestone records.
type MilestoneRepository interface {
	// ListForUser returns milestones ordered by date ascending.
	ListForUser(ctx context.Context, userID string) ([]models.Milestone, error)
	// ListBirthdays returns only milestones flagged as birthdays.
	ListBirthdays(ctx context.Context, userID string) ([]models.Milestone, error)
	Create(ctx context.Context, milestone *models.Milestone) error
	CreateBatch(ctx context.Context, milestones []models.Milestone) error
	Update(ctx context.Context, milestone *models.Milestone) error
	Delete(ctx context.Context, id string) error
	// CountForUser counts milestones with the given birthday flag.
	CountForUser(ctx context.Context, userID string, birthdays bool) (int, error)
}

// Session is a persisted web session.
type Session struct {
	ID           string
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// SessionRepository handles persisted web sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
