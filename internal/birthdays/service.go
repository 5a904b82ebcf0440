package birthdays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

// ErrNoBirthDate is returned when a profile has no birth date to derive
// birthdays from.
var ErrNoBirthDate = errors.New("profile has no birth date")

var insertedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "historia",
	Name:      "birthday_milestones_inserted_total",
	Help:      "Birthday milestones inserted by backfill.",
})

// Service backfills birthday milestones.
type Service struct {
	milestones store.MilestoneRepository
	now        func() time.Time
}

// New creates a new birthday service.
func New(milestones store.MilestoneRepository) *Service {
	return &Service{milestones: milestones, now: time.Now}
}

// Backfill inserts the birthday milestones the profile is missing and
// returns how many were inserted. Running it again inserts nothing.
func (s *Service) Backfill(ctx context.Context, profile *models.Profile) (int, error) {
	if profile == nil || profile.DateOfBirth.IsZero() {
		return 0, ErrNoBirthDate
	}

	existing, err := s.milestones.ListBirthdays(ctx, profile.ID)
	if err != nil {
		return 0, fmt.Errorf("loading birthday milestones: %w", err)
	}

	missing := Reconcile(existing, Generate(profile.DateOfBirth))
	if len(missing) == 0 {
		return 0, nil
	}

	now := s.now().UTC()
	for i := range missing {
		missing[i].ID = uuid.NewString()
		missing[i].UserID = profile.ID
		missing[i].CreatedAt = now
		missing[i].UpdatedAt = now
	}

	if err := s.milestones.CreateBatch(ctx, missing); err != nil {
		return 0, fmt.Errorf("inserting birthday milestones: %w", err)
	}

	insertedTotal.Add(float64(len(missing)))
	logger.Debug("birthday milestones backfilled", "user", profile.ID, "count", len(missing))

	return len(missing), nil
}
