// Package optimistic holds a session's journal collections in memory.
// Mutations apply locally at once and are written to the repository in the
// background; a failed write is logged and counted but never rolled back.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
	"github.com/justestif/historia/internal/validation"
)

// ErrBirthdayMilestone is returned when deleting a system-owned birthday.
var ErrBirthdayMilestone = errors.New("birthday milestones cannot be deleted")

// DefaultWriteTimeout bounds each background repository write.
const DefaultWriteTimeout = 10 * time.Second

// Snapshot is a point-in-time copy of the three collections.
type Snapshot struct {
	Phases     []models.Phase
	Memories   []models.Memory
	Milestones []models.Milestone
}

// Dispatcher runs a persistence job. The default queues it behind the
// store's earlier writes so the repository sees them in mutation order.
type Dispatcher func(job func())

// Synchronous runs jobs inline. Useful in tests.
func Synchronous(job func()) { job() }

// Option configures a Store.
type Option func(*Store)

// WithDispatcher sets how persistence jobs are run.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Store) { s.dispatch = d }
}

// WithClock sets the time source for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets how new entity IDs are made.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithWriteTimeout bounds each repository write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// Store is the optimistic working copy of one user's journal.
//
// The local ID of a new entity is also its repository ID, so log lines
// about a failed write can be matched to the entity the user sees.
type Store struct {
	userID string
	repo   store.Repository

	dispatch Dispatcher
	now      func() time.Time
	newID    func() string
	timeout  time.Duration
	pending  sync.WaitGroup

	qmu      sync.Mutex
	queue    []func()
	draining bool

	mu         sync.Mutex
	phases     []models.Phase
	memories   []models.Memory
	milestones []models.Milestone
	failures   int
}

// New creates a store for userID seeded with the given collections.
func New(userID string, seed Snapshot, repo store.Repository, opts ...Option) *Store {
	s := &Store{
		userID:     userID,
		repo:       repo,
		now:        time.Now,
		newID:      uuid.NewString,
		timeout:    DefaultWriteTimeout,
		phases:     slices.Clone(seed.Phases),
		memories:   slices.Clone(seed.Memories),
		milestones: slices.Clone(seed.Milestones),
	}
	s.dispatch = s.enqueue
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the owner of the collections.
func (s *Store) UserID() string {
	return s.userID
}

// Phases returns a copy of the phases.
func (s *Store) Phases() []models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.phases)
}

// Memories returns a copy of the memories.
func (s *Store) Memories() []models.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.memories)
}

// Milestones returns a copy of the milestones.
func (s *Store) Milestones() []models.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.milestones)
}

// Snapshot returns a consistent copy of all three collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phases:     slices.Clone(s.phases),
		Memories:   slices.Clone(s.memories),
		Milestones: slices.Clone(s.milestones),
	}
}

// TakeFailures returns the number of background writes that failed since
// the last call, and resets it.
func (s *Store) TakeFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.failures
	s.failures = 0
	return n
}

// Wait blocks until every dispatched write has finished, draining the
// write queue.
func (s *Store) Wait() {
	s.pending.Wait()
}

// enqueue appends job to the write queue and starts a worker if none is
// running. At most one worker runs per store.
func (s *Store) enqueue(job func()) {
	s.qmu.Lock()
	s.queue = append(s.queue, job)
	if s.draining {
		s.qmu.Unlock()
		return
	}
	s.draining = true
	s.qmu.Unlock()

	go s.drain()
}

// drain runs queued jobs one at a time until the queue is empty.
func (s *Store) drain() {
	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.qmu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		job()
	}
}

// persist hands a repository write to the dispatcher.
func (s *Store) persist(entity, op, id string, write func(ctx context.Context) error) {
	s.pending.Add(1)
	s.dispatch(func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := write(ctx); err != nil {
			persistFailures.WithLabelValues(entity, op).Inc()
			logger.Error("background write failed", "entity", entity, "op", op, "id", id, "user", s.userID, "err", err)

			s.mu.Lock()
			s.failures++
			s.mu.Unlock()
		}
	})
}

// stamp returns the current time for timestamps.
func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// AddPhase validates and appends a new phase.
func (s *Store) AddPhase(in models.PhaseInput) (models.Phase, error) {
	s.mu.Lock()
	if err := validation.Phase(in, s.phases, ""); err != nil {
		s.mu.Unlock()
		return models.Phase{}, err
	}
	now := s.stamp()
	p := models.Phase{
		ID:          s.newID(),
		UserID:      s.userID,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.phases = append(s.phases, p)
	s.mu.Unlock()

	row := p
	s.persist("phase", "insert", p.ID, func(ctx context.Context) error {
		return s.repo.Phases().Create(ctx, &row)
	})
	return p, nil
}

// EditPhase merges patch into the phase with id. Unknown ids are ignored.
func (s *Store) EditPhase(id string, patch models.PhasePatch) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.phases, func(p models.Phase) bool { return p.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	p := s.phases[i]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = models.StringPtr(*patch.Description)
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = *patch.EndDate
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}

	in := models.PhaseInput{Title: p.Title, Description: p.Description, StartDate: p.StartDate, EndDate: p.EndDate, Color: p.Color}
	if err := validation.Phase(in, s.phases, id); err != nil {
		s.mu.Unlock()
		return err
	}
	p.UpdatedAt = s.stamp()
	s.phases[i] = p
	s.mu.Unlock()

	s.persist("phase", "update", id, func(ctx context.Context) error {
		return s.repo.Phases().Update(ctx, &p)
	})
	return nil
}

// DeletePhase removes the phase with id. Unknown ids are ignored.
func (s *Store) DeletePhase(id string) {
	s.mu.Lock()
	n := len(s.phases)
	s.phases = slices.DeleteFunc(s.phases, func(p models.Phase) bool { return p.ID == id })
	removed := len(s.phases) < n
	s.mu.Unlock()

	if removed {
		s.persist("phase", "delete", id, func(ctx context.Context) error {
			return s.repo.Phases().Delete(ctx, id)
		})
	}
}

// AddMemory validates and appends a new memory.
func (s *Store) AddMemory(in models.MemoryInput) (models.Memory, error) {
	if err := validation.Memory(in); err != nil {
		return models.Memory{}, err
	}

	now := s.stamp()
	m := models.Memory{
		ID:         s.newID(),
		UserID:     s.userID,
		Title:      in.Title,
		Content:    in.Content,
		MemoryDate: in.MemoryDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.memories = append(s.memories, m)
	s.mu.Unlock()

	row := m
	s.persist("memory", "insert", m.ID, func(ctx context.Context) error {
		return s.repo.Memories().Create(ctx, &row)
	})
	return m, nil
}

// EditMemory merges patch into the memory with id. Unknown ids are ignored.
func (s *Store) EditMemory(id string, patch models.MemoryPatch) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.memories, func(m models.Memory) bool { return m.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	m := s.memories[i]
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Content != nil {
		m.Content = models.StringPtr(*patch.Content)
	}
	if patch.MemoryDate != nil {
		m.MemoryDate = *patch.MemoryDate
	}

	if err := validation.Memory(models.MemoryInput{Title: m.Title, Content: m.Content, MemoryDate: m.MemoryDate}); err != nil {
		s.mu.Unlock()
		return err
	}
	m.UpdatedAt = s.stamp()
	s.memories[i] = m
	s.mu.Unlock()

	s.persist("memory", "update", id, func(ctx context.Context) error {
		return s.repo.Memories().Update(ctx, &m)
	})
	return nil
}

// DeleteMemory removes the memory with id. Unknown ids are ignored.
func (s *Store) DeleteMemory(id string) {
	s.mu.Lock()
	n := len(s.memories)
	s.memories = slices.DeleteFunc(s.memories, func(m models.Memory) bool { return m.ID == id })
	removed := len(s.memories) < n
	s.mu.Unlock()

	if removed {
		s.persist("memory", "delete", id, func(ctx context.Context) error {
			return s.repo.Memories().Delete(ctx, id)
		})
	}
}

// AddMilestone validates and appends a new milestone.
func (s *Store) AddMilestone(in models.MilestoneInput) (models.Milestone, error) {
	if err := validation.Milestone(in); err != nil {
		return models.Milestone{}, err
	}

	now := s.stamp()
	m := models.Milestone{
		ID:            s.newID(),
		UserID:        s.userID,
		Title:         in.Title,
		Description:   in.Description,
		MilestoneDate: in.MilestoneDate,
		IsBirthday:    in.IsBirthday,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.milestones = append(s.milestones, m)
	s.mu.Unlock()

	row := m
	s.persist("milestone", "insert", m.ID, func(ctx context.Context) error {
		return s.repo.Milestones().Create(ctx, &row)
	})
	return m, nil
}

// EditMilestone merges patch into the milestone with id. Unknown ids are
// ignored. The birthday flag never changes.
func (s *Store) EditMilestone(id string, patch models.MilestonePatch) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.milestones, func(m models.Milestone) bool { return m.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	m := s.milestones[i]
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = models.StringPtr(*patch.Description)
	}
	// Birthdays stay on their date so the backfill keeps recognizing them.
	if patch.MilestoneDate != nil && !m.IsBirthday {
		m.MilestoneDate = *patch.MilestoneDate
	}

	in := models.MilestoneInput{Title: m.Title, Description: m.Description, MilestoneDate: m.MilestoneDate, IsBirthday: m.IsBirthday}
	if err := validation.Milestone(in); err != nil {
		s.mu.Unlock()
		return err
	}
	m.UpdatedAt = s.stamp()
	s.milestones[i] = m
	s.mu.Unlock()

	s.persist("milestone", "update", id, func(ctx context.Context) error {
		return s.repo.Milestones().Update(ctx, &m)
	})
	return nil
}

// DeleteMilestone removes the milestone with id. Unknown ids are ignored;
// birthday milestones are refused with ErrBirthdayMilestone.
func (s *Store) DeleteMilestone(id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.milestones, func(m models.Milestone) bool { return m.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	if s.milestones[i].IsBirthday {
		s.mu.Unlock()
		return fmt.Errorf("deleting milestone %s: %w", id, ErrBirthdayMilestone)
	}
	s.milestones = slices.Delete(s.milestones, i, i+1)
	s.mu.Unlock()

	s.persist("milestone", "delete", id, func(ctx context.Context) error {
		return s.repo.Milestones().Delete(ctx, id)
	})
	return nil
}
