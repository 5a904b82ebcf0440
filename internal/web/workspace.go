package web

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/historia/internal/birthdays"
	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/optimistic"
	"github.com/justestif/historia/internal/store"
)

// ErrNoProfile is returned when the signed-in user has not created a
// profile yet.
var ErrNoProfile = errors.New("profile not created")

// Workspace is one session's loaded journal.
type Workspace struct {
	mu      sync.RWMutex
	profile models.Profile

	Journal *optimistic.Store
}

// Profile returns a copy of the profile.
func (w *Workspace) Profile() models.Profile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.profile
}

// SetFullName updates the cached display name.
func (w *Workspace) SetFullName(name *string) {
	w.mu.Lock()
	w.profile.FullName = name
	w.mu.Unlock()
}

// Workspaces holds the workspace of every active session.
type Workspaces struct {
	repo      store.Repository
	birthdays *birthdays.Service
	opts      []optimistic.Option

	loads singleflight.Group

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewWorkspaces creates an empty registry. opts are passed to every
// optimistic store it creates.
func NewWorkspaces(repo store.Repository, opts ...optimistic.Option) *Workspaces {
	return &Workspaces{
		repo:      repo,
		birthdays: birthdays.New(repo.Milestones()),
		opts:      opts,
		items:     make(map[string]*Workspace),
	}
}

// Get returns the session's workspace, loading it on first use. Loading
// backfills birthday milestones, then reads the three collections
// concurrently. Concurrent first requests share one load, which outlives
// the cancellation of whichever request started it.
func (ws *Workspaces) Get(ctx context.Context, sessionID, userID string) (*Workspace, error) {
	ws.mu.Lock()
	w, ok := ws.items[sessionID]
	ws.mu.Unlock()
	if ok {
		return w, nil
	}

	v, err, _ := ws.loads.Do(sessionID, func() (any, error) {
		w, err := ws.load(context.WithoutCancel(ctx), userID)
		if err != nil {
			return nil, err
		}
		ws.mu.Lock()
		ws.items[sessionID] = w
		ws.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

// Drop forgets the session's workspace, waiting for its pending writes.
func (ws *Workspaces) Drop(sessionID string) {
	ws.mu.Lock()
	w, ok := ws.items[sessionID]
	delete(ws.items, sessionID)
	ws.mu.Unlock()

	if ok {
		w.Journal.Wait()
	}
}

// Sweep drops the workspace of every session the manager no longer
// knows, and returns how many were dropped.
func (ws *Workspaces) Sweep(ctx context.Context, sessions SessionManager) int {
	ws.mu.Lock()
	ids := make([]string, 0, len(ws.items))
	for id := range ws.items {
		ids = append(ids, id)
	}
	ws.mu.Unlock()

	dropped := 0
	for _, id := range ids {
		if sessions.Get(ctx, id) == nil {
			ws.Drop(id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of loaded workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

// Wait blocks until every workspace's pending writes have finished.
func (ws *Workspaces) Wait() {
	ws.mu.Lock()
	items := make([]*Workspace, 0, len(ws.items))
	for _, w := range ws.items {
		items = append(items, w)
	}
	ws.mu.Unlock()

	for _, w := range items {
		w.Journal.Wait()
	}
}

func (ws *Workspaces) load(ctx context.Context, userID string) (*Workspace, error) {
	profile, err := ws.repo.Profiles().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	n, err := ws.birthdays.Backfill(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("backfilling birthdays: %w", err)
	}
	if n > 0 {
		logger.Info("added birthday milestones", "user", userID, "count", n)
	}

	var seed optimistic.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seed.Phases, err = ws.repo.Phases().ListForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		seed.Memories, err = ws.repo.Memories().ListForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		seed.Milestones, err = ws.repo.Milestones().ListForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading journal: %w", err)
	}

	return &Workspace{
		profile: *profile,
		Journal: optimistic.New(userID, seed, ws.repo, ws.opts...),
	}, nil
}
