package web

import (
	"context"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/justestif/historia/internal/auth"
	"github.com/justestif/historia/internal/fixtures"
	"github.com/justestif/historia/internal/optimistic"
	"github.com/justestif/historia/internal/sqlite"
)

func newWorkspaces(t *testing.T) *Workspaces {
	t.Helper()
	ctx := context.Background()

	repo, err := sqlite.Open(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if err := fixtures.Seed(ctx, repo); err != nil {
		t.Fatalf("seeding fixtures: %v", err)
	}
	return NewWorkspaces(repo, optimistic.WithDispatcher(optimistic.Synchronous))
}

func loadWorkspace(t *testing.T, ws *Workspaces, sessionID string) {
	t.Helper()
	if _, err := ws.Get(context.Background(), sessionID, fixtures.UserID); err != nil {
		t.Fatalf("Get(%q) error = %v", sessionID, err)
	}
}

func TestWorkspaces_LoadOutlivesCancelledRequest(t *testing.T) {
	ws := newWorkspaces(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := ws.Get(ctx, "session-1", fixtures.UserID)
	if err != nil {
		t.Fatalf("Get() with a cancelled request error = %v", err)
	}
	if got := len(w.Journal.Phases()); got != 4 {
		t.Errorf("loaded %d phases, want 4", got)
	}
	if ws.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ws.Len())
	}
}

func TestWorkspaces_SweepDropsEndedSessions(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspaces(t)
	sessions := NewSessionStore()

	live, err := sessions.Create(ctx, &oauth2.Token{}, auth.Identity{UserID: fixtures.UserID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	expired, err := sessions.Create(ctx, &oauth2.Token{}, auth.Identity{UserID: fixtures.UserID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	expired.CreatedAt = time.Now().Add(-sessionTTL - time.Minute)

	for _, id := range []string{live.ID, expired.ID, "never-issued"} {
		loadWorkspace(t, ws, id)
	}

	if n := ws.Sweep(ctx, sessions); n != 2 {
		t.Errorf("Sweep() dropped %d, want 2", n)
	}
	if ws.Len() != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", ws.Len())
	}
	ws.mu.Lock()
	_, ok := ws.items[live.ID]
	ws.mu.Unlock()
	if !ok {
		t.Error("live session's workspace should be kept")
	}
}

func TestWorkspaces_SweepAfterPrune(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspaces(t)
	repo := newMemorySessions()
	sessions := NewDBSessionStore(repo)

	session, err := sessions.Create(ctx, &oauth2.Token{}, auth.Identity{UserID: fixtures.UserID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	loadWorkspace(t, ws, session.ID)

	if n := ws.Sweep(ctx, sessions); n != 0 {
		t.Errorf("Sweep() with a live session dropped %d", n)
	}

	repo.mu.Lock()
	repo.now = repo.now.Add(sessionTTL + time.Minute)
	repo.mu.Unlock()
	if _, err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}

	if n := ws.Sweep(ctx, sessions); n != 1 {
		t.Errorf("Sweep() after prune dropped %d, want 1", n)
	}
	if ws.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ws.Len())
	}
}
