package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/historia/internal/store"
)

// Column order matches the fields of store.Session so rows scan by position.
const (
	sessionInsert = `
		INSERT INTO sessions (id, user_id, email, access_token, refresh_token, token_expiry, created_at, expires_at)
		VALUES (@id, @user_id, @email, @access_token, @refresh_token, @token_expiry, @created_at, @expires_at)`
	sessionSelectLive = `
		SELECT id, user_id, email, access_token, refresh_token, token_expiry, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()`
	sessionDelete        = `DELETE FROM sessions WHERE id = $1`
	sessionDeleteExpired = `DELETE FROM sessions WHERE expires_at <= NOW()`
)

// SessionRepository stores web sessions so sign-ins survive restarts.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// Create stores a session row.
func (r *SessionRepository) Create(ctx context.Context, session *store.Session) error {
	if _, err := r.pool.Exec(ctx, sessionInsert, sessionArgs(session)); err != nil {
		return fmt.Errorf("inserting session %s: %w", session.ID, err)
	}
	return nil
}

func sessionArgs(s *store.Session) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            s.ID,
		"user_id":       s.UserID,
		"email":         s.Email,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
		"token_expiry":  s.TokenExpiry,
		"created_at":    s.CreatedAt,
		"expires_at":    s.ExpiresAt,
	}
}

// Get returns the session with id, or store.ErrNotFound once it has expired.
func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, error) {
	rows, err := r.pool.Query(ctx, sessionSelectLive, id)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	session, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[store.Session])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return session, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, sessionDelete, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired prunes expired sessions and reports how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, sessionDeleteExpired)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ store.SessionRepository = (*SessionRepository)(nil)
