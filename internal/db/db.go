// Package db provides PostgreSQL database access for Historia.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/historia/internal/store"
)

//go:embed schema.sql
var schema string

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Profiles returns a ProfileRepository.
func (db *DB) Profiles() store.ProfileRepository {
	return &ProfileRepository{pool: db.pool}
}

// Phases returns a PhaseRepository.
func (db *DB) Phases() store.PhaseRepository {
	return &PhaseRepository{pool: db.pool}
}

// Memories returns a MemoryRepository.
func (db *DB) Memories() store.MemoryRepository {
	return &MemoryRepository{pool: db.pool}
}

// Milestones returns a MilestoneRepository.
func (db *DB) Milestones() store.MilestoneRepository {
	return &MilestoneRepository{pool: db.pool}
}

// Sessions returns a SessionRepository.
func (db *DB) Sessions() store.SessionRepository {
	return &SessionRepository{pool: db.pool}
}

var _ store.Repository = (*DB)(nil)
