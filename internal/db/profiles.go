package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.DateOfBirth,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by user ID.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, email, full_name, date_of_birth, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.DateOfBirth,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &profile, nil
}

// UpdateName changes the display name, the only mutable profile field.
func (r *ProfileRepository) UpdateName(ctx context.Context, id string, fullName *string) error {
	query := `
		UPDATE profiles
		SET full_name = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, fullName)
	if err != nil {
		return fmt.Errorf("updating profile name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
