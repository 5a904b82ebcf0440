package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, date_of_birth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.Email,
		nullString(profile.FullName),
		models.FormatDate(profile.DateOfBirth),
		formatTimestamp(now),
		formatTimestamp(now),
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	return nil
}

func (r *profileRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, date_of_birth, created_at, updated_at
		FROM profiles WHERE id = ?`, id)

	var (
		p        models.Profile
		fullName sql.NullString
		d        rowDates
	)
	err := row.Scan(&p.ID, &p.Email, &fullName, &d.date, &d.createdAt, &d.updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	p.FullName = stringPtr(fullName)
	if p.DateOfBirth, p.CreatedAt, p.UpdatedAt, err = d.parse(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) UpdateName(ctx context.Context, id string, fullName *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET full_name = ?, updated_at = ? WHERE id = ?`,
		nullString(fullName), formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating profile name: %w", err)
	}
	return rowsAffected(result)
}
