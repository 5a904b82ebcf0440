package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

// PhaseRepository handles phase database operations.
type PhaseRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new phase. The caller supplies the ID and timestamps.
func (r *PhaseRepository) Create(ctx context.Context, phase *models.Phase) error {
	query := `
		INSERT INTO phases (id, user_id, title, description, start_date, end_date, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		phase.ID,
		phase.UserID,
		phase.Title,
		phase.Description,
		phase.StartDate,
		phase.EndDate,
		phase.Color,
		phase.CreatedAt,
		phase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

// ListForUser retrieves all phases for a user, ordered by start date.
func (r *PhaseRepository) ListForUser(ctx context.Context, userID string) ([]models.Phase, error) {
	query := `
		SELECT id, user_id, title, description, start_date, end_date, color, created_at, updated_at
		FROM phases
		WHERE user_id = $1
		ORDER BY start_date ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user phases: %w", err)
	}
	defer rows.Close()

	var phases []models.Phase
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Title,
			&p.Description,
			&p.StartDate,
			&p.EndDate,
			&p.Color,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning phase: %w", err)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// Update overwrites the mutable fields of a phase.
func (r *PhaseRepository) Update(ctx context.Context, phase *models.Phase) error {
	query := `
		UPDATE phases
		SET title = $2, description = $3, start_date = $4, end_date = $5, color = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		phase.ID,
		phase.Title,
		phase.Description,
		phase.StartDate,
		phase.EndDate,
		phase.Color,
		phase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating phase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a phase by ID.
func (r *PhaseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM phases WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
