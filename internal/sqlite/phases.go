package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/justestif/historia/internal/models"
)

type phaseRepo struct {
	db *sql.DB
}

func (r *phaseRepo) Create(ctx context.Context, phase *models.Phase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO phases (id, user_id, title, description, start_date, end_date, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		phase.ID,
		phase.UserID,
		phase.Title,
		nullString(phase.Description),
		models.FormatDate(phase.StartDate),
		models.FormatDate(phase.EndDate),
		phase.Color,
		formatTimestamp(phase.CreatedAt),
		formatTimestamp(phase.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *phaseRepo) ListForUser(ctx context.Context, userID string) ([]models.Phase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, start_date, end_date, color, created_at, updated_at
		FROM phases WHERE user_id = ?
		ORDER BY start_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user phases: %w", err)
	}
	defer rows.Close()

	var phases []models.Phase
	for rows.Next() {
		var (
			p           models.Phase
			description sql.NullString
			d           rowDates
			end         string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &description, &d.date, &end, &p.Color, &d.createdAt, &d.updatedAt); err != nil {
			return nil, fmt.Errorf("scanning phase: %w", err)
		}
		p.Description = stringPtr(description)
		if p.StartDate, p.CreatedAt, p.UpdatedAt, err = d.parse(); err != nil {
			return nil, err
		}
		if p.EndDate, err = models.ParseDate(end); err != nil {
			return nil, fmt.Errorf("parsing end date %q: %w", end, err)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (r *phaseRepo) Update(ctx context.Context, phase *models.Phase) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE phases
		SET title = ?, description = ?, start_date = ?, end_date = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		phase.Title,
		nullString(phase.Description),
		models.FormatDate(phase.StartDate),
		models.FormatDate(phase.EndDate),
		phase.Color,
		formatTimestamp(phase.UpdatedAt),
		phase.ID,
	)
	if err != nil {
		return fmt.Errorf("updating phase: %w", err)
	}
	return rowsAffected(result)
}

func (r *phaseRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	return rowsAffected(result)
}
