package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

// MilestoneRepository handles milestone database operations.
type MilestoneRepository struct {
	pool *pgxpool.Pool
}

const milestoneColumns = `id, user_id, title, description, milestone_date, is_birthday, created_at, updated_at`

// Create inserts a new milestone.
func (r *MilestoneRepository) Create(ctx context.Context, milestone *models.Milestone) error {
	query := `
		INSERT INTO milestones (` + milestoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		milestone.ID,
		milestone.UserID,
		milestone.Title,
		milestone.Description,
		milestone.MilestoneDate,
		milestone.IsBirthday,
		milestone.CreatedAt,
		milestone.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	return nil
}

// CreateBatch inserts multiple milestones in one statement. Rows that
// collide with an existing birthday for the same date are skipped.
func (r *MilestoneRepository) CreateBatch(ctx context.Context, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	query := `
		INSERT INTO milestones (` + milestoneColumns + `)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::date[], $6::bool[], $7::timestamptz[], $8::timestamptz[])
		ON CONFLICT DO NOTHING
	`

	ids := make([]string, len(milestones))
	userIDs := make([]string, len(milestones))
	titles := make([]string, len(milestones))
	descriptions := make([]*string, len(milestones))
	dates := make([]time.Time, len(milestones))
	birthdays := make([]bool, len(milestones))
	createdAts := make([]time.Time, len(milestones))
	updatedAts := make([]time.Time, len(milestones))

	for i, m := range milestones {
		ids[i] = m.ID
		userIDs[i] = m.UserID
		titles[i] = m.Title
		descriptions[i] = m.Description
		dates[i] = m.MilestoneDate
		birthdays[i] = m.IsBirthday
		createdAts[i] = m.CreatedAt
		updatedAts[i] = m.UpdatedAt
	}

	_, err := r.pool.Exec(ctx, query, ids, userIDs, titles, descriptions, dates, birthdays, createdAts, updatedAts)
	if err != nil {
		return fmt.Errorf("batch inserting milestones: %w", err)
	}
	return nil
}

// ListForUser retrieves all milestones for a user, ordered by date.
func (r *MilestoneRepository) ListForUser(ctx context.Context, userID string) ([]models.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE user_id = $1
		ORDER BY milestone_date ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user milestones: %w", err)
	}
	return scanMilestones(rows)
}

// ListBirthdays retrieves the birthday milestones of a user.
func (r *MilestoneRepository) ListBirthdays(ctx context.Context, userID string) ([]models.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE user_id = $1 AND is_birthday = TRUE
		ORDER BY milestone_date ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying birthday milestones: %w", err)
	}
	return scanMilestones(rows)
}

// CountForUser counts a user's milestones with the given birthday flag.
func (r *MilestoneRepository) CountForUser(ctx context.Context, userID string, birthdays bool) (int, error) {
	query := `SELECT COUNT(*) FROM milestones WHERE user_id = $1 AND is_birthday = $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, birthdays).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting milestones: %w", err)
	}
	return count, nil
}

// Update overwrites the mutable fields of a milestone.
func (r *MilestoneRepository) Update(ctx context.Context, milestone *models.Milestone) error {
	query := `
		UPDATE milestones
		SET title = $2, description = $3, milestone_date = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		milestone.ID,
		milestone.Title,
		milestone.Description,
		milestone.MilestoneDate,
		milestone.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a milestone by ID.
func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM milestones WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanMilestones(rows pgx.Rows) ([]models.Milestone, error) {
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Title,
			&m.Description,
			&m.MilestoneDate,
			&m.IsBirthday,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
