package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/justestif/historia/internal/models"
)

type milestoneRepo struct {
	db *sql.DB
}

const (
	milestoneInsert = `
		INSERT INTO milestones (id, user_id, title, description, milestone_date, is_birthday, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	milestoneBatchInsert = milestoneInsert + `
		ON CONFLICT DO NOTHING`
	milestoneSelect = `
		SELECT id, user_id, title, description, milestone_date, is_birthday, created_at, updated_at
		FROM milestones`
)

func milestoneArgs(m *models.Milestone) []any {
	return []any{
		m.ID,
		m.UserID,
		m.Title,
		nullString(m.Description),
		models.FormatDate(m.MilestoneDate),
		m.IsBirthday,
		formatTimestamp(m.CreatedAt),
		formatTimestamp(m.UpdatedAt),
	}
}

func (r *milestoneRepo) Create(ctx context.Context, milestone *models.Milestone) error {
	if _, err := r.db.ExecContext(ctx, milestoneInsert, milestoneArgs(milestone)...); err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	return nil
}

func (r *milestoneRepo) CreateBatch(ctx context.Context, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, milestoneBatchInsert)
	if err != nil {
		return fmt.Errorf("preparing milestone insert: %w", err)
	}
	defer stmt.Close()

	for i := range milestones {
		if _, err := stmt.ExecContext(ctx, milestoneArgs(&milestones[i])...); err != nil {
			return fmt.Errorf("batch inserting milestones: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *milestoneRepo) ListForUser(ctx context.Context, userID string) ([]models.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, milestoneSelect+`
		WHERE user_id = ?
		ORDER BY milestone_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user milestones: %w", err)
	}
	return scanMilestones(rows)
}

func (r *milestoneRepo) ListBirthdays(ctx context.Context, userID string) ([]models.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, milestoneSelect+`
		WHERE user_id = ? AND is_birthday = 1
		ORDER BY milestone_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying birthday milestones: %w", err)
	}
	return scanMilestones(rows)
}

func (r *milestoneRepo) CountForUser(ctx context.Context, userID string, birthdays bool) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM milestones WHERE user_id = ? AND is_birthday = ?`,
		userID, birthdays).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting milestones: %w", err)
	}
	return count, nil
}

func (r *milestoneRepo) Update(ctx context.Context, milestone *models.Milestone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE milestones SET title = ?, description = ?, milestone_date = ?, updated_at = ?
		WHERE id = ?`,
		milestone.Title,
		nullString(milestone.Description),
		models.FormatDate(milestone.MilestoneDate),
		formatTimestamp(milestone.UpdatedAt),
		milestone.ID,
	)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}
	return rowsAffected(result)
}

func (r *milestoneRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting milestone: %w", err)
	}
	return rowsAffected(result)
}

func scanMilestones(rows *sql.Rows) ([]models.Milestone, error) {
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var (
			m           models.Milestone
			description sql.NullString
			d           rowDates
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &description, &d.date, &m.IsBirthday, &d.createdAt, &d.updatedAt); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		m.Description = stringPtr(description)
		var err error
		if m.MilestoneDate, m.CreatedAt, m.UpdatedAt, err = d.parse(); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
