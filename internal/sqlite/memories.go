package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/justestif/historia/internal/models"
)

type memoryRepo struct {
	db *sql.DB
}

const memorySelect = `
	SELECT id, user_id, title, content, memory_date, created_at, updated_at
	FROM memories`

func (r *memoryRepo) Create(ctx context.Context, memory *models.Memory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, title, content, memory_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		memory.ID,
		memory.UserID,
		memory.Title,
		nullString(memory.Content),
		models.FormatDate(memory.MemoryDate),
		formatTimestamp(memory.CreatedAt),
		formatTimestamp(memory.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

func (r *memoryRepo) ListForUser(ctx context.Context, userID string) ([]models.Memory, error) {
	rows, err := r.db.QueryContext(ctx, memorySelect+`
		WHERE user_id = ?
		ORDER BY memory_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user memories: %w", err)
	}
	return scanMemories(rows)
}

// ListInRange relies on YYYY-MM-DD strings sorting chronologically.
func (r *memoryRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Memory, error) {
	rows, err := r.db.QueryContext(ctx, memorySelect+`
		WHERE user_id = ? AND memory_date BETWEEN ? AND ?
		ORDER BY memory_date ASC`,
		userID, models.FormatDate(start), models.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("querying memories in range: %w", err)
	}
	return scanMemories(rows)
}

func (r *memoryRepo) Update(ctx context.Context, memory *models.Memory) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memories SET title = ?, content = ?, memory_date = ?, updated_at = ?
		WHERE id = ?`,
		memory.Title,
		nullString(memory.Content),
		models.FormatDate(memory.MemoryDate),
		formatTimestamp(memory.UpdatedAt),
		memory.ID,
	)
	if err != nil {
		return fmt.Errorf("updating memory: %w", err)
	}
	return rowsAffected(result)
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting memory: %w", err)
	}
	return rowsAffected(result)
}

func scanMemories(rows *sql.Rows) ([]models.Memory, error) {
	defer rows.Close()

	var memories []models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func scanMemory(row scanner) (models.Memory, error) {
	var (
		m       models.Memory
		content sql.NullString
		d       rowDates
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &content, &d.date, &d.createdAt, &d.updatedAt); err != nil {
		return m, fmt.Errorf("scanning memory: %w", err)
	}
	m.Content = stringPtr(content)
	var err error
	m.MemoryDate, m.CreatedAt, m.UpdatedAt, err = d.parse()
	return m, err
}
