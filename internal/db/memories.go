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

// MemoryRepository handles memory database operations.
type MemoryRepository struct {
	pool *pgxpool.Pool
}

const memoryColumns = `id, user_id, title, content, memory_date, created_at, updated_at`

// Create inserts a new memory.
func (r *MemoryRepository) Create(ctx context.Context, memory *models.Memory) error {
	query := `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.Content,
		memory.MemoryDate,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

// ListForUser retrieves all memories for a user, ordered by date.
func (r *MemoryRepository) ListForUser(ctx context.Context, userID string) ([]models.Memory, error) {
	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1
		ORDER BY memory_date ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user memories: %w", err)
	}
	return scanMemories(rows)
}

// ListInRange retrieves memories dated within [start, end].
func (r *MemoryRepository) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Memory, error) {
	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1 AND memory_date BETWEEN $2 AND $3
		ORDER BY memory_date ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying memories in range: %w", err)
	}
	return scanMemories(rows)
}

// Update overwrites the mutable fields of a memory.
func (r *MemoryRepository) Update(ctx context.Context, memory *models.Memory) error {
	query := `
		UPDATE memories
		SET title = $2, content = $3, memory_date = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.Title,
		memory.Content,
		memory.MemoryDate,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a memory by ID.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM memories WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanMemories(rows pgx.Rows) ([]models.Memory, error) {
	defer rows.Close()

	var memories []models.Memory
	for rows.Next() {
		var m models.Memory
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Title,
			&m.Content,
			&m.MemoryDate,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}
