// Package sqlite implements the journal repositories on an embedded SQLite
// database. It backs dev mode and repository-level tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
)

//go:embed schema.sql
var schema string

const timestampFormat = time.RFC3339Nano

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is a SQLite-backed journal repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A second connection to :memory: would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Profiles returns a ProfileRepository.
func (s *Store) Profiles() store.ProfileRepository {
	return &profileRepo{db: s.db}
}

// Phases returns a PhaseRepository.
func (s *Store) Phases() store.PhaseRepository {
	return &phaseRepo{db: s.db}
}

// Memories returns a MemoryRepository.
func (s *Store) Memories() store.MemoryRepository {
	return &memoryRepo{db: s.db}
}

// Milestones returns a MilestoneRepository.
func (s *Store) Milestones() store.MilestoneRepository {
	return &milestoneRepo{db: s.db}
}

var _ store.Repository = (*Store)(nil)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampFormat, s)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// rowDates holds the text columns shared by every entity.
type rowDates struct {
	date      string
	createdAt string
	updatedAt string
}

func (d rowDates) parse() (date, createdAt, updatedAt time.Time, err error) {
	if date, err = models.ParseDate(d.date); err != nil {
		return date, createdAt, updatedAt, fmt.Errorf("parsing date %q: %w", d.date, err)
	}
	if createdAt, err = parseTimestamp(d.createdAt); err != nil {
		return date, createdAt, updatedAt, fmt.Errorf("parsing created_at: %w", err)
	}
	if updatedAt, err = parseTimestamp(d.updatedAt); err != nil {
		return date, createdAt, updatedAt, fmt.Errorf("parsing updated_at: %w", err)
	}
	return date, createdAt, updatedAt, nil
}

func rowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
