package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaprec/internal/loader"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store. Call Open before using it.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens (or creates) the SQLite database at path. Use ":memory:"
// for an ephemeral store. Migrations are not run here; call Migrate.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a unique identifier for a recordset row.
func generateID() string {
	return uuid.New().String()
}

// SaveSet inserts a new recordset or updates the existing one with the
// same name, returning the row ID either way.
func (s *SQLiteStore) SaveSet(ctx context.Context, set *loader.Set) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	if set == nil || set.Schema == nil {
		return "", fmt.Errorf("cannot save an empty recordset")
	}

	doc, err := encodeSet(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode recordset: %w", err)
	}

	now := time.Now().UTC()

	var id string
	err = s.db.QueryRowContext(ctx, `SELECT id FROM recordsets WHERE name = ?`, set.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = generateID()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO recordsets (id, name, doc, attr_count, record_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, set.Name, string(doc), set.Schema.Len(), len(set.Records), now, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert recordset: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("failed to check existing recordset: %w", err)
	default:
		_, err = s.db.ExecContext(ctx, `
			UPDATE recordsets
			SET doc = ?, attr_count = ?, record_count = ?, updated_at = ?
			WHERE id = ?`,
			string(doc), set.Schema.Len(), len(set.Records), now, id)
		if err != nil {
			return "", fmt.Errorf("failed to update recordset: %w", err)
		}
	}

	return id, nil
}

// GetSet retrieves a recordset by name or ID.
func (s *SQLiteStore) GetSet(ctx context.Context, nameOrID string) (*loader.Set, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM recordsets WHERE name = ? OR id = ?`,
		nameOrID, nameOrID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recordset not found: %s", nameOrID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recordset: %w", err)
	}

	set, err := decodeSet([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to decode recordset %s: %w", nameOrID, err)
	}
	return set, nil
}

// ListSets returns summaries of all stored recordsets, most recently
// updated first.
func (s *SQLiteStore) ListSets(ctx context.Context) ([]SetInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, attr_count, record_count, created_at, updated_at
		FROM recordsets
		ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordsets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []SetInfo
	for rows.Next() {
		var info SetInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Attrs, &info.Records,
			&info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recordset row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recordsets: %w", err)
	}

	return infos, nil
}

// DeleteSet removes a recordset by name or ID.
func (s *SQLiteStore) DeleteSet(ctx context.Context, nameOrID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recordsets WHERE name = ? OR id = ?`, nameOrID, nameOrID)
	if err != nil {
		return fmt.Errorf("failed to delete recordset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recordset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recordset not found: %s", nameOrID)
	}
	return nil
}
