// Package state persists named recordsets in a local SQLite database.
// Each recordset is stored as one row: a JSON document holding the schema
// and positional record values, plus bookkeeping columns for listing
// without decoding.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leaprec/internal/loader"
)

// SetInfo summarizes a stored recordset without decoding its document.
type SetInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Attrs     int       `json:"attrs"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the persistence interface for recordsets.
type Store interface {
	// SaveSet inserts or updates a recordset by name and returns its ID.
	SaveSet(ctx context.Context, set *loader.Set) (string, error)

	// GetSet retrieves a recordset by name or ID.
	GetSet(ctx context.Context, nameOrID string) (*loader.Set, error)

	// ListSets returns summaries of all stored recordsets, most recently
	// updated first.
	ListSets(ctx context.Context) ([]SetInfo, error)

	// DeleteSet removes a recordset by name or ID.
	DeleteSet(ctx context.Context, nameOrID string) error

	// Close releases the underlying database.
	Close() error
}
