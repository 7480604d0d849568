package assets

import (
	"context"

	"github.com/google/uuid"
)

// MetadataStore is the capability contract the synchronization layer
// requires from the record store. Listings are scoped and ordered by
// descending creation time; pagination is keyset-based.
type MetadataStore interface {
	// ListPage returns up to limit records for the scope, optionally filtered
	// by type, strictly after the cursor boundary when one is given. The
	// returned flag reports whether more records may follow.
	ListPage(ctx context.Context, scope string, typeFilter *Type, after *Cursor, limit int) ([]Record, bool, error)

	// SearchAll runs an unbounded keyword query across the scope's full
	// corpus, bypassing pagination.
	SearchAll(ctx context.Context, scope, keyword string) ([]Record, error)

	// Insert persists a new record; the store assigns id and timestamps.
	Insert(ctx context.Context, cmd CreateCommand) (*Record, error)

	// FindByID returns a single record or ErrNotFound.
	FindByID(ctx context.Context, scope string, id uuid.UUID) (*Record, error)

	// DeleteByID removes a record. Deleting an absent id returns ErrNotFound.
	DeleteByID(ctx context.Context, scope string, id uuid.UUID) error
}
