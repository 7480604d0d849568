package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/choralworks/medialib/internal/blobstore"
)

// DeleteOutcome distinguishes a fully reclaimed delete from one that left
// the binary behind.
type DeleteOutcome string

// Delete outcome constants. Orphaned blob is a warning, not an error: the
// record is gone and the asset has disappeared from every view, only the
// storage was not reclaimed.
const (
	DeleteCompleted    DeleteOutcome = "completed"
	DeleteOrphanedBlob DeleteOutcome = "orphaned_blob"
)

// Deleter removes an asset record and its backing blob.
//
// The metadata record is deleted first: it is the source of truth for what
// users see, so a blob store failure can never block a confirmed deletion.
// The trade-off is tolerated in the other direction, an unreferenced blob
// with no record.
type Deleter struct {
	store  MetadataStore
	blobs  blobstore.Store
	cache  *ViewCache
	logger *slog.Logger
}

// NewDeleter creates a Deleter over the given stores and view cache.
func NewDeleter(store MetadataStore, blobs blobstore.Store, cache *ViewCache, logger *slog.Logger) *Deleter {
	return &Deleter{
		store:  store,
		blobs:  blobs,
		cache:  cache,
		logger: logger.With("system", "delete"),
	}
}

// Delete removes rec in strict order: metadata record first, then the blob.
// If the metadata delete fails, both stores are left untouched and no blob
// delete is attempted. If the blob delete fails after metadata success, the
// outcome is DeleteOrphanedBlob and the id is still removed from the view.
func (d *Deleter) Delete(ctx context.Context, rec Record) (DeleteOutcome, error) {
	if err := d.store.DeleteByID(ctx, rec.Scope, rec.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	outcome := DeleteCompleted
	if rec.BlobRef != "" {
		if err := d.blobs.DeleteByRef(ctx, rec.BlobRef, string(rec.Type)); err != nil {
			d.logger.Warn("blob cleanup failed, record already removed",
				"id", rec.ID,
				"blob_ref", rec.BlobRef,
				"error", err,
			)
			outcome = DeleteOrphanedBlob
		}
	}

	d.cache.Remove(rec.ID)

	d.logger.Info("asset deleted", "id", rec.ID, "scope", rec.Scope, "outcome", outcome)
	return outcome, nil
}
