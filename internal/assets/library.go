package assets

import (
	"context"
	"log/slog"
	"strings"

	"github.com/choralworks/medialib/internal/blobstore"
	"github.com/choralworks/medialib/pkg/pagination"
	"github.com/google/uuid"
)

// Library composes the synchronization layer: the cursor tracker, the view
// cache, the deep search reconciler, and the upload and delete coordinators,
// all over one metadata store and one blob store.
type Library struct {
	store    MetadataStore
	cache    *ViewCache
	tracker  *Tracker
	searcher *Searcher
	uploader *Uploader
	deleter  *Deleter
	logger   *slog.Logger
}

// NewLibrary wires the synchronization layer over the given stores.
// concurrency bounds the upload batch fan-out.
func NewLibrary(store MetadataStore, blobs blobstore.Store, logger *slog.Logger, concurrency int) *Library {
	cache := NewViewCache()
	return &Library{
		store:    store,
		cache:    cache,
		tracker:  NewTracker(store),
		searcher: NewSearcher(store, cache, logger),
		uploader: NewUploader(store, blobs, cache, logger, concurrency),
		deleter:  NewDeleter(store, blobs, cache, logger),
		logger:   logger.With("system", "library"),
	}
}

// FirstPage reloads the view from the newest records of the scope. It
// resets every cursor under the scope, discards deep results, and replaces
// the materialized sequence atomically.
func (l *Library) FirstPage(ctx context.Context, scope string, typeFilter *Type, pageSize int) (pagination.Page[Record], error) {
	l.tracker.Reset(scope)
	l.searcher.Clear(scope)

	records, err := l.tracker.FetchFirstPage(ctx, scope, typeFilter, pageSize)
	if err != nil {
		return pagination.Page[Record]{}, err
	}

	l.cache.ReplaceAll(records)
	return pagination.NewPage(records, l.tracker.HasMore(scope, typeFilter)), nil
}

// NextPage fetches the records after the current boundary and appends them
// to the view.
func (l *Library) NextPage(ctx context.Context, scope string, typeFilter *Type, pageSize int) (pagination.Page[Record], error) {
	records, err := l.tracker.FetchNextPage(ctx, scope, typeFilter, pageSize)
	if err != nil {
		return pagination.Page[Record]{}, err
	}

	l.cache.Append(records)
	return pagination.NewPage(records, l.tracker.HasMore(scope, typeFilter)), nil
}

// FilterLocal projects the materialized view by scope, optional type, and
// case-insensitive name substring. It never issues remote calls.
func (l *Library) FilterLocal(scope string, typeFilter *Type, keyword string) []Record {
	keyword = strings.ToLower(keyword)

	return l.cache.FilterView(func(rec Record) bool {
		if rec.Scope != scope {
			return false
		}
		if typeFilter != nil && rec.Type != *typeFilter {
			return false
		}
		if keyword != "" && !strings.Contains(strings.ToLower(rec.Name), keyword) {
			return false
		}
		return true
	})
}

// DeepSearch queries the scope's full corpus and returns matches not
// already materialized in the view.
func (l *Library) DeepSearch(ctx context.Context, scope, keyword string) ([]Record, error) {
	return l.searcher.Search(ctx, scope, keyword)
}

// DeepResults returns the latest deep result set for the scope.
func (l *Library) DeepResults(scope string) []Record {
	return l.searcher.Current(scope)
}

// ClearSearch discards the scope's deep results without touching pagination.
func (l *Library) ClearSearch(scope string) {
	l.searcher.Clear(scope)
}

// Upload runs a batch through the upload coordinator.
func (l *Library) Upload(ctx context.Context, scope string, files []FileUpload, onProgress BatchProgressFunc) BatchResult {
	return l.uploader.UploadBatch(ctx, scope, files, onProgress)
}

// Delete resolves the record and runs it through the delete coordinator.
func (l *Library) Delete(ctx context.Context, scope string, id uuid.UUID) (DeleteOutcome, error) {
	rec, err := l.store.FindByID(ctx, scope, id)
	if err != nil {
		return "", err
	}
	return l.deleter.Delete(ctx, *rec)
}

// Find returns a single record from the metadata store.
func (l *Library) Find(ctx context.Context, scope string, id uuid.UUID) (*Record, error) {
	return l.store.FindByID(ctx, scope, id)
}

// View exposes the cache for read-only inspection by handlers and tests.
func (l *Library) View() *ViewCache {
	return l.cache
}
