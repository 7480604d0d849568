package assets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// MinKeywordLength is the shortest keyword accepted for a deep search.
// Shorter terms would trigger pathologically broad remote scans.
const MinKeywordLength = 2

// ErrSuperseded reports that a newer deep search was issued for the same
// scope while this one was in flight; its result has been discarded.
// Callers drop it silently, it is not a user-facing failure.
var ErrSuperseded = fmt.Errorf("deep search superseded")

// Searcher runs full-corpus keyword queries and reconciles the results
// against the materialized view. Matches already visible through pagination
// are suppressed; only new records surface as deep results.
//
// Deep results never enter the paginated sequence. They are held as a
// separate labelled set per scope so clearing the search discards them
// without disturbing pagination state.
type Searcher struct {
	store  MetadataStore
	cache  *ViewCache
	logger *slog.Logger

	mu         sync.Mutex
	generation map[string]uint64
	results    map[string][]Record
}

// NewSearcher creates a Searcher over the given store and view cache.
func NewSearcher(store MetadataStore, cache *ViewCache, logger *slog.Logger) *Searcher {
	return &Searcher{
		store:      store,
		cache:      cache,
		logger:     logger.With("system", "deep-search"),
		generation: make(map[string]uint64),
		results:    make(map[string][]Record),
	}
}

// Search queries the scope's entire corpus for keyword and returns the
// matches not already materialized in the view. An empty result set means
// every match was already visible, which is a valid outcome, not an error.
//
// Issuing a new search for a scope supersedes any in-flight one: the stale
// result is discarded when it arrives and the caller receives ErrSuperseded.
func (s *Searcher) Search(ctx context.Context, scope, keyword string) ([]Record, error) {
	if utf8.RuneCountInString(keyword) < MinKeywordLength {
		return nil, fmt.Errorf("%w: keyword must be at least %d characters", ErrInvalidArgument, MinKeywordLength)
	}

	s.mu.Lock()
	s.generation[scope]++
	gen := s.generation[scope]
	s.mu.Unlock()

	records, err := s.store.SearchAll(ctx, scope, keyword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	fresh := make([]Record, 0, len(records))
	for _, rec := range records {
		if s.cache.Contains(rec.ID) {
			continue
		}
		fresh = append(fresh, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation[scope] != gen {
		return nil, ErrSuperseded
	}
	s.results[scope] = fresh

	s.logger.Info("deep search completed",
		"scope", scope,
		"keyword", keyword,
		"matched", len(records),
		"new", len(fresh),
	)
	return fresh, nil
}

// Current returns the latest deep result set for the scope.
func (s *Searcher) Current(scope string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.results[scope]))
	copy(out, s.results[scope])
	return out
}

// Clear discards the scope's deep results and invalidates any in-flight
// search. Pagination state is untouched.
func (s *Searcher) Clear(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation[scope]++
	delete(s.results, scope)
}
