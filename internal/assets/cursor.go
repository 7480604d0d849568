package assets

import (
	"context"
	"fmt"
	"sync"
)

// trackerKey identifies one independent pagination sequence. The remote
// ordering is type-scoped, so a scope paired with different type filters
// holds separate cursors.
type trackerKey struct {
	scope      string
	typeFilter Type
}

type trackerState struct {
	boundary *Cursor
	hasMore  bool
}

// Tracker records how far into the remote ordered list each (scope, type
// filter) sequence has been consumed. It never advances its boundary on a
// failed fetch.
//
// Page fetches for the same key must be serialized by the caller: two
// concurrent next-page fetches can read the same boundary and duplicate a
// page.
type Tracker struct {
	store MetadataStore

	mu     sync.Mutex
	states map[trackerKey]*trackerState
}

// NewTracker creates a Tracker over the given metadata store.
func NewTracker(store MetadataStore) *Tracker {
	return &Tracker{
		store:  store,
		states: make(map[trackerKey]*trackerState),
	}
}

// FetchFirstPage requests the newest records for the scope and establishes
// the cursor boundary. On store failure the prior boundary is left untouched.
func (t *Tracker) FetchFirstPage(ctx context.Context, scope string, typeFilter *Type, pageSize int) ([]Record, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size %d", ErrInvalidArgument, pageSize)
	}

	records, hasMore, err := t.store.ListPage(ctx, scope, typeFilter, nil, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	t.mu.Lock()
	t.states[key(scope, typeFilter)] = &trackerState{
		boundary: boundaryOf(records),
		hasMore:  hasMore,
	}
	t.mu.Unlock()

	return records, nil
}

// FetchNextPage requests records strictly after the stored boundary.
// Calling it without a prior successful FetchFirstPage for the same scope
// and filter is a programming error.
func (t *Tracker) FetchNextPage(ctx context.Context, scope string, typeFilter *Type, pageSize int) ([]Record, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size %d", ErrInvalidArgument, pageSize)
	}

	k := key(scope, typeFilter)

	t.mu.Lock()
	state, ok := t.states[k]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: next page requested before first page for scope %q", ErrInvalidState, scope)
	}
	boundary := state.boundary
	t.mu.Unlock()

	if boundary == nil {
		// first page was empty; the sequence is exhausted
		return nil, nil
	}

	records, hasMore, err := t.store.ListPage(ctx, scope, typeFilter, boundary, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	t.mu.Lock()
	if current, ok := t.states[k]; ok {
		if b := boundaryOf(records); b != nil {
			current.boundary = b
		}
		current.hasMore = hasMore
	}
	t.mu.Unlock()

	return records, nil
}

// HasMore reports whether the sequence for the scope and filter has records
// beyond the current boundary. It is false for untracked sequences.
func (t *Tracker) HasMore(scope string, typeFilter *Type) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[key(scope, typeFilter)]
	return ok && state.hasMore
}

// Reset clears every cursor under the scope. Required whenever the active
// type filter changes, since cursors from different filters must never mix.
func (t *Tracker) Reset(scope string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k := range t.states {
		if k.scope == scope {
			delete(t.states, k)
		}
	}
}

func key(scope string, typeFilter *Type) trackerKey {
	k := trackerKey{scope: scope}
	if typeFilter != nil {
		k.typeFilter = *typeFilter
	}
	return k
}

func boundaryOf(records []Record) *Cursor {
	if len(records) == 0 {
		return nil
	}
	c := CursorOf(records[len(records)-1])
	return &c
}
