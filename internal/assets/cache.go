package assets

import (
	"sync"

	"github.com/google/uuid"
)

// ViewCache is the in-memory ordered sequence of asset records materialized
// for display. It preserves the order in which batches were appended and
// never holds two records with the same id.
//
// All operations are synchronous and never perform I/O; each holds the
// cache mutex for its full duration, so readers never observe a partially
// applied mutation.
type ViewCache struct {
	mu      sync.RWMutex
	records []Record
	index   map[uuid.UUID]struct{}
}

// NewViewCache creates an empty view cache.
func NewViewCache() *ViewCache {
	return &ViewCache{
		index: make(map[uuid.UUID]struct{}),
	}
}

// Append adds records to the tail, skipping any whose id is already present.
// It returns the records actually appended, in their input order.
func (c *ViewCache) Append(records []Record) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []Record
	for _, rec := range records {
		if _, ok := c.index[rec.ID]; ok {
			continue
		}
		c.records = append(c.records, rec)
		c.index[rec.ID] = struct{}{}
		added = append(added, rec)
	}
	return added
}

// ReplaceAll atomically swaps the entire sequence for records, dropping
// duplicates within the input while preserving its order.
func (c *ViewCache) ReplaceAll(records []Record) {
	next := make([]Record, 0, len(records))
	index := make(map[uuid.UUID]struct{}, len(records))

	for _, rec := range records {
		if _, ok := index[rec.ID]; ok {
			continue
		}
		next = append(next, rec)
		index[rec.ID] = struct{}{}
	}

	c.mu.Lock()
	c.records = next
	c.index = index
	c.mu.Unlock()
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op: a delete may race a concurrent refresh that already dropped it.
func (c *ViewCache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[id]; !ok {
		return
	}

	delete(c.index, id)
	for i, rec := range c.records {
		if rec.ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
}

// Contains reports whether a record with the given id is materialized.
func (c *ViewCache) Contains(id uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.index[id]
	return ok
}

// FilterView returns the records matching pred, in cache order. It is a
// pure projection and never issues remote calls.
func (c *ViewCache) FilterView(pred func(Record) bool) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []Record
	for _, rec := range c.records {
		if pred(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Records returns a copy of the full materialized sequence.
func (c *ViewCache) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of materialized records.
func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}
