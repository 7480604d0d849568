package pagination

import (
	"net/url"
	"strconv"
)

// PageSizeFromQuery parses the page_size query parameter and clamps it
// against the config. Missing or invalid values fall back to the default.
func PageSizeFromQuery(values url.Values, cfg Config) int {
	size, _ := strconv.Atoi(values.Get("page_size"))
	return Clamp(size, cfg)
}

// Clamp normalizes a requested page size to a valid value within the config bounds.
func Clamp(size int, cfg Config) int {
	if size < 1 {
		return cfg.DefaultPageSize
	}
	if size > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return size
}

// Page holds one fetched page of data along with the continuation flag
// reported by the store.
type Page[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

// NewPage creates a Page, normalizing nil data to an empty slice so JSON
// responses always carry an array.
func NewPage[T any](data []T, hasMore bool) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, HasMore: hasMore}
}
