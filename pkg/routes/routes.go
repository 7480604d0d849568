// Package routes provides declarative route registration for net/http
// method-pattern multiplexers.
package routes

import (
	"fmt"
	"net/http"
	"strings"
)

// Route represents a single HTTP endpoint.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Mount registers the group's routes (and those of its children) on the mux,
// prefixing patterns with base and the group prefix.
func Mount(mux *http.ServeMux, base string, group Group) {
	prefix := joinPath(base, group.Prefix)

	for _, route := range group.Routes {
		pattern := joinPath(prefix, route.Pattern)
		mux.HandleFunc(fmt.Sprintf("%s %s", route.Method, pattern), route.Handler)
	}

	for _, child := range group.Children {
		Mount(mux, prefix, child)
	}
}

func joinPath(base, pattern string) string {
	base = strings.TrimSuffix(base, "/")
	if pattern == "" {
		return base
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return base + pattern
}
