package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified database columns
// for a single table, preserving declaration order for SELECT lists.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields []string
	byName map[string]string
}

// NewProjectionMap creates a projection for the given schema-qualified table and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		byName: make(map[string]string),
	}
}

// Project registers a column under a logical field name and returns the map for chaining.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields = append(p.fields, field)
	p.byName[field] = fmt.Sprintf("%s.%s", p.alias, column)
	return p
}

// Table returns the aliased table reference for FROM clauses.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a logical field name.
// Unknown fields panic: a bad field name is a programming error, not input.
func (p *ProjectionMap) Column(field string) string {
	col, ok := p.byName[field]
	if !ok {
		panic(fmt.Sprintf("query: unknown projection field %q", field))
	}
	return col
}

// Columns returns the comma-separated SELECT list in declaration order.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = p.byName[f]
	}
	return strings.Join(cols, ", ")
}
