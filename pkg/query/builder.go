// Package query provides a fluent SQL builder with automatic parameter
// numbering, backed by projection maps that keep logical field names
// decoupled from physical columns.
package query

import (
	"fmt"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	orderBy    []string
	descending bool
}

// NewBuilder creates a Builder for the given projection.
func NewBuilder(projection *ProjectionMap) *Builder {
	return &Builder{
		projection: projection,
		conditions: make([]condition, 0),
	}
}

// OrderByDesc sets a descending sort over the given fields, applied in order.
func (b *Builder) OrderByDesc(fields ...string) *Builder {
	b.orderBy = fields
	b.descending = true
	return b
}

// OrderByAsc sets an ascending sort over the given fields, applied in order.
func (b *Builder) OrderByAsc(fields ...string) *Builder {
	b.orderBy = fields
	b.descending = false
	return b
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", col),
		args:   []any{value},
	})
	return b
}

// WhereContains adds a case-insensitive ILIKE condition. Nil or empty values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s ILIKE $%%d", col),
		args:   []any{"%" + *value + "%"},
	})
	return b
}

// WhereSearch adds an OR condition across multiple fields with ILIKE. Empty search is ignored.
func (b *Builder) WhereSearch(search string, fields ...string) *Builder {
	if search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	pattern := "%" + search + "%"

	for i, field := range fields {
		col := b.projection.Column(field)
		clauses[i] = fmt.Sprintf("%s ILIKE $%%d", col)
		args[i] = pattern
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(clauses, " OR ") + ")",
		args:   args,
	})
	return b
}

// WhereBefore adds a row-value comparison `(a, b, ...) < (x, y, ...)` used for
// keyset pagination boundaries. Field and value counts must match.
func (b *Builder) WhereBefore(fields []string, values ...any) *Builder {
	if len(fields) == 0 || len(fields) != len(values) {
		return b
	}

	cols := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, field := range fields {
		cols[i] = b.projection.Column(field)
		placeholders[i] = "$%d"
	}

	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("(%s) < (%s)", strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		args:   values,
	})
	return b
}

// BuildLimited returns a SELECT query with ordering and a row limit.
func (b *Builder) BuildLimited(limit int) (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
		limit,
	)
	return sql, args
}

// BuildAll returns an unbounded SELECT query with the current conditions and ordering.
func (b *Builder) BuildAll() (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
	)
	return sql, args
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where)
	return sql, args
}

// BuildSingle returns a SELECT query for a single record by the given field.
func (b *Builder) BuildSingle(field string, value any) (string, []any) {
	b.conditions = append([]condition{{
		clause: fmt.Sprintf("%s = $%%d", b.projection.Column(field)),
		args:   []any{value},
	}}, b.conditions...)

	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
	)
	return sql, args
}

func (b *Builder) buildOrderBy() string {
	if len(b.orderBy) == 0 {
		return ""
	}

	dir := "ASC"
	if b.descending {
		dir = "DESC"
	}

	cols := make([]string, len(b.orderBy))
	for i, field := range b.orderBy {
		cols[i] = fmt.Sprintf("%s %s", b.projection.Column(field), dir)
	}

	return " ORDER BY " + strings.Join(cols, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := 1

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
