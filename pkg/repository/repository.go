// Package repository provides generic database/sql helpers shared by
// repository implementations: row scanning, transaction wrapping, and
// driver error mapping.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Scanner abstracts sql.Row and sql.Rows for shared scan functions.
type Scanner interface {
	Scan(dest ...any) error
}

// Querier abstracts *sql.DB and *sql.Tx so queries can run inside or
// outside a transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryOne executes a query expected to return exactly one row and scans it with scan.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan func(Scanner) (T, error)) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany executes a query and scans every returned row with scan.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan func(Scanner) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	return results, rows.Err()
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	result, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}

	return result, nil
}

// ExecExpectOne executes a statement and returns sql.ErrNoRows if no rows
// were affected.
func ExecExpectOne(ctx context.Context, q Querier, query string, args ...any) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// MapError translates driver-level errors into the caller's domain errors.
// sql.ErrNoRows maps to notFound and unique violations map to duplicate;
// anything else passes through unchanged.
func MapError(err, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicate
	}

	return err
}
