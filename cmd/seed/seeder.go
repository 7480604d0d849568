// Package main provides the seed command for populating the database with
// sample or test data. Seeders run individually or together, each batch
// inside a single transaction.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Seeder populates one domain's data within a transaction.
type Seeder interface {
	// Name returns the unique identifier for this seeder.
	Name() string

	// Description returns a human-readable summary of what gets seeded.
	Description() string

	// Seed executes the seeding logic within tx. Seeders must be idempotent
	// so re-running updates rather than duplicates.
	Seed(ctx context.Context, tx *sql.Tx) error
}

var registry = map[string]Seeder{}

// registerSeeder adds a seeder to the registry. Seeders self-register via
// init functions.
func registerSeeder(s Seeder) {
	registry[s.Name()] = s
}

// getSeeder retrieves a seeder by name from the registry.
func getSeeder(name string) (Seeder, bool) {
	s, ok := registry[name]
	return s, ok
}

// listSeeders returns all registered seeders sorted by name.
func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// runSeeder executes a single seeder by name within its own transaction.
func runSeeder(ctx context.Context, db *sql.DB, name string) error {
	seeder, ok := getSeeder(name)
	if !ok {
		return fmt.Errorf("seeder not found: %s", name)
	}
	return inTx(ctx, db, func(tx *sql.Tx) error {
		if err := seeder.Seed(ctx, tx); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		return nil
	})
}

// runAllSeeders executes every registered seeder within one transaction.
// Any failure rolls the whole batch back.
func runAllSeeders(ctx context.Context, db *sql.DB) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, seeder := range listSeeders() {
			if err := seeder.Seed(ctx, tx); err != nil {
				return fmt.Errorf("seed %s: %w", seeder.Name(), err)
			}
		}
		return nil
	})
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
