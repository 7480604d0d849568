// Package database manages the Postgres connection pool and schema
// migrations for the service.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/choralworks/medialib/internal/config"
	"github.com/choralworks/medialib/internal/lifecycle"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// System provides access to the database connection and its lifecycle.
type System interface {
	DB() *sql.DB
	Start(lc *lifecycle.Coordinator) error
}

type system struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the database connection pool and verifies connectivity.
func New(cfg *config.DatabaseConfig, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeoutDuration())
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &system{
		db:     db,
		logger: logger.With("system", "database"),
	}, nil
}

func (s *system) DB() *sql.DB {
	return s.db
}

// Start registers migration and close hooks with the coordinator.
func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting database system")

	lc.OnStartup(func() {
		if err := s.migrate(); err != nil {
			s.logger.Error("migration failed", "error", err)
			return
		}
		s.logger.Info("database schema up to date")
	})

	lc.OnShutdown(func(ctx context.Context) error {
		return s.db.Close()
	})

	return nil
}
