package main

import (
	"fmt"
	"log/slog"

	"github.com/choralworks/medialib/internal/blobstore"
	"github.com/choralworks/medialib/internal/config"
	"github.com/choralworks/medialib/internal/database"
	"github.com/choralworks/medialib/internal/lifecycle"
	"github.com/choralworks/medialib/pkg/logging"
)

// Runtime holds the shared infrastructure every module builds on.
type Runtime struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Blobs     blobstore.Store
}

// NewRuntime initializes the infrastructure subsystems from configuration.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	logger := logging.New(&cfg.Logging)

	dbSys, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	blobs, err := blobstore.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("blob store init failed: %w", err)
	}

	return &Runtime{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  dbSys,
		Blobs:     blobs,
	}, nil
}

// Start registers every subsystem with the lifecycle coordinator and begins
// startup.
func (r *Runtime) Start() error {
	if err := r.Database.Start(r.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := r.Blobs.Start(r.Lifecycle); err != nil {
		return fmt.Errorf("blob store start failed: %w", err)
	}

	r.Lifecycle.Start()
	return nil
}
