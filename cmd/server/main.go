package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/choralworks/medialib/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown(cfg.ShutdownTimeoutDuration())
}
