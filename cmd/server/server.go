package main

import (
	"context"
	"net/http"
	"time"

	"github.com/choralworks/medialib/internal/config"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	rt   *Runtime
	http *http.Server
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      buildRouter(rt, cfg),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	rt.Logger.Info("server initialized", "addr", srv.Addr)

	return &Server{rt: rt, http: srv}, nil
}

// Start begins all subsystems and the HTTP listener.
func (s *Server) Start() error {
	if err := s.rt.Start(); err != nil {
		return err
	}

	s.rt.Lifecycle.OnShutdown(func(ctx context.Context) error {
		return s.http.Shutdown(ctx)
	})

	go func() {
		s.rt.Logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.rt.Logger.Error("http server failed", "error", err)
		}
	}()

	go func() {
		s.rt.Lifecycle.WaitForStartup()
		s.rt.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.rt.Logger.Info("initiating shutdown")
	return s.rt.Lifecycle.Shutdown(timeout)
}
