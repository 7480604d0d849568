// Package lifecycle coordinates subsystem startup and graceful shutdown.
// Subsystems register hooks during construction; the coordinator runs
// startup hooks concurrently and shutdown hooks in reverse registration order.
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Coordinator tracks startup and shutdown hooks for the service's subsystems.
type Coordinator struct {
	mu       sync.Mutex
	startup  []func()
	shutdown []func(ctx context.Context) error
	wg       sync.WaitGroup
	started  bool
}

// New creates an empty lifecycle coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// OnStartup registers a hook to run when Start is called. Hooks registered
// after Start run immediately.
func (c *Coordinator) OnStartup(fn func()) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		c.runStartup(fn)
		return
	}
	c.startup = append(c.startup, fn)
	c.mu.Unlock()
}

// OnShutdown registers a hook to run during Shutdown. Hooks run in reverse
// registration order so dependents stop before their dependencies.
func (c *Coordinator) OnShutdown(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, fn)
}

// Start launches all registered startup hooks concurrently.
func (c *Coordinator) Start() {
	c.mu.Lock()
	hooks := c.startup
	c.startup = nil
	c.started = true
	c.mu.Unlock()

	for _, fn := range hooks {
		c.runStartup(fn)
	}
}

// WaitForStartup blocks until every startup hook has completed.
func (c *Coordinator) WaitForStartup() {
	c.wg.Wait()
}

// Shutdown runs all shutdown hooks in reverse order within the timeout.
// Hook errors are collected; all hooks run even if earlier ones fail.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	hooks := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Coordinator) runStartup(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}
