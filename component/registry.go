package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/forohub/logger"
)

const (
	// StopTimeout bounds how long a single component may take to stop.
	StopTimeout = 10 * time.Second
	// HealthTimeout bounds a single Health call.
	HealthTimeout = 2 * time.Second
)

// Registry starts components in registration order and stops them in
// reverse. Register dependencies first.
type Registry struct {
	mu      sync.Mutex
	order   []Component
	running map[string]bool
	log     *logger.Logger
}

// NewRegistry creates a registry. A nil log discards output.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{running: make(map[string]bool), log: log.WithComponent("registry")}
}

func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.running[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	r.order = append(r.order, c)
	r.running[name] = false
	return nil
}

// StartAll starts every component that is not running yet, so it may be
// called again after registering more. When one fails, everything the
// registry has running is stopped before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.order {
		name := c.Name()
		if r.running[name] {
			continue
		}
		begin := time.Now()
		if err := c.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			return errors.Join(fmt.Errorf("start %s: %w", name, err), r.stopRunning(ctx))
		}
		r.running[name] = true
		r.log.Info("component started", logger.Fields(
			logger.FieldComponent, name,
			logger.FieldDuration, time.Since(begin).Milliseconds(),
		))
	}
	return nil
}

// StopAll stops running components in reverse registration order. Every
// component gets its Stop call even when an earlier one fails.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopRunning(ctx)
}

func (r *Registry) stopRunning(ctx context.Context) error {
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.order[i]
		name := c.Name()
		if !r.running[name] {
			continue
		}
		if err := stopOne(ctx, c); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
		} else {
			r.log.Info("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		r.running[name] = false
	}
	return errors.Join(errs...)
}

func stopOne(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, StopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// HealthAll checks every registered component concurrently, each under
// HealthTimeout, and returns results in registration order. A check that
// does not return in time is reported unhealthy.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	comps := append([]Component(nil), r.order...)
	r.mu.Unlock()

	results := make([]Health, len(comps))
	var wg sync.WaitGroup
	for i, c := range comps {
		wg.Go(func() { results[i] = checkOne(ctx, c) })
	}
	wg.Wait()
	return results
}

func checkOne(ctx context.Context, c Component) Health {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	done := make(chan Health, 1)
	go func() { done <- c.Health(ctx) }()
	select {
	case h := <-done:
		return h
	case <-ctx.Done():
		return Health{Name: c.Name(), Status: StatusUnhealthy, Message: "health check timed out"}
	}
}
