// Package loop runs the game's long-lived services: the fixed-rate frame
// loop and anything started beside it, with signal-driven shutdown.
package loop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultDrainTimeout bounds how long Run waits for services to return after Stop.
const DefaultDrainTimeout = 5 * time.Second

// ErrDrainTimeout is returned when a service's Start has not returned within
// the drain timeout after Stop.
var ErrDrainTimeout = errors.New("services still running after stop")

// Service is a component whose Start blocks until it is stopped, finishes or fails.
type Service interface {
	Start() error
	// Stop asks Start to return. It must not block on Start.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

type entry struct {
	name string
	svc  Service
}

type exit struct {
	name string
	err  error
}

// Lifecycle starts services together and stops them in reverse order of Add.
type Lifecycle struct {
	mu      sync.Mutex
	entries []entry
	drain   time.Duration
	logger  *zap.Logger
}

// NewLifecycle creates a Lifecycle with DefaultDrainTimeout.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{drain: DefaultDrainTimeout, logger: logger}
}

// SetDrainTimeout changes how long Run waits for services after Stop.
func (l *Lifecycle) SetDrainTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drain = d
}

// Add registers svc under name.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every service and blocks until SIGINT or SIGTERM, ctx is done,
// or any service returns. It then stops the services and waits for each Start
// to return.
//
// Postcondition: No Start call is still running unless ErrDrainTimeout is
// returned. Otherwise the error is that of the service whose failure caused
// shutdown, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	entries := slices.Clone(l.entries)
	drain := l.drain
	l.mu.Unlock()

	began := time.Now()
	exits := make(chan exit, len(entries))
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("service starting", zap.String("service", e.name))
			exits <- exit{name: e.name, err: e.svc.Start()}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var cause error
	select {
	case sig := <-sigs:
		l.logger.Info("signal received", zap.Stringer("signal", sig))
	case <-ctx.Done():
		l.logger.Info("context done", zap.Error(ctx.Err()))
	case x := <-exits:
		if x.err != nil {
			cause = fmt.Errorf("service %s: %w", x.name, x.err)
			l.logger.Error("service failed", zap.String("service", x.name), zap.Error(x.err))
		} else {
			l.logger.Info("service finished", zap.String("service", x.name))
		}
	}

	for i := len(entries) - 1; i >= 0; i-- {
		l.logger.Debug("stopping service", zap.String("service", entries[i].name))
		entries[i].svc.Stop()
	}
	if err := waitGroup(&wg, drain); err != nil {
		l.logger.Error("services did not drain", zap.Duration("timeout", drain))
		return err
	}
	close(exits)
	for x := range exits {
		if x.err != nil {
			l.logger.Warn("service failed during shutdown", zap.String("service", x.name), zap.Error(x.err))
		}
	}

	l.logger.Info("services stopped", zap.Duration("uptime", time.Since(began)))
	return cause
}

func waitGroup(wg *sync.WaitGroup, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("after %s: %w", timeout, ErrDrainTimeout)
	}
}
