// Package lifecycle provides a small embeddable readiness/start/stop helper
// for the long-running components of ldpcore; the websocket event bus
// embeds it.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a ServiceBase embedder.
type State int32

const (
	StateUninitialized State = iota
	StateStarting
	StateReady
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ServiceBase tracks start/stop timestamps and a readiness state for
// components that run on their own goroutine (sweepers, bus broadcasters).
type ServiceBase struct {
	name      string
	state     atomic.Int32
	startedAt atomic.Value
	stoppedAt atomic.Value

	mu        sync.RWMutex
	lastError error
}

// NewServiceBase creates a ServiceBase for a component with the given name.
func NewServiceBase(name string) *ServiceBase {
	return &ServiceBase{name: name}
}

func (b *ServiceBase) Name() string { return b.name }

func (b *ServiceBase) State() State { return State(b.state.Load()) }

// MarkStarted records the service transitioning to ready.
func (b *ServiceBase) MarkStarted() {
	b.startedAt.Store(time.Now())
	b.state.Store(int32(StateReady))
}

// MarkStopped records the service transitioning to stopped.
func (b *ServiceBase) MarkStopped() {
	b.stoppedAt.Store(time.Now())
	b.state.Store(int32(StateStopped))
}

// MarkFailed records a terminal failure.
func (b *ServiceBase) MarkFailed(err error) {
	b.mu.Lock()
	b.lastError = err
	b.mu.Unlock()
	b.state.Store(int32(StateFailed))
}

// LastError returns the last recorded failure, if any.
func (b *ServiceBase) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// Uptime returns how long the service has been running, 0 if never started.
func (b *ServiceBase) Uptime() time.Duration {
	v := b.startedAt.Load()
	if v == nil {
		return 0
	}
	started := v.(time.Time)
	if stopped := b.stoppedAt.Load(); stopped != nil {
		return stopped.(time.Time).Sub(started)
	}
	return time.Since(started)
}

// Ready reports whether the service is in the ready state, with a
// descriptive error otherwise.
func (b *ServiceBase) Ready(ctx context.Context) error {
	_ = ctx
	if b.State() == StateReady {
		return nil
	}
	if err := b.LastError(); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return fmt.Errorf("%s: %s", b.name, b.State())
}
