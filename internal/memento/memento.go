// Package memento implements the Memento (versioning) service:
// time-indexed snapshots of resources with point-in-time lookup.
package memento

import (
	"context"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
	"github.com/trellis-ldp/ldpcore/pkg/logger"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

// Service snapshots resource state under a sorted set of instants (see
// DESIGN.md for why the sorted-set shape was chosen) and answers
// point-in-time lookups.
type Service struct {
	mementos store.MementoStore
	log      *logger.Logger
	recorder metrics.Recorder
}

func New(mementos store.MementoStore, log *logger.Logger, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{mementos: mementos, log: log, recorder: recorder}
}

// Put snapshots resource's current state under at. Mementos are advisory:
// if the store rejects the put, the originating mutation still succeeds —
// the caller should not treat a Put error as fatal.
func (s *Service) Put(ctx context.Context, resource *rdf.Resource, at time.Time) error {
	err := s.mementos.Put(ctx, resource.Identifier, at, resource.Stream())
	s.recorder.MementoSnapshotted(err == nil)
	if err != nil && s.log != nil {
		s.log.WithContext(ctx).WithError(err).Warn("memento snapshot rejected; originating mutation still committed")
	}
	return err
}

// Get returns the Memento whose timestamp is the latest <= at, or MISSING.
func (s *Service) Get(ctx context.Context, identifier string, at time.Time) (rdf.Lookup, error) {
	return s.mementos.Get(ctx, identifier, at)
}

// Mementos lists the versioned instants for a resource in ascending order.
func (s *Service) Mementos(ctx context.Context, identifier string) ([]time.Time, error) {
	return s.mementos.Mementos(ctx, identifier)
}

// Delete removes a single Memento instant, if the implementation supports it.
func (s *Service) Delete(ctx context.Context, identifier string, at time.Time) error {
	return s.mementos.Delete(ctx, identifier, at)
}

// Sweep is invoked periodically (wired to robfig/cron in cmd/ldpd) to allow
// implementations to expire Mementos past a retention policy. The default
// in-memory store retains every snapshot; Sweep is a no-op placeholder
// hook for deployments layering a retention policy in.
func (s *Service) Sweep(ctx context.Context) error {
	return nil
}
