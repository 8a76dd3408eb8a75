// Package metrics defines the metrics-emission surface the core calls into.
// The core never imports a concrete metrics backend directly — callers wire
// a Recorder implementation at startup, consistent with the metrics
// subsystem being an external collaborator of the core (see spec §1).
package metrics

import "time"

// Recorder receives metric observations from core components.
type Recorder interface {
	// MutationCommitted records a resource-service mutation (create/replace/delete).
	MutationCommitted(op, interactionModel string, duration time.Duration)
	// ConstraintViolation records a rejected candidate graph.
	ConstraintViolation(interactionModel string)
	// EventPublished records an event successfully handed to the bus, or a publish failure.
	EventPublished(activityType string, err error)
	// BinaryDigestComputed records a digest computation and its algorithm.
	BinaryDigestComputed(algorithm string, duration time.Duration)
	// MementoSnapshotted records a Memento put, successful or rejected.
	MementoSnapshotted(success bool)
}

// Noop is a Recorder that discards every observation. It is the default
// when no backend is wired, so components never need a nil check.
type Noop struct{}

func (Noop) MutationCommitted(string, string, time.Duration) {}
func (Noop) ConstraintViolation(string)                      {}
func (Noop) EventPublished(string, error)                    {}
func (Noop) BinaryDigestComputed(string, time.Duration)      {}
func (Noop) MementoSnapshotted(bool)                         {}

var _ Recorder = Noop{}
