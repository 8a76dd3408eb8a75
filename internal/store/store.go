// Package store defines the persistence contracts the resource lifecycle
// engine consumes: mutable head-state, immutable audit,
// Memento, binary, and namespace-prefix stores.
package store

import (
	"context"
	"io"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// MutableStore holds current head state, containment, and membership for
// every resource. Operations on the same identifier are serialized by the
// implementation.
type MutableStore interface {
	Get(ctx context.Context, identifier string) (rdf.Lookup, error)
	Replace(ctx context.Context, metadata rdf.Metadata, graph []rdf.Quad) error
	Delete(ctx context.Context, metadata rdf.Metadata) error
	Touch(ctx context.Context, identifier string) error
	// Scan streams the identifier of every resource that is not deleted
	// (tombstoned identifiers are skipped); optional, used for export.
	Scan(ctx context.Context) (<-chan string, error)
}

// ImmutableStore is the append-only audit sink. Writes
// cannot observe earlier writes being rolled back.
type ImmutableStore interface {
	Get(ctx context.Context, identifier string) (rdf.Lookup, error)
	Add(ctx context.Context, identifier string, session *rdf.Session, quads []rdf.Quad) error
}

// MementoStore stores time-indexed snapshots and answers point-in-time
// lookups.
type MementoStore interface {
	Put(ctx context.Context, identifier string, at time.Time, quads []rdf.Quad) error
	Get(ctx context.Context, identifier string, at time.Time) (rdf.Lookup, error)
	Mementos(ctx context.Context, identifier string) ([]time.Time, error)
	Delete(ctx context.Context, identifier string, at time.Time) error
}

// BinaryHandle is a streaming handle to an opaque binary payload.
type BinaryHandle interface {
	io.ReadCloser
	Size() int64
}

// BinaryStore persists opaque byte streams keyed by internal IRI.
type BinaryStore interface {
	Get(ctx context.Context, identifier string) (BinaryHandle, error)
	Content(ctx context.Context, identifier string, from, to int64) (io.ReadCloser, error)
	SetContent(ctx context.Context, identifier string, r io.Reader) (int64, error)
	PurgeContent(ctx context.Context, identifier string) error
}

// NamespaceService exposes the configured prefix → IRI map consulted by
// the RDF I/O subsystem's Turtle writer.
type NamespaceService interface {
	GetNamespaces(ctx context.Context) (map[string]string, error)
	SetPrefix(ctx context.Context, prefix, uri string) (bool, error)
}
