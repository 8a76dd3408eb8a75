// Package memory provides in-memory implementations of every store
// interface in internal/store, used by component tests in place of the
// Postgres-backed implementations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
)

type mutableEntry struct {
	metadata rdf.Metadata
	quads    *rdf.QuadSet
	modified time.Time
	revision string
	tombstoned bool
}

// MutableStore is an in-memory implementation of store.MutableStore.
type MutableStore struct {
	tokens *store.WriteTokens

	mu      sync.RWMutex
	entries map[string]*mutableEntry
	// Now lets tests pin the clock; defaults to time.Now.
	Now func() time.Time
}

func NewMutableStore() *MutableStore {
	return &MutableStore{
		tokens:  store.NewWriteTokens(),
		entries: make(map[string]*mutableEntry),
		Now:     time.Now,
	}
}

func (s *MutableStore) Get(ctx context.Context, identifier string) (rdf.Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[identifier]
	if !ok {
		return rdf.Missing, nil
	}
	if e.tombstoned {
		return rdf.Deleted, nil
	}
	r := rdf.NewResource(e.metadata, e.quads)
	r.Modified = e.modified
	return rdf.Present(r), nil
}

func (s *MutableStore) Replace(ctx context.Context, metadata rdf.Metadata, graph []rdf.Quad) error {
	unlock := s.tokens.Lock(metadata.Identifier)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, hasExisting := s.entries[metadata.Identifier]
	if metadata.Revision != "" {
		if !hasExisting || existing.tombstoned {
			return rdfStorageConflict(metadata.Identifier, "replace against missing resource with a revision precondition")
		}
		if existing.revision != metadata.Revision {
			return rdfStorageConflict(metadata.Identifier, "revision mismatch")
		}
	}

	modified := s.Now().UTC()
	revision := rdf.DefaultRevision(metadata.Identifier, modified)
	metadata.Revision = revision

	s.entries[metadata.Identifier] = &mutableEntry{
		metadata: metadata,
		quads:    rdf.NewQuadSet(graph...),
		modified: modified,
		revision: revision,
	}
	return nil
}

func (s *MutableStore) Delete(ctx context.Context, metadata rdf.Metadata) error {
	unlock := s.tokens.Lock(metadata.Identifier)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[metadata.Identifier]
	if !ok {
		e = &mutableEntry{metadata: metadata}
		s.entries[metadata.Identifier] = e
	}
	e.tombstoned = true
	e.modified = s.Now().UTC()
	e.quads = rdf.NewQuadSet()
	return nil
}

func (s *MutableStore) Touch(ctx context.Context, identifier string) error {
	unlock := s.tokens.Lock(identifier)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identifier]
	if !ok || e.tombstoned {
		return rdfNotFound(identifier)
	}
	e.modified = s.Now().UTC()
	e.revision = rdf.DefaultRevision(identifier, e.modified)
	e.metadata.Revision = e.revision
	return nil
}

func (s *MutableStore) Scan(ctx context.Context) (<-chan string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id, e := range s.entries {
		if !e.tombstoned {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	ch := make(chan string, len(ids))
	for _, id := range ids {
		ch <- id
	}
	close(ch)
	return ch, nil
}

var _ store.MutableStore = (*MutableStore)(nil)
