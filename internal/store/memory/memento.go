package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
)

type mementoEntry struct {
	at    time.Time
	quads *rdf.QuadSet
}

// MementoStore is an in-memory Memento store keeping, per identifier, a
// sorted set of instants (chosen over a list of time ranges since the two
// are observationally equivalent for point events — see DESIGN.md).
type MementoStore struct {
	mu      sync.Mutex
	entries map[string][]mementoEntry
}

func NewMementoStore() *MementoStore {
	return &MementoStore{entries: make(map[string][]mementoEntry)}
}

func (s *MementoStore) Put(ctx context.Context, identifier string, at time.Time, quads []rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[identifier]
	idx := sort.Search(len(list), func(i int) bool { return !list[i].at.Before(at) })
	entry := mementoEntry{at: at, quads: rdf.NewQuadSet(quads...)}
	if idx < len(list) && list[idx].at.Equal(at) {
		list[idx] = entry // mementos are immutable once written; re-putting the same instant overwrites rather than duplicating
	} else {
		list = append(list, mementoEntry{})
		copy(list[idx+1:], list[idx:])
		list[idx] = entry
	}
	s.entries[identifier] = list
	return nil
}

func (s *MementoStore) Get(ctx context.Context, identifier string, at time.Time) (rdf.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[identifier]
	// Find the latest instant <= at.
	idx := sort.Search(len(list), func(i int) bool { return list[i].at.After(at) })
	if idx == 0 {
		return rdf.Missing, nil
	}
	entry := list[idx-1]
	return rdf.Present(rdf.NewResource(rdf.Metadata{Identifier: identifier, Revision: rdf.DefaultRevision(identifier, entry.at)}, entry.quads)), nil
}

func (s *MementoStore) Mementos(ctx context.Context, identifier string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[identifier]
	out := make([]time.Time, len(list))
	for i, e := range list {
		out[i] = e.at
	}
	return out, nil
}

func (s *MementoStore) Delete(ctx context.Context, identifier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[identifier]
	for i, e := range list {
		if e.at.Equal(at) {
			s.entries[identifier] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ store.MementoStore = (*MementoStore)(nil)
