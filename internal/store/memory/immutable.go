package memory

import (
	"context"
	"sync"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
)

// ImmutableStore is an in-memory append-only audit sink. Deletion of a
// resource's head state never purges its entry here.
type ImmutableStore struct {
	mu      sync.Mutex
	history map[string]*rdf.QuadSet
}

func NewImmutableStore() *ImmutableStore {
	return &ImmutableStore{history: make(map[string]*rdf.QuadSet)}
}

func (s *ImmutableStore) Get(ctx context.Context, identifier string) (rdf.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs, ok := s.history[identifier]
	if !ok {
		return rdf.Missing, nil
	}
	return rdf.Present(rdf.NewResource(rdf.Metadata{Identifier: identifier}, qs)), nil
}

func (s *ImmutableStore) Add(ctx context.Context, identifier string, session *rdf.Session, quads []rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs, ok := s.history[identifier]
	if !ok {
		qs = rdf.NewQuadSet()
		s.history[identifier] = qs
	}
	for _, q := range quads {
		qs.Add(q)
	}
	return nil
}

var _ store.ImmutableStore = (*ImmutableStore)(nil)
