package memory

import (
	"context"
	"sync"

	"github.com/trellis-ldp/ldpcore/internal/store"
)

// NamespaceService is an in-memory prefix → IRI map.
type NamespaceService struct {
	mu        sync.RWMutex
	prefixes  map[string]string
}

func NewNamespaceService(initial map[string]string) *NamespaceService {
	prefixes := make(map[string]string, len(initial))
	for k, v := range initial {
		prefixes[k] = v
	}
	return &NamespaceService{prefixes: prefixes}
}

func (s *NamespaceService) GetNamespaces(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.prefixes))
	for k, v := range s.prefixes {
		out[k] = v
	}
	return out, nil
}

func (s *NamespaceService) SetPrefix(ctx context.Context, prefix, uri string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.prefixes[prefix]
	s.prefixes[prefix] = uri
	return !existed, nil
}

var _ store.NamespaceService = (*NamespaceService)(nil)
