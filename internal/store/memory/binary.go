package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"

	"github.com/trellis-ldp/ldpcore/internal/store"
)

type memoryBinaryHandle struct {
	*bytes.Reader
	size int64
}

func (h *memoryBinaryHandle) Size() int64 { return h.size }
func (h *memoryBinaryHandle) Close() error { return nil }

// BinaryStore is an in-memory content store keyed by internal IRI.
type BinaryStore struct {
	mu      sync.RWMutex
	content map[string][]byte
}

func NewBinaryStore() *BinaryStore {
	return &BinaryStore{content: make(map[string][]byte)}
}

func (s *BinaryStore) Get(ctx context.Context, identifier string) (store.BinaryHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.content[identifier]
	if !ok {
		return nil, ldperrors.ErrNotFound(identifier)
	}
	return &memoryBinaryHandle{Reader: bytes.NewReader(b), size: int64(len(b))}, nil
}

// Content streams the inclusive byte range [from, to]. to is clipped to
// the last byte; an empty range returns zero bytes.
func (s *BinaryStore) Content(ctx context.Context, identifier string, from, to int64) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.content[identifier]
	if !ok {
		return nil, ldperrors.ErrNotFound(identifier)
	}
	size := int64(len(b))
	if from < 0 {
		from = 0
	}
	if to >= size {
		to = size - 1
	}
	if from > to || from >= size {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(bytes.NewReader(b[from : to+1])), nil
}

func (s *BinaryStore) SetContent(ctx context.Context, identifier string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, ldperrors.Wrap(ldperrors.TransientStorageError, "read binary payload", err)
	}
	s.mu.Lock()
	s.content[identifier] = b
	s.mu.Unlock()
	return int64(len(b)), nil
}

func (s *BinaryStore) PurgeContent(ctx context.Context, identifier string) error {
	s.mu.Lock()
	delete(s.content, identifier)
	s.mu.Unlock()
	return nil
}

var _ store.BinaryStore = (*BinaryStore)(nil)
