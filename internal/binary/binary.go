// Package binary implements the binary service: content-
// addressed opaque payloads with streaming, range reads, and digest
// computation.
package binary

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/skolem"
	"github.com/trellis-ldp/ldpcore/internal/store"
	"github.com/trellis-ldp/ldpcore/pkg/errors"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

var validate = validator.New()

// Algorithm is a supported MessageDigest algorithm name.
type Algorithm string

const (
	MD5    Algorithm = "MD5"
	SHA1   Algorithm = "SHA-1"
	SHA256 Algorithm = "SHA-256"
	SHA512 Algorithm = "SHA-512"
)

func newHash(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("binary: unsupported digest algorithm %q", alg)
	}
}

// Service is the core binary service; it delegates byte storage to a
// store.BinaryStore and digest storage is recomputed on demand by reading
// back through the store.
type Service struct {
	store     store.BinaryStore
	ids       *skolem.Service
	recorder  metrics.Recorder
}

func New(binaryStore store.BinaryStore, ids *skolem.Service, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{store: binaryStore, ids: ids, recorder: recorder}
}

// Get returns a streaming handle to the binary at identifier.
func (s *Service) Get(ctx context.Context, identifier string) (store.BinaryHandle, error) {
	h, err := s.store.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Content streams the inclusive byte range [from, to].
func (s *Service) Content(ctx context.Context, identifier string, from, to int64) (io.ReadCloser, error) {
	return s.store.Content(ctx, identifier, from, to)
}

// SetContent writes stream to the store, computing a digest over it in the
// requested algorithm as it goes, so the caller receives the
// server-computed digest without a second read pass.
func (s *Service) SetContent(ctx context.Context, identifier string, r io.Reader, algorithm Algorithm) (size int64, digest []byte, err error) {
	h, herr := newHash(algorithm)
	if herr != nil {
		return 0, nil, errors.Wrap(errors.RDFParseError, "unsupported digest algorithm", herr).WithDetail("algorithm", string(algorithm))
	}

	start := time.Now()
	tee := io.TeeReader(r, h)
	size, err = s.store.SetContent(ctx, identifier, tee)
	if err != nil {
		return 0, nil, err
	}
	s.recorder.BinaryDigestComputed(string(algorithm), time.Since(start))
	return size, h.Sum(nil), nil
}

// PurgeContent removes the bytes for identifier. May run asynchronously
// with respect to the mutable store's deletion of the description.
func (s *Service) PurgeContent(ctx context.Context, identifier string) error {
	return s.store.PurgeContent(ctx, identifier)
}

// CalculateDigest re-reads the stored payload and computes its digest in
// the given algorithm.
func (s *Service) CalculateDigest(ctx context.Context, identifier string, algorithm Algorithm) ([]byte, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}

	handle, err := s.store.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	start := time.Now()
	if _, err := io.Copy(h, handle); err != nil {
		return nil, errors.Wrap(errors.TransientStorageError, "read binary payload for digest", err)
	}
	s.recorder.BinaryDigestComputed(string(algorithm), time.Since(start))
	return h.Sum(nil), nil
}

// SupportedAlgorithms returns every MessageDigest algorithm the service
// can compute.
func (s *Service) SupportedAlgorithms() []string {
	return []string{string(MD5), string(SHA1), string(SHA256), string(SHA512)}
}

// GenerateIdentifier returns a fresh internal IRI for a new binary.
func (s *Service) GenerateIdentifier() string {
	return s.ids.NewInternalIRI()
}

// NewMetadata builds a validated BinaryMetadata record for a freshly stored
// payload.
func NewMetadata(internalIRI, mimeType string, size int64, hints map[string][]string) (*rdf.BinaryMetadata, error) {
	m := &rdf.BinaryMetadata{InternalIRI: internalIRI, MimeType: mimeType, Size: size, Hints: hints}
	if err := validate.Struct(m); err != nil {
		return nil, errors.Wrap(errors.ConstraintViolation, "invalid binary metadata", err)
	}
	return m, nil
}
