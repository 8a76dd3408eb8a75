package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"io"

	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

type pgBinaryHandle struct {
	*bytes.Reader
	size int64
}

func (h *pgBinaryHandle) Size() int64  { return h.size }
func (h *pgBinaryHandle) Close() error { return nil }

// BinaryStore persists binary payloads as a bytea column in ldp_binaries.
// LDP binary resources in this core are metadata-bearing documents (PDFs,
// images) rather than multi-gigabyte blobs, so a bytea column is simpler
// to operate than Postgres large objects and keeps payload and row in the
// same transaction boundary.
type BinaryStore struct {
	db *DB
}

func NewBinaryStore(db *DB) *BinaryStore {
	return &BinaryStore{db: db}
}

func (s *BinaryStore) Get(ctx context.Context, identifier string) (store.BinaryHandle, error) {
	var content []byte
	err := s.db.GetContext(ctx, &content, `SELECT content FROM ldp_binaries WHERE identifier = $1`, identifier)
	if err == sql.ErrNoRows {
		return nil, ldperrors.ErrNotFound(identifier)
	}
	if err != nil {
		return nil, ldperrors.ErrTransientStorage("get", err)
	}
	return &pgBinaryHandle{Reader: bytes.NewReader(content), size: int64(len(content))}, nil
}

func (s *BinaryStore) Content(ctx context.Context, identifier string, from, to int64) (io.ReadCloser, error) {
	var content []byte
	err := s.db.GetContext(ctx, &content, `SELECT content FROM ldp_binaries WHERE identifier = $1`, identifier)
	if err == sql.ErrNoRows {
		return nil, ldperrors.ErrNotFound(identifier)
	}
	if err != nil {
		return nil, ldperrors.ErrTransientStorage("content", err)
	}

	size := int64(len(content))
	if from < 0 {
		from = 0
	}
	if to >= size {
		to = size - 1
	}
	if from > to || from >= size {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(bytes.NewReader(content[from : to+1])), nil
}

func (s *BinaryStore) SetContent(ctx context.Context, identifier string, r io.Reader) (int64, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, ldperrors.ErrTransientStorage("read binary payload", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO ldp_binaries (identifier, content)
		VALUES ($1, $2)
		ON CONFLICT (identifier) DO UPDATE SET content = EXCLUDED.content`,
		identifier, content)
	if err != nil {
		return 0, ldperrors.ErrTransientStorage("set content", err)
	}
	return int64(len(content)), nil
}

func (s *BinaryStore) PurgeContent(ctx context.Context, identifier string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ldp_binaries WHERE identifier = $1`, identifier)
	if err != nil {
		return ldperrors.ErrTransientStorage("purge content", err)
	}
	return nil
}

var _ store.BinaryStore = (*BinaryStore)(nil)
