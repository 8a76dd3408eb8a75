package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// MementoStore persists time-indexed snapshots in ldp_mementos, one row per
// (identifier, at). Put upserts rather than appends: re-putting the same
// instant replaces it, mirroring internal/store/memory's "mementos are
// immutable once written" rule for that exact instant.
type MementoStore struct {
	db *DB
}

func NewMementoStore(db *DB) *MementoStore {
	return &MementoStore{db: db}
}

func (s *MementoStore) Put(ctx context.Context, identifier string, at time.Time, quads []rdf.Quad) error {
	raw, err := quadsToJSON(quads)
	if err != nil {
		return ldperrors.ErrTransientStorage("put", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO ldp_mementos (identifier, at, quads)
		VALUES ($1, $2, $3)
		ON CONFLICT (identifier, at) DO UPDATE SET quads = EXCLUDED.quads`,
		identifier, at.UTC(), raw)
	if err != nil {
		return ldperrors.ErrTransientStorage("put", err)
	}
	return nil
}

func (s *MementoStore) Get(ctx context.Context, identifier string, at time.Time) (rdf.Lookup, error) {
	var row struct {
		At    time.Time `db:"at"`
		Quads []byte    `db:"quads"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT at, quads FROM ldp_mementos
		WHERE identifier = $1 AND at <= $2 ORDER BY at DESC LIMIT 1`, identifier, at.UTC())
	if err == sql.ErrNoRows {
		return rdf.Missing, nil
	}
	if err != nil {
		return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
	}
	quads, err := quadsFromJSON(row.Quads)
	if err != nil {
		return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
	}
	metadata := rdf.Metadata{Identifier: identifier, Revision: rdf.DefaultRevision(identifier, row.At)}
	return rdf.Present(rdf.NewResource(metadata, rdf.NewQuadSet(quads...))), nil
}

func (s *MementoStore) Mementos(ctx context.Context, identifier string) ([]time.Time, error) {
	var instants []time.Time
	if err := s.db.SelectContext(ctx, &instants, `SELECT at FROM ldp_mementos WHERE identifier = $1 ORDER BY at`, identifier); err != nil {
		return nil, ldperrors.ErrTransientStorage("mementos", err)
	}
	return instants, nil
}

func (s *MementoStore) Delete(ctx context.Context, identifier string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ldp_mementos WHERE identifier = $1 AND at = $2`, identifier, at.UTC())
	if err != nil {
		return ldperrors.ErrTransientStorage("delete", err)
	}
	return nil
}

var _ store.MementoStore = (*MementoStore)(nil)
