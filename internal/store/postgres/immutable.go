package postgres

import (
	"context"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// ImmutableStore is the append-only audit sink backed by ldp_immutable_entries.
// Unlike MutableStore, rows are never updated or deleted; Get replays every
// entry recorded for an identifier into a single aggregated QuadSet.
type ImmutableStore struct {
	db *DB
}

func NewImmutableStore(db *DB) *ImmutableStore {
	return &ImmutableStore{db: db}
}

type immutableEntryRow struct {
	SessionIRI  string    `db:"session_iri"`
	AgentIRI    string    `db:"agent_iri"`
	DelegatedBy string    `db:"delegated_by"`
	Created     time.Time `db:"created"`
	Quads       []byte    `db:"quads"`
}

func (s *ImmutableStore) Get(ctx context.Context, identifier string) (rdf.Lookup, error) {
	var rows []immutableEntryRow
	err := s.db.SelectContext(ctx, &rows, `SELECT session_iri, agent_iri, delegated_by, created, quads
		FROM ldp_immutable_entries WHERE identifier = $1 ORDER BY id`, identifier)
	if err != nil {
		return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
	}
	if len(rows) == 0 {
		return rdf.Missing, nil
	}

	qs := rdf.NewQuadSet()
	for _, row := range rows {
		quads, err := quadsFromJSON(row.Quads)
		if err != nil {
			return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
		}
		for _, q := range quads {
			qs.Add(q)
		}
	}
	return rdf.Present(rdf.NewResource(rdf.Metadata{Identifier: identifier}, qs)), nil
}

func (s *ImmutableStore) Add(ctx context.Context, identifier string, session *rdf.Session, quads []rdf.Quad) error {
	raw, err := quadsToJSON(quads)
	if err != nil {
		return ldperrors.ErrTransientStorage("add", err)
	}
	var sessionIRI, agentIRI, delegatedBy string
	created := time.Now().UTC()
	if session != nil {
		sessionIRI, agentIRI, delegatedBy = session.SessionIRI, session.AgentIRI, session.DelegatedBy
		if !session.Created.IsZero() {
			created = session.Created
		}
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO ldp_immutable_entries
		(identifier, session_iri, agent_iri, delegated_by, created, quads)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		identifier, sessionIRI, agentIRI, delegatedBy, created, raw)
	if err != nil {
		return ldperrors.ErrTransientStorage("add", err)
	}
	return nil
}

var _ store.ImmutableStore = (*ImmutableStore)(nil)
