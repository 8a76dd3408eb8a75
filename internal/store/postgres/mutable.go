package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// MutableStore persists current resource head-state in the ldp_resources
// table. One row per identifier; a delete sets tombstoned rather than
// removing the row, matching internal/store/memory's semantics.
type MutableStore struct {
	db     *DB
	tokens *store.WriteTokens
	// Now lets tests pin the clock; defaults to time.Now.
	Now func() time.Time
}

func NewMutableStore(db *DB) *MutableStore {
	return &MutableStore{db: db, tokens: store.NewWriteTokens(), Now: time.Now}
}

type resourceRow struct {
	Identifier              string    `db:"identifier"`
	InteractionModel        string    `db:"interaction_model"`
	Container               string    `db:"container"`
	MembershipResource      string    `db:"membership_resource"`
	MemberRelation          string    `db:"member_relation"`
	MemberOfRelation        string    `db:"member_of_relation"`
	InsertedContentRelation string    `db:"inserted_content_relation"`
	Revision                string    `db:"revision"`
	Modified                time.Time `db:"modified"`
	Tombstoned              bool      `db:"tombstoned"`
	Quads                   []byte    `db:"quads"`
}

func (s *MutableStore) Get(ctx context.Context, identifier string) (rdf.Lookup, error) {
	var row resourceRow
	err := s.db.GetContext(ctx, &row, `SELECT identifier, interaction_model, container, membership_resource,
		member_relation, member_of_relation, inserted_content_relation, revision, modified, tombstoned, quads
		FROM ldp_resources WHERE identifier = $1`, identifier)
	if err == sql.ErrNoRows {
		return rdf.Missing, nil
	}
	if err != nil {
		return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
	}
	if row.Tombstoned {
		return rdf.Deleted, nil
	}
	resource, err := rowToResource(row)
	if err != nil {
		return rdf.Lookup{}, ldperrors.ErrTransientStorage("get", err)
	}
	return rdf.Present(resource), nil
}

func (s *MutableStore) Replace(ctx context.Context, metadata rdf.Metadata, graph []rdf.Quad) error {
	unlock := s.tokens.Lock(metadata.Identifier)
	defer unlock()

	if metadata.Revision != "" {
		var existing resourceRow
		err := s.db.GetContext(ctx, &existing, `SELECT revision, tombstoned FROM ldp_resources WHERE identifier = $1`, metadata.Identifier)
		switch {
		case err == sql.ErrNoRows || (err == nil && existing.Tombstoned):
			return ldperrors.ErrStorageConflict(metadata.Identifier, "replace against missing resource with a revision precondition")
		case err != nil:
			return ldperrors.ErrTransientStorage("replace", err)
		case existing.Revision != metadata.Revision:
			return ldperrors.ErrStorageConflict(metadata.Identifier, "revision mismatch")
		}
	}

	modified := s.Now().UTC()
	metadata.Revision = rdf.DefaultRevision(metadata.Identifier, modified)
	raw, err := quadsToJSON(graph)
	if err != nil {
		return ldperrors.ErrTransientStorage("replace", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ldp_resources (identifier, interaction_model, container, membership_resource,
			member_relation, member_of_relation, inserted_content_relation, revision, modified, tombstoned, quads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
		ON CONFLICT (identifier) DO UPDATE SET
			interaction_model = EXCLUDED.interaction_model,
			container = EXCLUDED.container,
			membership_resource = EXCLUDED.membership_resource,
			member_relation = EXCLUDED.member_relation,
			member_of_relation = EXCLUDED.member_of_relation,
			inserted_content_relation = EXCLUDED.inserted_content_relation,
			revision = EXCLUDED.revision,
			modified = EXCLUDED.modified,
			tombstoned = false,
			quads = EXCLUDED.quads
	`, metadata.Identifier, metadata.InteractionModel.String(), metadata.Container, metadata.MembershipResource,
		metadata.MemberRelation, metadata.MemberOfRelation, metadata.InsertedContentRelation,
		metadata.Revision, modified, raw)
	if err != nil {
		return ldperrors.ErrTransientStorage("replace", err)
	}
	return nil
}

func (s *MutableStore) Delete(ctx context.Context, metadata rdf.Metadata) error {
	unlock := s.tokens.Lock(metadata.Identifier)
	defer unlock()

	now := s.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ldp_resources (identifier, interaction_model, modified, tombstoned, quads)
		VALUES ($1, $2, $3, true, '[]')
		ON CONFLICT (identifier) DO UPDATE SET tombstoned = true, modified = EXCLUDED.modified, quads = '[]'
	`, metadata.Identifier, metadata.InteractionModel.String(), now)
	if err != nil {
		return ldperrors.ErrTransientStorage("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ldperrors.ErrNotFound(metadata.Identifier)
	}
	return nil
}

func (s *MutableStore) Touch(ctx context.Context, identifier string) error {
	unlock := s.tokens.Lock(identifier)
	defer unlock()

	now := s.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE ldp_resources SET modified = $2, revision = $3 WHERE identifier = $1 AND tombstoned = false`,
		identifier, now, rdf.DefaultRevision(identifier, now))
	if err != nil {
		return ldperrors.ErrTransientStorage("touch", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ldperrors.ErrNotFound(identifier)
	}
	return nil
}

func (s *MutableStore) Scan(ctx context.Context) (<-chan string, error) {
	var identifiers []string
	if err := s.db.SelectContext(ctx, &identifiers, `SELECT identifier FROM ldp_resources WHERE tombstoned = false ORDER BY identifier`); err != nil {
		return nil, ldperrors.ErrTransientStorage("scan", err)
	}
	ch := make(chan string, len(identifiers))
	for _, id := range identifiers {
		ch <- id
	}
	close(ch)
	return ch, nil
}

func rowToResource(row resourceRow) (*rdf.Resource, error) {
	quads, err := quadsFromJSON(row.Quads)
	if err != nil {
		return nil, err
	}
	metadata := rdf.Metadata{
		Identifier:              row.Identifier,
		InteractionModel:        interactionModelFromString(row.InteractionModel),
		Container:               row.Container,
		MembershipResource:      row.MembershipResource,
		MemberRelation:          row.MemberRelation,
		MemberOfRelation:        row.MemberOfRelation,
		InsertedContentRelation: row.InsertedContentRelation,
		Revision:                row.Revision,
	}
	resource := rdf.NewResource(metadata, rdf.NewQuadSet(quads...))
	resource.Modified = row.Modified
	return resource, nil
}

func interactionModelFromString(s string) rdf.InteractionModel {
	for _, m := range rdf.SupportedInteractionModels() {
		if m.String() == s {
			return m
		}
	}
	return rdf.RDFSource
}

var _ store.MutableStore = (*MutableStore)(nil)
