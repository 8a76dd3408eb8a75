package postgres

import (
	"context"
	"database/sql"

	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// NamespaceService persists the prefix -> IRI map in ldp_namespaces.
type NamespaceService struct {
	db *DB
}

func NewNamespaceService(db *DB) *NamespaceService {
	return &NamespaceService{db: db}
}

func (s *NamespaceService) GetNamespaces(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prefix, uri FROM ldp_namespaces`)
	if err != nil {
		return nil, ldperrors.ErrTransientStorage("get namespaces", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var prefix, uri string
		if err := rows.Scan(&prefix, &uri); err != nil {
			return nil, ldperrors.ErrTransientStorage("get namespaces", err)
		}
		out[prefix] = uri
	}
	if err := rows.Err(); err != nil {
		return nil, ldperrors.ErrTransientStorage("get namespaces", err)
	}
	return out, nil
}

func (s *NamespaceService) SetPrefix(ctx context.Context, prefix, uri string) (bool, error) {
	var existed bool
	err := s.db.GetContext(ctx, &existed, `SELECT EXISTS(SELECT 1 FROM ldp_namespaces WHERE prefix = $1)`, prefix)
	if err != nil && err != sql.ErrNoRows {
		return false, ldperrors.ErrTransientStorage("set prefix", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO ldp_namespaces (prefix, uri)
		VALUES ($1, $2)
		ON CONFLICT (prefix) DO UPDATE SET uri = EXCLUDED.uri`, prefix, uri)
	if err != nil {
		return false, ldperrors.ErrTransientStorage("set prefix", err)
	}
	return !existed, nil
}

var _ store.NamespaceService = (*NamespaceService)(nil)
