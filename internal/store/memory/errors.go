package memory

import ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"

func rdfNotFound(identifier string) error {
	return ldperrors.ErrNotFound(identifier)
}

func rdfStorageConflict(identifier, reason string) error {
	return ldperrors.ErrStorageConflict(identifier, reason)
}
