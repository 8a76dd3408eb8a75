// Package session builds and validates the Session context shared across
// a request: the acting agent, optional delegator, creation
// instant, and opaque baseURL property.
package session

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/pkg/errors"
)

var validate = validator.New()

// New builds a validated Session for agentIRI under the caller-supplied
// session-local identifier sessionIRI.
func New(sessionIRI, agentIRI string, created time.Time, properties map[string]string) (*rdf.Session, error) {
	s := rdf.NewSession(sessionIRI, agentIRI, created)
	for k, v := range properties {
		s.Properties[k] = v
	}
	if err := validate.Struct(s); err != nil {
		return nil, errors.Wrap(errors.ConstraintViolation, "invalid session", err)
	}
	return s, nil
}

// Delegate builds a Session acting on behalf of delegatedBy, carried out by
// actingAgentIRI.
func Delegate(sessionIRI, actingAgentIRI, delegatedBy string, created time.Time) (*rdf.Session, error) {
	s, err := New(sessionIRI, actingAgentIRI, created, nil)
	if err != nil {
		return nil, err
	}
	s.DelegatedBy = delegatedBy
	return s, nil
}
