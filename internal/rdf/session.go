package rdf

import "time"

// AnonymousAgent is the sentinel agent IRI used for unauthenticated
// sessions, consulted by the authorization engine's AuthenticatedAgent
// class match.
const AnonymousAgent = "http://xmlns.com/foaf/0.1/Agent#anonymous"

// Session is an immutable record of the acting agent.
type Session struct {
	SessionIRI  string `validate:"required"`
	AgentIRI    string `validate:"required"`
	DelegatedBy string
	Created     time.Time
	Properties  map[string]string
}

// NewSession creates a Session for agentIRI under the caller-supplied
// session-local IRI sessionIRI, with an empty property map.
func NewSession(sessionIRI, agentIRI string, created time.Time) *Session {
	return &Session{
		SessionIRI: sessionIRI,
		AgentIRI:   agentIRI,
		Created:    created,
		Properties: make(map[string]string),
	}
}

// IsDelegated reports whether the session was created on behalf of another
// agent.
func (s *Session) IsDelegated() bool { return s.DelegatedBy != "" }

// BaseURL returns the session's baseURL property, if set.
func (s *Session) BaseURL() string { return s.Properties["baseURL"] }

// IsAnonymous reports whether the session's agent is the anonymous sentinel.
func (s *Session) IsAnonymous() bool { return s.AgentIRI == AnonymousAgent }
