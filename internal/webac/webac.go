// Package webac implements the WebAC authorization engine: it walks
// container ancestry to resolve the effective ACL and grants a
// set of access modes to an agent.
package webac

import (
	"context"
	"strings"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// Mode is one of the four WebAC access modes.
type Mode string

const (
	Read    Mode = "http://www.w3.org/ns/auth/acl#Read"
	Write   Mode = "http://www.w3.org/ns/auth/acl#Write"
	Append  Mode = "http://www.w3.org/ns/auth/acl#Append"
	Control Mode = "http://www.w3.org/ns/auth/acl#Control"
)

const (
	aclAgent           = "http://www.w3.org/ns/auth/acl#agent"
	aclAgentClass      = "http://www.w3.org/ns/auth/acl#agentClass"
	aclAgentGroup      = "http://www.w3.org/ns/auth/acl#agentGroup"
	aclAccessTo        = "http://www.w3.org/ns/auth/acl#accessTo"
	aclDefault         = "http://www.w3.org/ns/auth/acl#default"
	aclMode            = "http://www.w3.org/ns/auth/acl#mode"
	authenticatedAgent = "http://www.w3.org/ns/auth/acl#AuthenticatedAgent"
	publicAgent        = "http://xmlns.com/foaf/0.1/Agent"
	vcardHasMember     = "http://www.w3.org/2006/vcard/ns#hasMember"
)

// ResourceResolver loads the Resource at identifier, used to find the
// nearest ancestor carrying an ACL graph and to read that graph's triples.
type ResourceResolver interface {
	Resolve(ctx context.Context, identifier string) (*rdf.Resource, bool, error)
}

// Engine evaluates the access modes an agent holds on a target resource.
type Engine struct {
	resolver       ResourceResolver
	administrators map[string]struct{}
}

func New(resolver ResourceResolver, administratorIRIs []string) *Engine {
	admins := make(map[string]struct{}, len(administratorIRIs))
	for _, iri := range administratorIRIs {
		admins[iri] = struct{}{}
	}
	return &Engine{resolver: resolver, administrators: admins}
}

// AccessModes computes the set of access modes session holds over target.
func (e *Engine) AccessModes(ctx context.Context, target string, session *rdf.Session) (map[Mode]struct{}, error) {
	if _, ok := e.administrators[session.AgentIRI]; ok {
		return allModes(), nil
	}

	ancestor, aclQuads, found, err := e.findEffectiveACL(ctx, target)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[Mode]struct{}{}, nil
	}

	groupMembers := groupMembersByGroupIRI(aclQuads)

	granted := map[Mode]struct{}{}
	for _, auth := range authorizationNodes(aclQuads) {
		if !auth.appliesTo(target, ancestor) {
			continue
		}
		if !auth.matchesAgent(session, groupMembers) {
			continue
		}
		for _, m := range auth.modes {
			granted[m] = struct{}{}
			if m == Write {
				granted[Append] = struct{}{} // Write implies Append (§4.5 tie-break)
			}
		}
	}
	return granted, nil
}

func allModes() map[Mode]struct{} {
	return map[Mode]struct{}{Read: {}, Write: {}, Append: {}, Control: {}}
}

// findEffectiveACL walks ancestors of target (stripping the last
// '/'-segment each time, after normalizing trailing slashes) until it
// finds a resource whose metadata graphs include the ACL graph.
func (e *Engine) findEffectiveACL(ctx context.Context, target string) (ancestorIRI string, aclQuads []rdf.Quad, found bool, err error) {
	current := normalizeContainerPath(target)
	for current != "" {
		res, ok, rerr := e.resolver.Resolve(ctx, current)
		if rerr != nil {
			return "", nil, false, rerr
		}
		if ok && res.HasMetadataGraph(rdf.GraphAccessControl) {
			acl := filterGraph(res.Stream(), rdf.GraphAccessControl)
			return current, acl, true, nil
		}
		parent := parentOf(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", nil, false, nil
}

func filterGraph(quads []rdf.Quad, graphName string) []rdf.Quad {
	var out []rdf.Quad
	for _, q := range quads {
		if q.GraphName.Value == graphName {
			out = append(out, q)
		}
	}
	return out
}

// normalizeContainerPath strips every trailing slash; empty segments
// elsewhere in the path are left as they are.
func normalizeContainerPath(iri string) string {
	return strings.TrimRight(iri, "/")
}

func parentOf(iri string) string {
	idx := strings.LastIndex(iri, "/")
	if idx < 0 {
		return iri
	}
	return iri[:idx]
}

type authorization struct {
	subject     string
	accessTo    []string
	defaultFor  []string
	agents      []string
	agentClass  []string
	agentGroups []string
	modes       []Mode
}

func (a authorization) appliesTo(target, ancestor string) bool {
	for _, iri := range a.accessTo {
		if iri == target {
			return true
		}
	}
	for _, iri := range a.defaultFor {
		if iri == ancestor {
			return true // inherited by descendants through containment
		}
	}
	return false
}

func (a authorization) matchesAgent(session *rdf.Session, groupMembers map[string]map[string]struct{}) bool {
	matched := a.matchesPrincipal(session.AgentIRI, groupMembers)
	if !session.IsDelegated() {
		return matched
	}
	// A delegated session must match both the delegator and the actual agent.
	return matched && a.matchesPrincipal(session.DelegatedBy, groupMembers)
}

func (a authorization) matchesPrincipal(agentIRI string, groupMembers map[string]map[string]struct{}) bool {
	for _, agent := range a.agents {
		if agent == agentIRI {
			return true
		}
	}
	for _, class := range a.agentClass {
		if class == authenticatedAgent && agentIRI != rdf.AnonymousAgent {
			return true
		}
		if class == publicAgent {
			return true
		}
	}
	for _, group := range a.agentGroups {
		if members, ok := groupMembers[group]; ok {
			if _, isMember := members[agentIRI]; isMember {
				return true
			}
		}
	}
	return false
}

// groupMembersByGroupIRI indexes vcard:hasMember triples so agentGroup
// authorizations can be checked against the listed group's membership.
func groupMembersByGroupIRI(quads []rdf.Quad) map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}
	for _, q := range quads {
		if q.Predicate.Value != vcardHasMember {
			continue
		}
		members, ok := out[q.Subject.Value]
		if !ok {
			members = map[string]struct{}{}
			out[q.Subject.Value] = members
		}
		members[q.Object.Value] = struct{}{}
	}
	return out
}

// authorizationNodes groups ACL graph quads by their Authorization subject
// (blank or named) into authorization structs.
func authorizationNodes(quads []rdf.Quad) []authorization {
	bySubject := map[string]*authorization{}
	var order []string
	get := func(subject string) *authorization {
		a, ok := bySubject[subject]
		if !ok {
			a = &authorization{subject: subject}
			bySubject[subject] = a
			order = append(order, subject)
		}
		return a
	}

	for _, q := range quads {
		subject := q.Subject.String()
		a := get(subject)
		switch q.Predicate.Value {
		case aclAccessTo:
			a.accessTo = append(a.accessTo, q.Object.Value)
		case aclDefault:
			a.defaultFor = append(a.defaultFor, q.Object.Value)
		case aclAgent:
			a.agents = append(a.agents, q.Object.Value)
		case aclAgentClass:
			a.agentClass = append(a.agentClass, q.Object.Value)
		case aclAgentGroup:
			a.agentGroups = append(a.agentGroups, q.Object.Value)
		case aclMode:
			a.modes = append(a.modes, Mode(q.Object.Value))
		}
	}

	out := make([]authorization, 0, len(order))
	for _, subject := range order {
		out = append(out, *bySubject[subject])
	}
	return out
}
