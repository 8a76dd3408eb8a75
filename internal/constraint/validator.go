// Package constraint implements the constraint validator:
// given an interaction model and a candidate graph, it streams the
// violations that must block the write.
package constraint

import (
	"strings"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// Rule identifies a single constraint, surfaced on each violation so
// callers can report which rule rejected the graph.
type Rule string

const (
	RuleNoUserContainment   Rule = "http://www.w3.org/ns/ldp#constrainedBy#contains"
	RuleNoServerManaged     Rule = "http://www.w3.org/ns/ldp#constrainedBy#serverManaged"
	RuleDirectContainerShape Rule = "http://www.w3.org/ns/ldp#constrainedBy#directContainer"
	RuleIndirectContainerShape Rule = "http://www.w3.org/ns/ldp#constrainedBy#indirectContainer"
	RuleOutOfDomainSubject  Rule = "http://www.w3.org/ns/ldp#constrainedBy#domain"
)

// Validator checks candidate graphs against the server's constraint rules.
type Validator struct {
	// DomainPrefix bounds which subject IRIs are considered in-domain; an
	// empty prefix disables the domain-subject check.
	DomainPrefix string
}

func New(domainPrefix string) *Validator {
	return &Validator{DomainPrefix: domainPrefix}
}

// Validate returns every ConstraintViolation found in graph for the given
// resource metadata. An empty result means accept.
func (v *Validator) Validate(metadata rdf.Metadata, graph []rdf.Quad) []rdf.ConstraintViolation {
	var violations []rdf.ConstraintViolation

	violations = append(violations, v.checkNoUserContainment(graph)...)
	violations = append(violations, v.checkNoServerManagedPredicates(graph)...)
	violations = append(violations, v.checkContainerShape(metadata, graph)...)
	violations = append(violations, v.checkSubjectDomain(metadata.Identifier, graph)...)

	return violations
}

// checkNoUserContainment rejects user-supplied ldp:contains triples;
// those are populated by the server exclusively.
func (v *Validator) checkNoUserContainment(graph []rdf.Quad) []rdf.ConstraintViolation {
	var offending []rdf.Triple
	for _, q := range graph {
		if q.HasGraph() {
			continue // server-managed graphs are not user-supplied
		}
		if q.Predicate.Value == rdf.LDPContains {
			offending = append(offending, q.Triple())
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return []rdf.ConstraintViolation{{ConstraintIRI: string(RuleNoUserContainment), Triples: offending}}
}

// serverManagedPredicatePrefixes are predicate namespaces a user graph may
// never assert into, outside of the graph that namespace legitimately owns.
var serverManagedPredicatePrefixes = []string{
	rdf.PrefixACL,
	rdf.PrefixPROV,
}

func (v *Validator) checkNoServerManagedPredicates(graph []rdf.Quad) []rdf.ConstraintViolation {
	var offending []rdf.Triple
	for _, q := range graph {
		if q.Predicate.Value == rdf.LDPInbox {
			offending = append(offending, q.Triple())
			continue
		}
		if q.GraphName.Value == rdf.GraphAccessControl {
			continue // the ACL graph legitimately carries acl:* predicates
		}
		for _, prefix := range serverManagedPredicatePrefixes {
			if strings.HasPrefix(q.Predicate.Value, prefix) {
				offending = append(offending, q.Triple())
				break
			}
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return []rdf.ConstraintViolation{{ConstraintIRI: string(RuleNoServerManaged), Triples: offending}}
}

// checkContainerShape enforces the Direct/Indirect container membership
// triple requirements. The membership engine reads these fields off
// Metadata, so a value supplied there satisfies the shape on its own;
// a value supplied only as a graph triple under the resource's own subject
// also satisfies it. Either source, or both, is accepted.
func (v *Validator) checkContainerShape(metadata rdf.Metadata, graph []rdf.Quad) []rdf.ConstraintViolation {
	model := metadata.InteractionModel
	if model != rdf.DirectContainer && model != rdf.IndirectContainer {
		return nil
	}

	hasMembershipResource := metadata.MembershipResource != ""
	hasMemberRelation := metadata.MemberRelation != "" || metadata.MemberOfRelation != ""
	hasInsertedContentRelation := metadata.InsertedContentRelation != ""

	membershipRelationPredicate := "http://www.w3.org/ns/ldp#membershipResource"
	hasMemberRelationPredicate := "http://www.w3.org/ns/ldp#hasMemberRelation"
	isMemberOfRelationPredicate := "http://www.w3.org/ns/ldp#isMemberOfRelation"
	insertedContentRelationPredicate := "http://www.w3.org/ns/ldp#insertedContentRelation"

	for _, q := range graph {
		if q.Subject.Value != metadata.Identifier {
			continue
		}
		switch q.Predicate.Value {
		case membershipRelationPredicate:
			hasMembershipResource = true
		case hasMemberRelationPredicate, isMemberOfRelationPredicate:
			hasMemberRelation = true
		case insertedContentRelationPredicate:
			hasInsertedContentRelation = true
		}
	}

	if hasMembershipResource && hasMemberRelation && (model == rdf.DirectContainer || hasInsertedContentRelation) {
		return nil
	}

	rule := RuleDirectContainerShape
	if model == rdf.IndirectContainer {
		rule = RuleIndirectContainerShape
	}
	return []rdf.ConstraintViolation{{ConstraintIRI: string(rule)}}
}

// checkSubjectDomain rejects triples whose subject is neither the resource
// itself, a skolem node, nor an in-domain IRI, when it also introduces a
// server-managed predicate.
func (v *Validator) checkSubjectDomain(identifier string, graph []rdf.Quad) []rdf.ConstraintViolation {
	if v.DomainPrefix == "" {
		return nil
	}
	var offending []rdf.Triple
	for _, q := range graph {
		if q.Subject.Value == identifier || rdf.IsBnodeSkolem(q.Subject.Value) || q.Subject.IsBlankNode() {
			continue
		}
		if strings.HasPrefix(q.Subject.Value, v.DomainPrefix) {
			continue
		}
		if isServerManagedPredicate(q.Predicate.Value) {
			offending = append(offending, q.Triple())
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return []rdf.ConstraintViolation{{ConstraintIRI: string(RuleOutOfDomainSubject), Triples: offending}}
}

func isServerManagedPredicate(predicate string) bool {
	if predicate == rdf.LDPContains || predicate == rdf.LDPInbox {
		return true
	}
	for _, prefix := range serverManagedPredicatePrefixes {
		if strings.HasPrefix(predicate, prefix) {
			return true
		}
	}
	return false
}
