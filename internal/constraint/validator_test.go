package constraint

import (
	"testing"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

const testID = rdf.InternalDataPrefix + "x"

func TestValidateAcceptsEmptyGraph(t *testing.T) {
	v := New("")
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.RDFSource}, nil)
	if len(violations) != 0 {
		t.Fatalf("expected no violations for empty graph, got %+v", violations)
	}
}

func TestValidateRejectsUserContainment(t *testing.T) {
	v := New("")
	graph := []rdf.Quad{
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm(rdf.LDPContains), Object: rdf.NewIRITerm(testID + "/child")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.BasicContainer}, graph)
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(violations))
	}
	if violations[0].ConstraintIRI != string(RuleNoUserContainment) {
		t.Fatalf("expected containment violation, got %q", violations[0].ConstraintIRI)
	}
}

func TestValidateRejectsServerManagedPredicate(t *testing.T) {
	v := New("")
	graph := []rdf.Quad{
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm(rdf.PrefixACL + "mode"), Object: rdf.NewIRITerm(rdf.PrefixACL + "Read")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.RDFSource}, graph)
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(violations))
	}
}

func TestValidateAllowsACLPredicatesInACLGraph(t *testing.T) {
	v := New("")
	graph := []rdf.Quad{
		{GraphName: rdf.NewIRITerm(rdf.GraphAccessControl), Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm(rdf.PrefixACL + "mode"), Object: rdf.NewIRITerm(rdf.PrefixACL + "Read")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.RDFSource}, graph)
	if len(violations) != 0 {
		t.Fatalf("expected no violations for ACL predicates in the ACL graph, got %+v", violations)
	}
}

func TestValidateRequiresDirectContainerShape(t *testing.T) {
	v := New("")
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.DirectContainer}, nil)
	if len(violations) != 1 || violations[0].ConstraintIRI != string(RuleDirectContainerShape) {
		t.Fatalf("expected a direct-container-shape violation, got %+v", violations)
	}
}

func TestValidateAcceptsWellFormedDirectContainer(t *testing.T) {
	v := New("")
	graph := []rdf.Quad{
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#membershipResource"), Object: rdf.NewIRITerm(testID)},
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#hasMemberRelation"), Object: rdf.NewIRITerm("http://www.w3.org/ns/ldp#member")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.DirectContainer}, graph)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestValidateAcceptsDirectContainerShapeFromMetadataAlone(t *testing.T) {
	v := New("")
	metadata := rdf.Metadata{
		Identifier:         testID,
		InteractionModel:   rdf.DirectContainer,
		MembershipResource: testID,
		MemberRelation:     "http://www.w3.org/ns/ldp#member",
	}
	violations := v.Validate(metadata, nil)
	if len(violations) != 0 {
		t.Fatalf("expected no violations when membership config arrives via Metadata, got %+v", violations)
	}
}

func TestValidateIndirectContainerRequiresInsertedContentRelation(t *testing.T) {
	v := New("")
	graph := []rdf.Quad{
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#membershipResource"), Object: rdf.NewIRITerm(testID)},
		{Subject: rdf.NewIRITerm(testID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#hasMemberRelation"), Object: rdf.NewIRITerm("http://www.w3.org/ns/ldp#member")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.IndirectContainer}, graph)
	if len(violations) != 1 || violations[0].ConstraintIRI != string(RuleIndirectContainerShape) {
		t.Fatalf("expected an indirect-container-shape violation, got %+v", violations)
	}
}

func TestValidateRejectsOutOfDomainSubjectWithServerManagedPredicate(t *testing.T) {
	v := New(rdf.InternalDataPrefix)
	graph := []rdf.Quad{
		{Subject: rdf.NewIRITerm("http://evil.example/other"), Predicate: rdf.NewIRITerm(rdf.LDPInbox), Object: rdf.NewIRITerm("http://evil.example/inbox")},
	}
	violations := v.Validate(rdf.Metadata{Identifier: testID, InteractionModel: rdf.RDFSource}, graph)
	if len(violations) != 2 || violations[0].ConstraintIRI != string(RuleNoServerManaged) || violations[1].ConstraintIRI != string(RuleOutOfDomainSubject) {
		t.Fatalf("expected a server-managed violation followed by an out-of-domain-subject violation, got %+v", violations)
	}
}
