package resource

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/audit"
	"github.com/trellis-ldp/ldpcore/internal/constraint"
	"github.com/trellis-ldp/ldpcore/internal/event"
	"github.com/trellis-ldp/ldpcore/internal/memento"
	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/skolem"
	"github.com/trellis-ldp/ldpcore/internal/store/memory"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

func newTestService() *Service {
	mutable := memory.NewMutableStore()
	immutable := memory.NewImmutableStore()
	validator := constraint.New(rdf.InternalDataPrefix)
	auditSvc := audit.New(immutable)
	mementoSvc := memento.New(memory.NewMementoStore(), nil, metrics.Noop{})
	eventSvc := event.New(event.NewInProcessBus(), nil, metrics.Noop{})
	ids := skolem.New(0, 2)
	return New(mutable, immutable, validator, auditSvc, mementoSvc, eventSvc, ids, nil, metrics.Noop{})
}

func testSession() *rdf.Session {
	return rdf.NewSession(rdf.InternalSessionPrefix+"s1", "http://example.org/webid", time.Now())
}

// TestCreateThenRead is scenario S1.
func TestCreateThenRead(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := rdf.InternalDataPrefix + "x"

	created, err := svc.Create(ctx, testSession(), rdf.Metadata{Identifier: id, InteractionModel: rdf.BasicContainer}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.InteractionModel != rdf.BasicContainer {
		t.Fatalf("expected BasicContainer, got %v", created.InteractionModel)
	}

	lookup, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lookup.IsPresent() {
		t.Fatalf("expected Present")
	}

	managed := rdf.NewQuadSet(lookup.Resource.Stream()...).InGraph(rdf.GraphServerManaged)
	if len(managed) != 1 {
		t.Fatalf("expected exactly one server-managed quad, got %+v", managed)
	}
	want := rdf.Quad{
		GraphName: rdf.NewIRITerm(rdf.GraphServerManaged),
		Subject:   rdf.NewIRITerm(id),
		Predicate: rdf.NewIRITerm(rdf.RDFType),
		Object:    rdf.NewIRITerm(rdf.PrefixLDP + "BasicContainer"),
	}
	if managed[0] != want {
		t.Fatalf("expected %+v, got %+v", want, managed[0])
	}
}

func TestReplaceChangesRevisionAndModified(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := rdf.InternalDataPrefix + "x"
	session := testSession()

	_, err := svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := svc.Get(ctx, id)

	title := rdf.Quad{Subject: rdf.NewIRITerm(id), Predicate: rdf.NewIRITerm("http://purl.org/dc/elements/1.1/title"), Object: rdf.NewLiteralTerm("T", rdf.XSDString, "")}
	_, err = svc.Replace(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, []rdf.Quad{title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := svc.Get(ctx, id)

	if first.Resource.Revision == second.Resource.Revision {
		t.Fatalf("expected revision to change on replace")
	}
	if !second.Resource.Modified.After(first.Resource.Modified) && second.Resource.Modified != first.Resource.Modified {
		t.Fatalf("expected modified to be monotonically non-decreasing")
	}
}

// TestSPARQLLikePatchAddsTriplesAndAdvancesModified is scenario S2 (the
// SPARQL-Update parsing itself lives in the RDF I/O subsystem; this
// exercises the resulting Replace call with the patched graph).
func TestSPARQLLikePatchAddsTriplesAndAdvancesModified(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := rdf.InternalDataPrefix + "x"
	session := testSession()

	title := rdf.Quad{Subject: rdf.NewIRITerm(id), Predicate: rdf.NewIRITerm("http://purl.org/dc/elements/1.1/title"), Object: rdf.NewLiteralTerm("T", rdf.XSDString, "")}
	_, err := svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, []rdf.Quad{title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := svc.Get(ctx, id)

	description := rdf.Quad{Subject: rdf.NewIRITerm(id), Predicate: rdf.NewIRITerm("http://purl.org/dc/elements/1.1/description"), Object: rdf.NewLiteralTerm("D", rdf.XSDString, "")}
	_, err = svc.Replace(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, []rdf.Quad{title, description})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, _ := svc.Get(ctx, id)

	userGraph := rdf.NewQuadSet(after.Resource.Stream()...)
	if !userGraph.Contains(title) || !userGraph.Contains(description) {
		t.Fatalf("expected both title and description present, got %+v", after.Resource.Stream())
	}
	if !after.Resource.Modified.After(before.Resource.Modified) {
		t.Fatalf("expected strictly greater modified after patch")
	}
}

// TestDirectContainerMembership is scenario S3.
func TestDirectContainerMembership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	session := testSession()

	containerID := rdf.InternalDataPrefix + "c"
	memberResourceID := rdf.InternalDataPrefix + "m"
	childID := rdf.InternalDataPrefix + "r"

	if _, err := svc.Create(ctx, session, rdf.Metadata{Identifier: memberResourceID, InteractionModel: rdf.RDFSource}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	containerGraph := []rdf.Quad{
		{Subject: rdf.NewIRITerm(containerID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#membershipResource"), Object: rdf.NewIRITerm(memberResourceID)},
		{Subject: rdf.NewIRITerm(containerID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#hasMemberRelation"), Object: rdf.NewIRITerm("http://www.w3.org/ns/ldp#member")},
	}
	if _, err := svc.Create(ctx, session, rdf.Metadata{
		Identifier: containerID, InteractionModel: rdf.DirectContainer,
		MembershipResource: memberResourceID, MemberRelation: "http://www.w3.org/ns/ldp#member",
	}, containerGraph); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(ctx, session, rdf.Metadata{Identifier: childID, InteractionModel: rdf.RDFSource, Container: containerID}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	afterCreate, _ := svc.Get(ctx, memberResourceID)
	want := rdf.Quad{GraphName: rdf.NewIRITerm(rdf.GraphServerManaged), Subject: rdf.NewIRITerm(memberResourceID), Predicate: rdf.NewIRITerm("http://www.w3.org/ns/ldp#member"), Object: rdf.NewIRITerm(childID)}
	if !rdf.NewQuadSet(afterCreate.Resource.Stream()...).Contains(want) {
		t.Fatalf("expected membership triple after create, got %+v", afterCreate.Resource.Stream())
	}
	modifiedAfterCreate := afterCreate.Resource.Modified

	if err := svc.Delete(ctx, session, rdf.Metadata{Identifier: childID, Container: containerID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	afterDelete, _ := svc.Get(ctx, memberResourceID)
	if rdf.NewQuadSet(afterDelete.Resource.Stream()...).Contains(want) {
		t.Fatalf("expected membership triple to be retracted after delete")
	}
	if !afterDelete.Resource.Modified.After(modifiedAfterCreate) {
		t.Fatalf("expected M.modified to advance a second time after delete")
	}
}

func TestDeleteThenGetIsMissingOrDeleted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	session := testSession()
	id := rdf.InternalDataPrefix + "x"

	_, _ = svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, nil)
	if err := svc.Delete(ctx, session, rdf.Metadata{Identifier: id}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lookup, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookup.IsPresent() {
		t.Fatalf("expected Missing or Deleted, got Present")
	}
}

func TestCreateOverExistingFailsWithStorageConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	session := testSession()
	id := rdf.InternalDataPrefix + "x"

	_, _ = svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, nil)
	_, err := svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.RDFSource}, nil)
	if err == nil {
		t.Fatalf("expected an error creating over an existing resource")
	}
}

func TestReplaceRejectsUserSuppliedContainment(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	session := testSession()
	id := rdf.InternalDataPrefix + "x"

	badGraph := []rdf.Quad{{Subject: rdf.NewIRITerm(id), Predicate: rdf.NewIRITerm(rdf.LDPContains), Object: rdf.NewIRITerm(id + "/child")}}
	_, err := svc.Create(ctx, session, rdf.Metadata{Identifier: id, InteractionModel: rdf.BasicContainer}, badGraph)
	if err == nil {
		t.Fatalf("expected a constraint violation error")
	}
}
