package rdf

import (
	"testing"
	"time"
)

func TestLookupSentinelsCarryNoResource(t *testing.T) {
	if Missing.Resource != nil {
		t.Fatalf("expected Missing to carry no resource")
	}
	if Deleted.Resource != nil {
		t.Fatalf("expected Deleted to carry no resource")
	}
	if !Missing.IsMissing() || !Missing.Absent() {
		t.Fatalf("expected Missing.IsMissing and Absent to be true")
	}
	if !Deleted.IsDeleted() || !Deleted.Absent() {
		t.Fatalf("expected Deleted.IsDeleted and Absent to be true")
	}
}

func TestPresentIsNotAbsent(t *testing.T) {
	r := NewResource(Metadata{Identifier: InternalDataPrefix + "x"}, nil)
	l := Present(r)
	if l.Absent() {
		t.Fatalf("expected a present lookup to not be absent")
	}
}

func TestDefaultRevisionChangesWithModified(t *testing.T) {
	id := InternalDataPrefix + "x"
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)

	r0 := DefaultRevision(id, t0)
	r1 := DefaultRevision(id, t1)
	if r0 == r1 {
		t.Fatalf("expected revisions to differ when modified differs")
	}
}

func TestValidateIRIRejectsRelative(t *testing.T) {
	if err := ValidateIRI("not-a-full-iri"); err == nil {
		t.Fatalf("expected error for relative reference")
	}
	if err := ValidateIRI("http://example.org/a"); err != nil {
		t.Fatalf("unexpected error for absolute IRI: %v", err)
	}
}
