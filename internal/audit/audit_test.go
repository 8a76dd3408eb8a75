package audit

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store/memory"
)

func TestRecordAppendsActivityQuads(t *testing.T) {
	immutable := memory.NewImmutableStore()
	svc := New(immutable)
	id := rdf.InternalDataPrefix + "x"
	session := rdf.NewSession("trellis:session/s1", "http://example.org/webid", time.Now())

	if err := svc.Record(context.Background(), id, session, rdf.ActivityCreate, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lookup, err := immutable.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lookup.IsPresent() {
		t.Fatalf("expected audit entry to be present")
	}

	quads := lookup.Resource.Stream()
	foundGenerated := false
	for _, q := range quads {
		if q.Predicate.Value == provWasGeneratedBy && q.Subject.Value == id {
			foundGenerated = true
		}
	}
	if !foundGenerated {
		t.Fatalf("expected a wasGeneratedBy quad linking the resource to its activity, got %+v", quads)
	}
}

func TestRecordDoesNotPurgeOnSubsequentDeleteOfHeadState(t *testing.T) {
	immutable := memory.NewImmutableStore()
	svc := New(immutable)
	id := rdf.InternalDataPrefix + "x"
	session := rdf.NewSession("trellis:session/s1", "http://example.org/webid", time.Now())

	_ = svc.Record(context.Background(), id, session, rdf.ActivityCreate, time.Now())
	_ = svc.Record(context.Background(), id, session, rdf.ActivityDelete, time.Now())

	lookup, _ := immutable.Get(context.Background(), id)
	if !lookup.IsPresent() {
		t.Fatalf("expected audit trail to remain present after a delete activity")
	}
	if len(lookup.Resource.Stream()) < 10 {
		t.Fatalf("expected both activities' quads accumulated, got %d", len(lookup.Resource.Stream()))
	}
}
