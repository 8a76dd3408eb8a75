package memento

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store/memory"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

// TestMementoDatetimeLookup is scenario S5.
func TestMementoDatetimeLookup(t *testing.T) {
	mementoStore := memory.NewMementoStore()
	svc := New(mementoStore, nil, metrics.Noop{})
	ctx := context.Background()
	id := rdf.InternalDataPrefix + "x"

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	r0 := rdf.NewResource(rdf.Metadata{Identifier: id}, rdf.NewQuadSet(rdf.Quad{Subject: rdf.NewIRITerm("urn:t0")}))
	r1 := rdf.NewResource(rdf.Metadata{Identifier: id}, rdf.NewQuadSet(rdf.Quad{Subject: rdf.NewIRITerm("urn:t1")}))

	if err := svc.Put(ctx, r0, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Put(ctx, r1, t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	atEps, err := svc.Get(ctx, id, t0.Add(time.Minute))
	if err != nil || !atEps.IsPresent() || atEps.Resource.Stream()[0].Subject.Value != "urn:t0" {
		t.Fatalf("expected t0 state, got %+v, err=%v", atEps, err)
	}

	afterPatch, err := svc.Get(ctx, id, t1.Add(time.Minute))
	if err != nil || !afterPatch.IsPresent() || afterPatch.Resource.Stream()[0].Subject.Value != "urn:t1" {
		t.Fatalf("expected t1 state, got %+v, err=%v", afterPatch, err)
	}

	before, err := svc.Get(ctx, id, t0.Add(-time.Minute))
	if err != nil || !before.IsMissing() {
		t.Fatalf("expected Missing before earliest memento, got %+v, err=%v", before, err)
	}
}
