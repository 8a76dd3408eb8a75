package memory

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

const testID = rdf.InternalDataPrefix + "x"

func TestMutableStoreGetMissingBeforeCreate(t *testing.T) {
	s := NewMutableStore()
	lookup, err := s.Get(context.Background(), testID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lookup.IsMissing() {
		t.Fatalf("expected Missing before any write")
	}
}

func TestMutableStoreReplaceThenGet(t *testing.T) {
	s := NewMutableStore()
	ctx := context.Background()

	err := s.Replace(ctx, rdf.Metadata{Identifier: testID, InteractionModel: rdf.RDFSource}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lookup, err := s.Get(ctx, testID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lookup.IsPresent() {
		t.Fatalf("expected Present after replace")
	}
	if lookup.Resource.Revision == "" {
		t.Fatalf("expected a non-empty revision to be assigned")
	}
}

func TestMutableStoreReplaceChangesRevision(t *testing.T) {
	s := NewMutableStore()
	ctx := context.Background()
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { tick = tick.Add(time.Second); return tick }

	_ = s.Replace(ctx, rdf.Metadata{Identifier: testID}, nil)
	first, _ := s.Get(ctx, testID)

	_ = s.Replace(ctx, rdf.Metadata{Identifier: testID}, nil)
	second, _ := s.Get(ctx, testID)

	if first.Resource.Revision == second.Resource.Revision {
		t.Fatalf("expected revision to change on replace")
	}
}

func TestMutableStoreReplaceRevisionMismatchConflicts(t *testing.T) {
	s := NewMutableStore()
	ctx := context.Background()

	_ = s.Replace(ctx, rdf.Metadata{Identifier: testID}, nil)

	err := s.Replace(ctx, rdf.Metadata{Identifier: testID, Revision: "not-the-real-one"}, nil)
	if ldperrors.CodeOf(err) != ldperrors.StorageConflict {
		t.Fatalf("expected StorageConflict, got %v", err)
	}
}

func TestMutableStoreDeleteThenGetIsDeleted(t *testing.T) {
	s := NewMutableStore()
	ctx := context.Background()

	_ = s.Replace(ctx, rdf.Metadata{Identifier: testID}, nil)
	if err := s.Delete(ctx, rdf.Metadata{Identifier: testID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lookup, _ := s.Get(ctx, testID)
	if !lookup.IsDeleted() {
		t.Fatalf("expected Deleted after delete")
	}
}

func TestMutableStoreTouchAdvancesModifiedWithoutChangingContent(t *testing.T) {
	s := NewMutableStore()
	ctx := context.Background()

	graph := []rdf.Quad{{Subject: rdf.NewIRITerm(testID)}}
	_ = s.Replace(ctx, rdf.Metadata{Identifier: testID}, graph)
	before, _ := s.Get(ctx, testID)

	if err := s.Touch(ctx, testID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, _ := s.Get(ctx, testID)

	if before.Resource.Revision == after.Resource.Revision {
		t.Fatalf("expected touch to change the revision")
	}
	if len(after.Resource.Stream()) != len(graph) {
		t.Fatalf("expected touch to leave content unchanged")
	}
}
