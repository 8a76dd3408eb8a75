package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

func newMutableStoreForTest(t *testing.T) (*MutableStore, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })

	store := NewMutableStore(&DB{DB: sqlx.NewDb(rawDB, "postgres")})
	store.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestMutableStoreGetReturnsMissingOnNoRows(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	cols := []string{"identifier", "interaction_model", "container", "membership_resource",
		"member_relation", "member_of_relation", "inserted_content_relation", "revision", "modified", "tombstoned", "quads"}
	mock.ExpectQuery("SELECT identifier").
		WithArgs("https://example.org/r1").
		WillReturnRows(sqlmock.NewRows(cols))

	lookup, err := store.Get(context.Background(), "https://example.org/r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !lookup.IsMissing() {
		t.Fatalf("expected missing, got %v", lookup.Kind)
	}
}

func TestMutableStoreGetReturnsDeletedWhenTombstoned(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	cols := []string{"identifier", "interaction_model", "container", "membership_resource",
		"member_relation", "member_of_relation", "inserted_content_relation", "revision", "modified", "tombstoned", "quads"}
	rows := sqlmock.NewRows(cols).AddRow("https://example.org/r1", "RDFSource", "", "", "", "", "", "rev-1", store.Now(), true, []byte("[]"))
	mock.ExpectQuery("SELECT identifier").WithArgs("https://example.org/r1").WillReturnRows(rows)

	lookup, err := store.Get(context.Background(), "https://example.org/r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !lookup.IsDeleted() {
		t.Fatalf("expected deleted, got %v", lookup.Kind)
	}
}

func TestMutableStoreReplaceInsertsWithoutRevisionCheck(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	mock.ExpectExec("INSERT INTO ldp_resources").WillReturnResult(sqlmock.NewResult(1, 1))

	metadata := rdf.Metadata{Identifier: "https://example.org/r1"}
	err := store.Replace(context.Background(), metadata, []rdf.Quad{})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMutableStoreReplaceRejectsMismatchedRevision(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	cols := []string{"revision", "tombstoned"}
	mock.ExpectQuery("SELECT revision, tombstoned").
		WithArgs("https://example.org/r1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("rev-old", false))

	metadata := rdf.Metadata{Identifier: "https://example.org/r1", Revision: "rev-stale"}
	err := store.Replace(context.Background(), metadata, nil)
	if !ldperrors.Is(err, ldperrors.StorageConflict) {
		t.Fatalf("expected storage conflict, got %v", err)
	}
}

func TestMutableStoreTouchReturnsNotFoundWhenMissing(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	mock.ExpectExec("UPDATE ldp_resources").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Touch(context.Background(), "https://example.org/missing")
	if !ldperrors.Is(err, ldperrors.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMutableStoreScanReturnsAllIdentifiers(t *testing.T) {
	store, mock := newMutableStoreForTest(t)

	mock.ExpectQuery("SELECT identifier FROM ldp_resources").
		WillReturnRows(sqlmock.NewRows([]string{"identifier"}).
			AddRow("https://example.org/a").
			AddRow("https://example.org/b"))

	ch, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var got []string
	for id := range ch {
		got = append(got, id)
	}
	if len(got) != 2 || got[0] != "https://example.org/a" || got[1] != "https://example.org/b" {
		t.Fatalf("unexpected scan result: %v", got)
	}
}
