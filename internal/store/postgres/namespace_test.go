package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newNamespaceServiceForTest(t *testing.T) (*NamespaceService, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })
	return NewNamespaceService(&DB{DB: sqlx.NewDb(rawDB, "postgres")}), mock
}

func TestNamespaceServiceGetNamespaces(t *testing.T) {
	service, mock := newNamespaceServiceForTest(t)
	mock.ExpectQuery("SELECT prefix, uri").
		WillReturnRows(sqlmock.NewRows([]string{"prefix", "uri"}).
			AddRow("ldp", "http://www.w3.org/ns/ldp#"))

	ns, err := service.GetNamespaces(context.Background())
	if err != nil {
		t.Fatalf("get namespaces: %v", err)
	}
	if ns["ldp"] != "http://www.w3.org/ns/ldp#" {
		t.Fatalf("unexpected namespaces: %v", ns)
	}
}

func TestNamespaceServiceSetPrefixReportsNewVsExisting(t *testing.T) {
	service, mock := newNamespaceServiceForTest(t)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("ex").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO ldp_namespaces").WillReturnResult(sqlmock.NewResult(1, 1))

	isNew, err := service.SetPrefix(context.Background(), "ex", "https://example.org/")
	if err != nil {
		t.Fatalf("set prefix: %v", err)
	}
	if !isNew {
		t.Fatalf("expected new prefix")
	}
}
