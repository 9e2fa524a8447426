// internal/tenant/resolver_test.go
//
// Unit-tests for two-tier hostname resolution using sqlmock.
//
// Context
// -------
// The resolver's contract has four load-bearing behaviours:
//
//   • an exact domain binding wins regardless of subdomain structure,
//   • the subdomain fallback only fires for >2 labels and never for "www",
//   • local hostnames never touch the datastore,
//   • lookup errors fold into "", not into request failures.
//
// Run: go test ./internal/tenant -v

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

const (
	domainQuery = `SELECT o.id, o.slug, o.name, o.suspended_at, o.deleted_at, o.created_at, o.updated_at FROM organization o JOIN org_domain d ON d.org_id = o.id WHERE d.domain = ? AND o.suspended_at IS NULL AND o.deleted_at IS NULL LIMIT 1`
	slugQuery   = `SELECT id, slug, name, suspended_at, deleted_at, created_at, updated_at FROM organization WHERE slug = ? AND suspended_at IS NULL AND deleted_at IS NULL LIMIT 1`
)

func newMockResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	db := sqlx.NewDb(raw, "sqlmock")
	store := NewStore(db)
	return NewResolver(store, []string{"localhost", "127.0.0.1"}), mock
}

func orgRows(slug string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "slug", "name", "suspended_at", "deleted_at", "created_at", "updated_at",
	}).AddRow(1, slug, "Org "+slug, nil, nil, now, now)
}

func TestResolve_ExactBindingWins(t *testing.T) {
	r, mock := newMockResolver(t)

	// "sub.example.com" has an exact binding to "acme"; the apparent
	// subdomain must not be consulted.
	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("sub.example.com").
		WillReturnRows(orgRows("acme"))

	if got := r.Resolve(context.Background(), "sub.example.com"); got != "acme" {
		t.Fatalf("Resolve = %q, want %q", got, "acme")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_SubdomainFallback(t *testing.T) {
	r, mock := newMockResolver(t)

	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("org1.lms.example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(slugQuery)).
		WithArgs("org1").
		WillReturnRows(orgRows("org1"))

	if got := r.Resolve(context.Background(), "org1.lms.example.com"); got != "org1" {
		t.Fatalf("Resolve = %q, want %q", got, "org1")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_SubdomainUnknownSlug(t *testing.T) {
	r, mock := newMockResolver(t)

	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("nobody.lms.example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(slugQuery)).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	if got := r.Resolve(context.Background(), "nobody.lms.example.com"); got != "" {
		t.Fatalf("Resolve = %q, want empty", got)
	}
}

func TestResolve_WWWNeverFallsBack(t *testing.T) {
	r, mock := newMockResolver(t)

	// Only the exact lookup runs; no slug query may follow for "www".
	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("www.example.com").
		WillReturnError(sql.ErrNoRows)

	if got := r.Resolve(context.Background(), "www.example.com"); got != "" {
		t.Fatalf("Resolve = %q, want empty", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_TwoLabelHostNoFallback(t *testing.T) {
	r, mock := newMockResolver(t)

	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("example.com").
		WillReturnError(sql.ErrNoRows)

	if got := r.Resolve(context.Background(), "example.com"); got != "" {
		t.Fatalf("Resolve = %q, want empty", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_LocalHostsSkipDatastore(t *testing.T) {
	r, mock := newMockResolver(t)

	// No expectations registered: any query would fail the test.
	for _, host := range []string{"localhost", "localhost:3000", "127.0.0.1", "127.0.0.1:8080"} {
		if got := r.Resolve(context.Background(), host); got != "" {
			t.Errorf("Resolve(%q) = %q, want empty", host, got)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("datastore touched for local host: %v", err)
	}
}

func TestResolve_ErrorFoldsToEmpty(t *testing.T) {
	r, mock := newMockResolver(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(domainQuery)).
		WithArgs("sub.example.com").
		WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(slugQuery)).
		WithArgs("sub").
		WillReturnError(boom)

	if got := r.Resolve(context.Background(), "sub.example.com"); got != "" {
		t.Fatalf("Resolve = %q, want empty on datastore error", got)
	}
}

func TestStoreSharesPool(t *testing.T) {
	raw, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()

	db := sqlx.NewDb(raw, "sqlmock")
	if NewStore(db).DB() != db {
		t.Fatal("DB() must hand back the pool the store was built over")
	}
}
