// internal/acl/store_test.go
//
// Unit-tests for acl store helpers using sqlmock.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

const (
	roleQuery  = `SELECT m.role FROM org_membership m JOIN user u ON u.id = m.user_id JOIN organization o ON o.id = m.org_id WHERE u.email = ? AND o.slug = ? AND m.status = 'active'`
	superQuery = `SELECT is_super_admin FROM user WHERE email = ? LIMIT 1`
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestRoleInOrg_SingleActive(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("ada@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("teacher"))

	role, err := RoleInOrg(context.Background(), db, "ada@org1.test", "org1")
	if err != nil {
		t.Fatalf("RoleInOrg error: %v", err)
	}
	if role != RoleTeacher {
		t.Fatalf("role = %q, want teacher", role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRoleInOrg_SuspendedOnlyIsInvisible(t *testing.T) {
	db, mock := newMockDB(t)

	// The status filter lives in SQL, so a suspended-only user simply gets
	// zero rows back.
	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("bob@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	if _, err := RoleInOrg(context.Background(), db, "bob@org1.test", "org1"); !errors.Is(err, ErrNoMembership) {
		t.Fatalf("err = %v, want ErrNoMembership", err)
	}
}

func TestRoleInOrg_MultipleActiveFailsClosed(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("eve@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin").AddRow("student"))

	if _, err := RoleInOrg(context.Background(), db, "eve@org1.test", "org1"); !errors.Is(err, ErrNoMembership) {
		t.Fatalf("err = %v, want ErrNoMembership (never an arbitrary pick)", err)
	}
}

func TestRoleInOrg_UnknownRoleValue(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("ada@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("janitor"))

	if _, err := RoleInOrg(context.Background(), db, "ada@org1.test", "org1"); !errors.Is(err, ErrNoMembership) {
		t.Fatalf("err = %v, want ErrNoMembership", err)
	}
}

func TestRoleInOrg_EmptySlug(t *testing.T) {
	db, mock := newMockDB(t)

	// No query may run for an unresolved organization.
	if _, err := RoleInOrg(context.Background(), db, "ada@org1.test", ""); !errors.Is(err, ErrNoMembership) {
		t.Fatalf("err = %v, want ErrNoMembership", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("datastore touched for empty slug: %v", err)
	}
}

func TestIsPlatformSuperAdmin(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(superQuery)).
		WithArgs("root@platform.test").
		WillReturnRows(sqlmock.NewRows([]string{"is_super_admin"}).AddRow(true))

	ok, err := IsPlatformSuperAdmin(context.Background(), db, "root@platform.test")
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}
}

func TestIsPlatformSuperAdmin_MissingUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(superQuery)).
		WithArgs("ghost@nowhere.test").
		WillReturnRows(sqlmock.NewRows([]string{"is_super_admin"}))

	ok, err := IsPlatformSuperAdmin(context.Background(), db, "ghost@nowhere.test")
	if err != nil {
		t.Fatalf("missing user must not error: %v", err)
	}
	if ok {
		t.Fatal("missing user reported as super-admin")
	}
}
