// internal/acl/gate_test.go
//
// Unit-tests for the role gate's redirect state machine.
//
// Context
// -------
// Each case wires sqlmock behind the session and membership lookups and
// asserts the gate's verdict:
//
//   • allowed role        → Grant, no redirect
//   • disallowed role     → the caller's own default area
//   • no session cookie   → login page, no datastore traffic
//   • suspended-only rows → login page
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sailybaev/ai-lms-sub000/internal/session"
)

const sessionQuery = `SELECT s.token, u.email, s.expires_at FROM session s JOIN user u ON u.id = s.user_id WHERE s.token = ? AND s.expires_at > NOW() LIMIT 1`

func authedRequest(path, token string) *http.Request {
	r := httptest.NewRequest("GET", path, nil)
	r.Header.Set("Cookie", session.CookieName+"="+token)
	return r
}

func expectSession(mock sqlmock.Sqlmock, token, email string) {
	mock.ExpectQuery(regexp.QuoteMeta(sessionQuery)).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"token", "email", "expires_at"}).
			AddRow(token, email, time.Now().Add(time.Hour)))
}

func TestRequireOrgRole_Allowed(t *testing.T) {
	db, mock := newMockDB(t)

	expectSession(mock, "tok", "ada@org1.test")
	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("ada@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	grant, redirect := RequireOrgRole(context.Background(), db,
		authedRequest("/org1/admin/users", "tok"), "org1", RoleAdmin, RoleTeacher)

	if redirect != "" {
		t.Fatalf("redirect = %q, want none", redirect)
	}
	if grant.Role != RoleAdmin || grant.Email != "ada@org1.test" {
		t.Fatalf("grant = %+v", grant)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRequireOrgRole_MismatchGoesToOwnArea(t *testing.T) {
	db, mock := newMockDB(t)

	expectSession(mock, "tok", "stu@org1.test")
	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("stu@org1.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("student"))

	_, redirect := RequireOrgRole(context.Background(), db,
		authedRequest("/org1/admin", "tok"), "org1", RoleAdmin)

	if redirect != "/org1/student" {
		t.Fatalf("redirect = %q, want /org1/student", redirect)
	}
}

func TestRequireOrgRole_NoSession(t *testing.T) {
	db, mock := newMockDB(t)

	r := httptest.NewRequest("GET", "/org1/admin", nil)
	_, redirect := RequireOrgRole(context.Background(), db, r, "org1", RoleAdmin)

	if redirect != "/org1/login" {
		t.Fatalf("redirect = %q, want /org1/login", redirect)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("datastore touched without a session cookie: %v", err)
	}
}

func TestRequireOrgRole_NoMembership(t *testing.T) {
	db, mock := newMockDB(t)

	expectSession(mock, "tok", "out@elsewhere.test")
	mock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs("out@elsewhere.test", "org1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	_, redirect := RequireOrgRole(context.Background(), db,
		authedRequest("/org1/teacher", "tok"), "org1", RoleTeacher)

	if redirect != "/org1/login" {
		t.Fatalf("redirect = %q, want /org1/login", redirect)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	db, mock := newMockDB(t)

	expectSession(mock, "tok", "root@platform.test")
	mock.ExpectQuery(regexp.QuoteMeta(superQuery)).
		WithArgs("root@platform.test").
		WillReturnRows(sqlmock.NewRows([]string{"is_super_admin"}).AddRow(true))

	email, redirect := RequireSuperAdmin(context.Background(), db,
		authedRequest("/superadmin", "tok"))

	if redirect != "" || email != "root@platform.test" {
		t.Fatalf("got (%q, %q)", email, redirect)
	}
}

func TestRequireSuperAdmin_NoSession(t *testing.T) {
	db, _ := newMockDB(t)

	r := httptest.NewRequest("GET", "/superadmin", nil)
	_, redirect := RequireSuperAdmin(context.Background(), db, r)

	if redirect != "/login?callbackUrl=%2Fsuperadmin" {
		t.Fatalf("redirect = %q", redirect)
	}
}

func TestRequireSuperAdmin_NotFlagged(t *testing.T) {
	db, mock := newMockDB(t)

	expectSession(mock, "tok", "ada@org1.test")
	mock.ExpectQuery(regexp.QuoteMeta(superQuery)).
		WithArgs("ada@org1.test").
		WillReturnRows(sqlmock.NewRows([]string{"is_super_admin"}).AddRow(false))

	_, redirect := RequireSuperAdmin(context.Background(), db,
		authedRequest("/superadmin", "tok"))

	if redirect != "/" {
		t.Fatalf("redirect = %q, want /", redirect)
	}
}
