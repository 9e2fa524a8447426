// internal/acl/gate.go
//
// Role gate for protected pages.
//
// Context
// -------
// Handlers call the gate before any business logic.  The gate returns an
// ordinary value instead of writing the response itself: an empty redirect
// means access is granted, a non-empty redirect is where the outermost
// handler must send the caller (HTTP 307).  This keeps authorization free
// of exception-style control flow and makes the gate trivially testable.
//
// Redirect policy
// ---------------
//   • no session, or no active membership  → the organization's login page
//   • authenticated but role not allowed   → the caller's *own* default
//     area (/{slug}/{role}), never a bare forbidden page
//   • datastore failure                    → fail closed, login page
//
// Login pages are exempt from the gate entirely; the edge router passes
// them through before the gate ever runs, which is what prevents loops.

package acl

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sailybaev/ai-lms-sub000/internal/metrics"
	"github.com/sailybaev/ai-lms-sub000/internal/session"
)

// PlatformLoginPath is where callers with no session land for platform
// (non-organization) areas.
const PlatformLoginPath = "/login"

// Grant is a successful gate verdict.
type Grant struct {
	Email string
	Role  Role
}

// RequireOrgRole enforces an allowed-role set for one organization.  The
// returned redirect is empty exactly when the Grant is usable.
func RequireOrgRole(ctx context.Context, db *sqlx.DB, r *http.Request, slug string, allowed ...Role) (Grant, string) {
	login := "/" + slug + "/login"

	sess, err := session.Current(ctx, db, r)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			zap.L().Warn("session lookup failed, failing closed",
				zap.String("org", slug), zap.Error(err))
		}
		metrics.RedirectTotal.WithLabelValues("login").Inc()
		return Grant{}, login
	}

	role, err := RoleInOrg(ctx, db, sess.Email, slug)
	if err != nil {
		if !errors.Is(err, ErrNoMembership) {
			zap.L().Warn("membership lookup failed, failing closed",
				zap.String("org", slug), zap.String("email", sess.Email), zap.Error(err))
		}
		metrics.RedirectTotal.WithLabelValues("login").Inc()
		return Grant{}, login
	}

	for _, a := range allowed {
		if role == a {
			return Grant{Email: sess.Email, Role: role}, ""
		}
	}

	// Authorization mismatch: send the caller to their own area.
	metrics.RoleDeniedTotal.Inc()
	metrics.RedirectTotal.WithLabelValues("role_mismatch").Inc()
	return Grant{}, role.DefaultPath(slug)
}

// RequireSuperAdmin gates the platform super-admin area.  No session sends
// the caller to the platform login with a fixed callback; an authenticated
// non-super-admin lands on the platform root.
func RequireSuperAdmin(ctx context.Context, db *sqlx.DB, r *http.Request) (string, string) {
	sess, err := session.Current(ctx, db, r)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			zap.L().Warn("session lookup failed, failing closed", zap.Error(err))
		}
		metrics.RedirectTotal.WithLabelValues("superadmin").Inc()
		return "", PlatformLoginPath + "?callbackUrl=%2Fsuperadmin"
	}

	ok, err := IsPlatformSuperAdmin(ctx, db, sess.Email)
	if err != nil {
		zap.L().Warn("super-admin lookup failed, failing closed",
			zap.String("email", sess.Email), zap.Error(err))
		ok = false
	}
	if !ok {
		metrics.RedirectTotal.WithLabelValues("superadmin").Inc()
		return "", "/"
	}
	return sess.Email, ""
}
