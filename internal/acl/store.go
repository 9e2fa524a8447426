// internal/acl/store.go
//
// Query helpers for membership-based access control.
//
// Context
// -------
// The platform's authorization model lives in the control-plane database:
//
//	user           (id PK, email, name, is_super_admin)
//	organization   (id PK, slug, …)
//	org_membership (org_id, user_id, role, status)
//
// The gate needs fast answers to two questions:
//  1. Is this user a platform super-admin?      → IsPlatformSuperAdmin()
//  2. What is their role inside organization S? → RoleInOrg()
//
// These helpers accept the shared *sqlx.DB and perform simple
// parameterised queries.  They are thin; every request recomputes its
// answers from durable rows.
//
// Invariant
// ---------
// At most one *active* membership exists per (organization, user) pair.
// Zero active rows, suspended-only rows, and the malformed multiple-active
// case all collapse to ErrNoMembership: the store never picks a row
// arbitrarily.

package acl

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNoMembership is returned when no single active membership determines
// a role.
var ErrNoMembership = errors.New("no active membership")

// IsPlatformSuperAdmin returns the stored flag for email.  A missing user
// yields false, never an error.
func IsPlatformSuperAdmin(ctx context.Context, db *sqlx.DB, email string) (bool, error) {
	const q = `SELECT is_super_admin FROM user WHERE email = ? LIMIT 1`

	var flag bool
	if err := db.GetContext(ctx, &flag, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return flag, nil
}

// RoleInOrg resolves email's role inside the organization with the given
// slug.  Only status = 'active' rows count; suspended memberships are
// invisible even when they are the only rows for the pair.
func RoleInOrg(ctx context.Context, db *sqlx.DB, email, slug string) (Role, error) {
	if slug == "" {
		return "", ErrNoMembership
	}

	const q = `SELECT m.role
                 FROM org_membership m
                 JOIN user u         ON u.id = m.user_id
                 JOIN organization o ON o.id = m.org_id
                WHERE u.email = ? AND o.slug = ? AND m.status = 'active'`

	var roles []string
	if err := db.SelectContext(ctx, &roles, q, email, slug); err != nil {
		return "", err
	}

	switch len(roles) {
	case 0:
		return "", ErrNoMembership
	case 1:
		role := Role(roles[0])
		if !role.Valid() {
			zap.L().Warn("membership row carries unknown role",
				zap.String("email", email), zap.String("org", slug),
				zap.String("role", roles[0]))
			return "", ErrNoMembership
		}
		return role, nil
	default:
		// Violates the one-active-membership invariant.  Conservative
		// answer: no access, and loud enough for operators to notice.
		zap.L().Error("multiple active memberships for one (org, user) pair",
			zap.String("email", email), zap.String("org", slug),
			zap.Int("rows", len(roles)))
		return "", ErrNoMembership
	}
}
