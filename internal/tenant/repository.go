package tenant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when neither a domain binding nor a slug matches.
var ErrNotFound = errors.New("organization not found")

// AllActive returns every organization that is neither suspended nor
// deleted.  This helper is used by the super-admin dashboard and batch
// operations, not by the per-request resolution path.
func AllActive(db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT id, slug, name, suspended_at, deleted_at,
               created_at, updated_at
        FROM   organization
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL`
	var rows []Record
	if err := db.Select(&rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// BySlug fetches a single live organization by its slug.  The caller
// supplies a context so the lookup respects request deadlines.
func BySlug(ctx context.Context, db *sqlx.DB, slug string) (*Record, error) {
	const q = `
        SELECT id, slug, name, suspended_at, deleted_at,
               created_at, updated_at
        FROM   organization
        WHERE  slug = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ByDomain fetches the organization bound to a literal hostname.  A row in
// `org_domain` is an operator-verified binding, so a hit here is the
// high-trust resolution path.
func ByDomain(ctx context.Context, db *sqlx.DB, host string) (*Record, error) {
	const q = `
        SELECT o.id, o.slug, o.name, o.suspended_at, o.deleted_at,
               o.created_at, o.updated_at
        FROM   organization o
        JOIN   org_domain d ON d.org_id = o.id
        WHERE  d.domain = ?
          AND  o.suspended_at IS NULL
          AND  o.deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, host); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
