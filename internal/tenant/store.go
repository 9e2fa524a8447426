// internal/tenant/store.go
//
// Read-only organization store used by the edge.
//
// Context
// -------
// The gateway recomputes every routing decision from durable rows, so the
// store holds no cross-request cache.  It does coalesce concurrent
// identical lookups through singleflight: a burst of requests for the same
// unknown host costs one query, not N.  Results are not retained after the
// flight lands.
//
// Each flight runs under its own bounded context rather than the first
// caller's, so one cancelled request cannot fail the whole batch and a
// slow datastore cannot block the edge indefinitely.
package tenant

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

// lookupTimeout bounds a single resolution query.  A timeout folds into
// not-found at the call site, never into a blocked request.
const lookupTimeout = 2 * time.Second

// Store wraps the control-plane pool with flight coalescing.  Safe for
// concurrent use; construct with NewStore.
type Store struct {
	db  *sqlx.DB
	sfg singleflight.Group
}

// NewStore returns a Store over the shared control-plane pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for collaborators (session and membership
// lookups share the control-plane schema).
func (s *Store) DB() *sqlx.DB { return s.db }

// ByDomain returns the organization bound to host, coalescing concurrent
// callers for the same host into one query.
func (s *Store) ByDomain(ctx context.Context, host string) (*Record, error) {
	v, err, _ := s.sfg.Do("domain\x00"+host, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		return ByDomain(fctx, s.db, host)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// BySlug returns the live organization with the given slug, coalesced like
// ByDomain.
func (s *Store) BySlug(ctx context.Context, slug string) (*Record, error) {
	v, err, _ := s.sfg.Do("slug\x00"+slug, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		return BySlug(fctx, s.db, slug)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}
