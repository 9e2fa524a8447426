// internal/tenant/resolver.go
//
// Two-tier hostname resolution.
//
// Context
// -------
// A hostname maps to at most one organization:
//
//  1. Exact lookup against `org_domain` (operator-verified bindings).
//  2. Subdomain fallback: hosts with more than two labels try their first
//     label as a slug, except the literal "www".
//
// Anything else resolves to nothing, deliberately fail-open: unrecognized
// domains degrade to ordinary pass-through instead of erroring, which is
// what local development and half-configured DNS need.  Lookup errors are
// logged, counted, and folded into not-found; resolution never fails the
// request it runs in.
//
// Local hostnames (localhost, 127.0.0.1, plus whatever config adds) skip
// resolution entirely and never touch the datastore.

package tenant

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sailybaev/ai-lms-sub000/internal/metrics"
)

// Resolver maps Host headers to organization slugs.
type Resolver struct {
	store      *Store
	localHosts map[string]struct{}
}

// NewResolver builds a Resolver.  localHosts entries are compared after
// port stripping and lowercasing.
func NewResolver(store *Store, localHosts []string) *Resolver {
	set := make(map[string]struct{}, len(localHosts))
	for _, h := range localHosts {
		set[strings.ToLower(h)] = struct{}{}
	}
	return &Resolver{store: store, localHosts: set}
}

// Resolve returns the slug for host, or "" when the host does not identify
// an organization.  It never returns an error; see the package comment for
// the fold-to-not-found contract.
func (r *Resolver) Resolve(ctx context.Context, host string) string {
	host = strings.ToLower(stripPort(host))
	if host == "" {
		return ""
	}
	if _, ok := r.localHosts[host]; ok {
		return ""
	}

	metrics.DomainLookupTotal.Inc()

	// Tier 1: exact domain binding.
	rec, err := r.store.ByDomain(ctx, host)
	if err == nil {
		return rec.Slug
	}
	if !errors.Is(err, ErrNotFound) {
		metrics.DomainLookupErrorsTotal.Inc()
		zap.L().Warn("domain binding lookup failed",
			zap.String("host", host), zap.Error(err))
	}

	// Tier 2: subdomain heuristic.  Needs at least three labels, and the
	// first must not be "www".
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return ""
	}
	sub := labels[0]
	if sub == "" || sub == "www" {
		return ""
	}

	rec, err = r.store.BySlug(ctx, sub)
	if err == nil {
		return rec.Slug
	}
	if !errors.Is(err, ErrNotFound) {
		metrics.DomainLookupErrorsTotal.Inc()
		zap.L().Warn("subdomain slug lookup failed",
			zap.String("host", host), zap.String("slug", sub), zap.Error(err))
	}
	return ""
}

// stripPort removes the :port suffix from a Host header when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
