// internal/gateway/gateway.go
//
// The multi-tenant edge router.
//
// Context
// -------
// Route() is the state machine every inbound request walks before any
// business logic:
//
//   1. Classify the path.  Bypass classes terminate here; static assets
//      and API traffic never pay for tenant or domain resolution.
//   2. Tenant-scoped paths: the organization's own login page always
//      passes through (this is what prevents redirect loops); anything
//      else needs at least a session cookie, otherwise the caller is sent
//      to /{slug}/login with the original path+query as callbackUrl.  The
//      probe is presence-only; role checks happen in the page layer gate.
//   3. Unscoped paths consult the Tenant Resolver on the Host header and
//      are rewritten onto the organization's path prefix when it matches.
//      Unknown hosts degrade to pass-through.
//
// Middleware() interprets the Decision exactly once.

package gateway

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/sailybaev/ai-lms-sub000/internal/metrics"
	"github.com/sailybaev/ai-lms-sub000/internal/routing"
	"github.com/sailybaev/ai-lms-sub000/internal/session"
	"github.com/sailybaev/ai-lms-sub000/internal/tenant"
)

// Edge owns the per-request routing decision.  It holds no mutable state;
// every call recomputes from the request and the resolver.
type Edge struct {
	resolver *tenant.Resolver
}

// New returns an Edge over the given resolver.
func New(resolver *tenant.Resolver) *Edge {
	return &Edge{resolver: resolver}
}

// Route computes the terminal decision for r.  It writes nothing.
func (e *Edge) Route(r *http.Request) Decision {
	cls := routing.Classify(r.URL.Path)

	if cls.Bypass() {
		return PassThrough("")
	}

	if cls.Kind == routing.KindTenantScoped {
		// The organization's login page is exempt unconditionally.
		if cls.Rest == "/login" {
			return PassThrough(cls.Slug)
		}
		if !session.HasCookie(r) {
			metrics.RedirectTotal.WithLabelValues("login").Inc()
			return RedirectTo(loginURL(cls.Slug, r))
		}
		return PassThrough(cls.Slug)
	}

	// No tenant prefix in the path: the host may still identify one.
	if slug := e.resolver.Resolve(r.Context(), r.Host); slug != "" {
		metrics.RewriteTotal.Inc()
		return RewriteTo(slug, "/"+slug+r.URL.Path)
	}
	return PassThrough("")
}

// loginURL builds /{slug}/login?callbackUrl=<escaped original path+query>.
func loginURL(slug string, r *http.Request) string {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return "/" + slug + "/login?callbackUrl=" + url.QueryEscape(target)
}

// Middleware wires the Edge in front of next and interprets its Decision.
// Rewrites preserve method, body, and query; redirects are 307 with an
// empty body.
func (e *Edge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := e.Route(r)

		switch d.Kind {
		case KindRedirect:
			zap.L().Debug("edge redirect",
				zap.String("path", r.URL.Path),
				zap.String("location", d.Location))
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
			return

		case KindRewrite:
			zap.L().Debug("edge rewrite",
				zap.String("host", r.Host),
				zap.String("from", r.URL.Path),
				zap.String("to", d.Path))
			r.URL.Path = d.Path
			r.RequestURI = r.URL.RequestURI()
		}

		if d.Org != "" {
			r = r.WithContext(WithOrg(r.Context(), d.Org))
		}
		next.ServeHTTP(w, r)
	})
}
