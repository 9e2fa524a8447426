// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/sailybaev/ai-lms-sub000/internal/routing"
	"github.com/sailybaev/ai-lms-sub000/internal/tenant"
)

// ForceHTTPS wraps h.  If the request is plain HTTP, the host is not a
// local development host, and the host carries a verified domain binding,
// the wrapper issues a 308 Permanent Redirect to the HTTPS version of the
// same URL.  Otherwise it calls the next handler unchanged.
//
// Only bound hosts are upgraded: redirecting arbitrary Host headers to
// HTTPS would let a spoofed header bounce clients around.
func ForceHTTPS(store *tenant.Store, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := stripPort(r.Host)

		// Already HTTPS or dev host → continue.
		if r.TLS != nil || host == "localhost" || host == "127.0.0.1" {
			h.ServeHTTP(w, r)
			return
		}

		// Static assets and API calls never consult the datastore, here
		// or anywhere downstream; the edge serves them as addressed.
		if routing.Classify(r.URL.Path).Bypass() {
			h.ServeHTTP(w, r)
			return
		}

		if _, err := store.ByDomain(r.Context(), host); err == nil {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
			return
		}

		// Unknown host → keep normal flow (likely pass-through later).
		h.ServeHTTP(w, r)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
