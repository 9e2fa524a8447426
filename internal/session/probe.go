// internal/session/probe.go
//
// Cheap session-cookie presence check.
//
// Context
// -------
// The edge must not pay a datastore round trip per request just to decide
// whether to redirect to a login page.  The probe only asks: does the
// Cookie header carry one of the two recognized session-cookie names?  No
// decoding, no verification.  Full verification happens exactly once, in
// Current(), when a page or API handler actually needs the caller's
// identity.

package session

import "net/http"

const (
	// CookieName is the plain-transport session cookie.
	CookieName = "lms_session"
	// SecureCookieName is the HTTPS-only form; browsers enforce the
	// __Secure- prefix semantics.
	SecureCookieName = "__Secure-lms_session"
)

// HasCookie reports whether either recognized session cookie is present
// and non-empty.  A true result is a routing hint, not an authentication
// verdict.
func HasCookie(r *http.Request) bool {
	_, ok := Token(r)
	return ok
}

// Token returns the raw session token, preferring the secure-prefixed
// cookie when both are present.
func Token(r *http.Request) (string, bool) {
	if c, err := r.Cookie(SecureCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
