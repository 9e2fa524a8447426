// internal/session/session.go
//
// Server-side session lookup and cookie lifecycle.
//
// Context
// -------
// Sessions are opaque, time-bounded rows in the `session` table; the token
// is an unstructured secret minted at login.  Current() is the single
// authoritative check: token from either cookie form, joined to the user
// row, with expiry enforced in SQL so the gateway never reasons about
// clocks.  Everything upstream of Current() treats the cookie as a boolean
// presence signal only (see probe.go).
//
// LoginUser and LogoutUser own the cookie write path so handlers never
// hand-build Set-Cookie headers.  Over TLS the __Secure- prefixed name is
// used; plain HTTP (dev) falls back to the unprefixed name.

package session

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNoSession is returned when no live session matches the request.
var ErrNoSession = errors.New("no active session")

// Lifetime is how long a freshly minted session stays valid.
const Lifetime = 14 * 24 * time.Hour

// Record is the resolved identity behind a session token.
type Record struct {
	Token     string    `db:"token"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Current resolves the request's session against the datastore.  No side
// effects: expired rows are left for the reaper, not deleted here.  A
// missing cookie, an unknown token, and an expired row all fold into
// ErrNoSession.
func Current(ctx context.Context, db *sqlx.DB, r *http.Request) (*Record, error) {
	token, ok := Token(r)
	if !ok {
		return nil, ErrNoSession
	}

	const q = `
        SELECT s.token, u.email, s.expires_at
        FROM   session s
        JOIN   user u ON u.id = s.user_id
        WHERE  s.token = ?
          AND  s.expires_at > NOW()
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &rec, nil
}

// LoginUser sets the session cookie carrying token.  Callers invoke this
// after credential verification succeeds and the session row exists.
func LoginUser(w http.ResponseWriter, r *http.Request, token string) {
	name := CookieName
	if r.TLS != nil {
		name = SecureCookieName
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(Lifetime),
	})
}

// LogoutUser clears both cookie forms.
func LogoutUser(w http.ResponseWriter, _ *http.Request) {
	for _, name := range []string{CookieName, SecureCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
