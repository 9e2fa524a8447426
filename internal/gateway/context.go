// internal/gateway/context.go
//
// Request-context plumbing for the resolved organization.
//
// The edge stores the slug it resolved (from the path prefix or the Host
// header) so downstream handlers never re-derive it.  Absence means the
// request is platform-scoped.

package gateway

import "context"

// orgKey is unexported to avoid context-key collisions.
type orgKey struct{}

// WithOrg returns a new context carrying the resolved organization slug.
func WithOrg(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, orgKey{}, slug)
}

// OrgFromContext extracts the slug stored by the edge.  ok == false when
// the request never passed through tenant resolution.
func OrgFromContext(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(orgKey{}).(string)
	return slug, ok && slug != ""
}
