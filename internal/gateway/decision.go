// internal/gateway/decision.go
//
// The edge verdict type.
//
// Context
// -------
// Routing logic returns a Decision instead of writing to the
// ResponseWriter or panicking a navigation signal through the stack.  The
// outermost handler interprets it exactly once: pass the request through,
// rewrite its path in place, or answer with a 307.  Keeping the verdict a
// plain value is what makes the router a pure function of (request
// metadata, datastore handle).

package gateway

// Kind tags a Decision.
type Kind uint8

const (
	KindPassThrough Kind = iota
	KindRewrite
	KindRedirect
)

// String implements fmt.Stringer for log fields.
func (k Kind) String() string {
	switch k {
	case KindRewrite:
		return "rewrite"
	case KindRedirect:
		return "redirect"
	default:
		return "pass_through"
	}
}

// Decision is the router's terminal state.  Path is set for KindRewrite,
// Location for KindRedirect; Org carries the resolved organization slug
// (possibly empty) for downstream handlers in every variant.
type Decision struct {
	Kind     Kind
	Path     string
	Location string
	Org      string
}

// PassThrough forwards the request unchanged.
func PassThrough(org string) Decision {
	return Decision{Kind: KindPassThrough, Org: org}
}

// RewriteTo forwards the request under a new path, preserving method,
// body, and query.
func RewriteTo(org, path string) Decision {
	return Decision{Kind: KindRewrite, Path: path, Org: org}
}

// RedirectTo answers with a 307 to location and an empty body.
func RedirectTo(location string) Decision {
	return Decision{Kind: KindRedirect, Location: location}
}
