// internal/routing/classify.go
//
// Path classification for the multi-tenant edge.
//
// Context
// -------
// Every inbound path falls into exactly one class before any datastore is
// touched:
//
//   • StaticAsset / APIRoute – reserved prefixes, bypass unconditionally.
//   • PublicPage             – exact-match platform pages (login, health).
//   • SuperAdminArea         – the /superadmin subtree.
//   • TenantScoped           – first segment is a candidate organization
//     slug, remainder is the in-tenant route.
//   • Unscoped               – no usable first segment (root, or a reserved
//     word that is not itself a bypass page); the router may still rewrite
//     these onto a tenant resolved from the Host header.
//
// The reserved-word set always outranks the tenant-prefix heuristic: a bare
// /admin is a platform path, never the organization "admin".
//
// Notes
// -----
// • Classification is pure string work; no lookups, no allocation beyond
//   the returned struct.
// • Oxford commas, two spaces after periods.

package routing

import "strings"

// Kind enumerates the path classes.
type Kind uint8

const (
	KindUnscoped Kind = iota
	KindStaticAsset
	KindAPIRoute
	KindPublicPage
	KindSuperAdminArea
	KindTenantScoped
)

// String implements fmt.Stringer for log fields.
func (k Kind) String() string {
	switch k {
	case KindStaticAsset:
		return "static_asset"
	case KindAPIRoute:
		return "api_route"
	case KindPublicPage:
		return "public_page"
	case KindSuperAdminArea:
		return "superadmin_area"
	case KindTenantScoped:
		return "tenant_scoped"
	default:
		return "unscoped"
	}
}

// Class is the classification result.  Slug and Rest are set only for
// KindTenantScoped; Rest always begins with "/" ("/" alone for a bare
// organization root).
type Class struct {
	Kind Kind
	Slug string
	Rest string
}

// Bypass reports whether the class short-circuits tenant resolution.
func (c Class) Bypass() bool {
	switch c.Kind {
	case KindStaticAsset, KindAPIRoute, KindPublicPage, KindSuperAdminArea:
		return true
	}
	return false
}

//
// Reserved path vocabulary
//

// staticPrefixes bypass before anything else; they are served straight from
// the asset pipeline.
var staticPrefixes = []string{"/_static/", "/static/", "/assets/"}

// staticExact covers well-known root files crawlers and browsers request.
var staticExact = map[string]struct{}{
	"/favicon.ico": {},
	"/robots.txt":  {},
}

// publicExact are platform pages that exist outside any organization.
var publicExact = map[string]struct{}{
	"/login":   {},
	"/healthz": {},
	"/metrics": {},
}

// reservedSegments are first path segments that can never be an organization
// slug: the bypass vocabulary above plus bare role names.  "admin" is both a
// reserved top-level path and a plausible sub-path under any organization,
// so it must be listed here.
var reservedSegments = map[string]struct{}{
	"api":         {},
	"_static":     {},
	"static":      {},
	"assets":      {},
	"favicon.ico": {},
	"robots.txt":  {},
	"login":       {},
	"superadmin":  {},
	"admin":       {},
	"teacher":     {},
	"student":     {},
	"healthz":     {},
	"metrics":     {},
}

// Classify assigns path to exactly one Class.  The checks run in priority
// order; reserved prefixes win before the slug heuristic is consulted.
func Classify(path string) Class {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}

	if _, ok := staticExact[path]; ok {
		return Class{Kind: KindStaticAsset}
	}
	for _, p := range staticPrefixes {
		if strings.HasPrefix(path, p) {
			return Class{Kind: KindStaticAsset}
		}
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		return Class{Kind: KindAPIRoute}
	}

	if _, ok := publicExact[path]; ok {
		return Class{Kind: KindPublicPage}
	}
	if path == "/superadmin" || strings.HasPrefix(path, "/superadmin/") {
		return Class{Kind: KindSuperAdminArea}
	}

	seg, rest := splitFirstSegment(path)
	if seg == "" {
		return Class{Kind: KindUnscoped}
	}
	if _, ok := reservedSegments[seg]; ok {
		return Class{Kind: KindUnscoped}
	}
	return Class{Kind: KindTenantScoped, Slug: seg, Rest: rest}
}

// splitFirstSegment returns the first path segment and the remainder with a
// leading slash.  "/org1/admin/users" → ("org1", "/admin/users"),
// "/org1" → ("org1", "/").
func splitFirstSegment(path string) (seg, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, rest, found := strings.Cut(trimmed, "/")
	if !found || rest == "" {
		return seg, "/"
	}
	return seg, "/" + rest
}
