// internal/acl/roles.go
//
// The platform role vocabulary.
//
// Roles are a closed set and unordered for authorization purposes: no role
// implies another.  Each role does map to a distinct default landing area
// under its organization, which the gate uses to turn an authorization
// mismatch into a redirect to somewhere the caller actually belongs.

package acl

// Role is a member's function within one organization.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the three known roles.  Unknown values
// can only come from bad rows; the store treats them as no membership.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// DefaultPath is the role's landing area inside its organization, e.g.
// "/org1/teacher".
func (r Role) DefaultPath(slug string) string {
	return "/" + slug + "/" + string(r)
}
