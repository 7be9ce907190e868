package authz

import "strings"

// Role is the portal-wide role attached to a session.
type Role string

const (
	RoleOwner          Role = "owner"
	RoleAdmin          Role = "admin"
	RoleEditor         Role = "editor"
	RoleInternalViewer Role = "internal_viewer"
	RolePartnerViewer  Role = "partner_viewer"
	RoleVendorViewer   Role = "vendor_viewer"
)

var knownRoles = map[Role]struct{}{
	RoleOwner:          {},
	RoleAdmin:          {},
	RoleEditor:         {},
	RoleInternalViewer: {},
	RolePartnerViewer:  {},
	RoleVendorViewer:   {},
}

// ParseRole normalizes a raw role string. Unknown values are returned as-is:
// they carry no bypass and no implicit permissions, which leaves an
// unrecognized role least-privileged.
func ParseRole(raw string) Role {
	return Role(strings.TrimSpace(strings.ToLower(raw)))
}

// Valid reports whether the role is one of the fixed enum values.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// Bypass reports whether the role passes every authorization check
// unconditionally. Evaluated first in every entry point so elevated roles
// never depend on grant data being present.
func (r Role) Bypass() bool {
	return r == RoleOwner || r == RoleAdmin
}
