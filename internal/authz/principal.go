package authz

// Principal is the acting identity for one request: role, permission codes and
// an optional organization. It is constructed from session state at the edge
// and passed explicitly into every check; this package never reads ambient
// request state.
type Principal struct {
	UserID string
	Role   Role
	OrgID  string
	Codes  map[string]struct{}
}

// NewPrincipal builds an immutable principal from resolved session claims.
func NewPrincipal(userID string, role Role, orgID string, codes []string) Principal {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return Principal{UserID: userID, Role: role, OrgID: orgID, Codes: set}
}

// HasPermission reports whether the principal may perform the action named by
// code. Owner and admin roles pass unconditionally; otherwise the code must be
// present in the principal's set. A missing set means no permissions, not an
// error.
func (p Principal) HasPermission(code string) bool {
	if p.Role.Bypass() {
		return true
	}
	_, ok := p.Codes[code]
	return ok
}

// HasAnyPermission reports whether at least one of the codes is held.
func (p Principal) HasAnyPermission(codes ...string) bool {
	if p.Role.Bypass() {
		return true
	}
	for _, c := range codes {
		if _, ok := p.Codes[c]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of the codes is held.
func (p Principal) HasAllPermissions(codes ...string) bool {
	if p.Role.Bypass() {
		return true
	}
	for _, c := range codes {
		if _, ok := p.Codes[c]; !ok {
			return false
		}
	}
	return true
}

// subjects returns the grant subjects this principal can match: its user id,
// plus its organization when one is set.
func (p Principal) subjects() []SubjectRef {
	refs := []SubjectRef{{Type: SubjectUser, ID: p.UserID}}
	if p.OrgID != "" {
		refs = append(refs, SubjectRef{Type: SubjectOrg, ID: p.OrgID})
	}
	return refs
}
