package authz

import "testing"

func TestParseRole(t *testing.T) {
	if got := ParseRole("  Admin "); got != RoleAdmin {
		t.Fatalf("ParseRole: got %q, want %q", got, RoleAdmin)
	}
	unknown := ParseRole("superuser")
	if unknown.Valid() {
		t.Fatalf("unknown role %q must not be valid", unknown)
	}
	if unknown.Bypass() {
		t.Fatalf("unknown role %q must not bypass", unknown)
	}
}

func TestRoleBypass(t *testing.T) {
	cases := map[Role]bool{
		RoleOwner:          true,
		RoleAdmin:          true,
		RoleEditor:         false,
		RoleInternalViewer: false,
		RolePartnerViewer:  false,
		RoleVendorViewer:   false,
	}
	for role, want := range cases {
		if got := role.Bypass(); got != want {
			t.Errorf("%s.Bypass() = %v, want %v", role, got, want)
		}
	}
}

func TestHasPermission(t *testing.T) {
	p := NewPrincipal("u1", RoleEditor, "", []string{PermStudioSubmit, PermColorsManage})
	if !p.HasPermission(PermStudioSubmit) {
		t.Fatal("editor with studio.submit must pass")
	}
	if p.HasPermission(PermCostingView) {
		t.Fatal("editor without costing.view must be denied")
	}
}

func TestHasPermissionBypass(t *testing.T) {
	admin := NewPrincipal("u1", RoleAdmin, "", nil)
	for _, code := range AllPermissionCodes {
		if !admin.HasPermission(code) {
			t.Fatalf("admin denied %s", code)
		}
	}
	owner := NewPrincipal("u2", RoleOwner, "", nil)
	if !owner.HasPermission("unknown.code") {
		t.Fatal("owner must pass even for unregistered codes")
	}
}

func TestHasPermissionNilCodes(t *testing.T) {
	p := Principal{UserID: "u1", Role: RoleVendorViewer}
	if p.HasPermission(PermStudioSubmit) {
		t.Fatal("principal with no code set must be denied")
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	p := NewPrincipal("u1", RoleEditor, "", []string{PermSlotsCreate, PermSlotsFill})
	if !p.HasAnyPermission(PermCostingView, PermSlotsFill) {
		t.Fatal("HasAnyPermission must pass when one code is held")
	}
	if p.HasAnyPermission(PermCostingView, PermMarginsView) {
		t.Fatal("HasAnyPermission must fail when no code is held")
	}
	if !p.HasAllPermissions(PermSlotsCreate, PermSlotsFill) {
		t.Fatal("HasAllPermissions must pass when every code is held")
	}
	if p.HasAllPermissions(PermSlotsCreate, PermCostingView) {
		t.Fatal("HasAllPermissions must fail when one code is missing")
	}
}

func TestPrincipalSubjects(t *testing.T) {
	p := NewPrincipal("u1", RoleEditor, "org-9", nil)
	refs := p.subjects()
	if len(refs) != 2 {
		t.Fatalf("subjects: got %d refs, want 2", len(refs))
	}
	if refs[0].Type != SubjectUser || refs[0].ID != "u1" {
		t.Fatalf("first subject = %+v, want user u1", refs[0])
	}
	if refs[1].Type != SubjectOrg || refs[1].ID != "org-9" {
		t.Fatalf("second subject = %+v, want org org-9", refs[1])
	}

	solo := NewPrincipal("u2", RoleEditor, "", nil)
	if got := solo.subjects(); len(got) != 1 {
		t.Fatalf("subjects without org: got %d refs, want 1", len(got))
	}
}

func TestCodesForLegacyRole(t *testing.T) {
	codes := CodesForLegacyRole(LegacyRoleMerchandiser)
	want := map[string]bool{
		PermStudioReview:       false,
		PermSeasonsManage:      false,
		PermSlotsCreate:        false,
		PermSlotsFill:          false,
		PermConceptsAdvance:    false,
		PermStudioPromote:      false,
		PermCoreProgramsManage: false,
	}
	for _, c := range codes {
		if _, ok := want[c]; ok {
			want[c] = true
		}
	}
	for c, seen := range want {
		if !seen {
			t.Errorf("merchandiser missing code %s", c)
		}
	}

	if got := CodesForLegacyRole("intern"); got != nil {
		t.Fatalf("unknown legacy tag: got %v, want nil", got)
	}

	// Mutating the returned slice must not corrupt the mapping.
	first := CodesForLegacyRole(LegacyRoleDesigner)
	first[0] = "tampered"
	second := CodesForLegacyRole(LegacyRoleDesigner)
	if second[0] == "tampered" {
		t.Fatal("CodesForLegacyRole must return a copy")
	}
}
