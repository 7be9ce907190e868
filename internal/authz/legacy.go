package authz

// Legacy product-team role tags still present in older session records. The
// previous portal derived ad hoc booleans from these per call site; here they
// are mapped to the permission-code vocabulary once, at the boundary.
const (
	LegacyRoleDesigner     = "designer"
	LegacyRoleMerchandiser = "merchandiser"
	LegacyRoleSourcing     = "sourcing"
	LegacyRoleFinance      = "finance"
)

var legacyRoleCodes = map[string][]string{
	LegacyRoleDesigner: {
		PermStudioSubmit,
		PermColorsManage,
	},
	LegacyRoleMerchandiser: {
		PermStudioReview,
		PermStudioPromote,
		PermSeasonsManage,
		PermSlotsCreate,
		PermSlotsFill,
		PermConceptsAdvance,
		PermCoreProgramsManage,
	},
	LegacyRoleSourcing: {
		PermSourcingView,
		PermSourcingManage,
	},
	LegacyRoleFinance: {
		PermCostingView,
		PermMarginsView,
	},
}

// CodesForLegacyRole translates a legacy role tag into its permission-code
// set. Unknown tags map to no codes.
func CodesForLegacyRole(tag string) []string {
	codes, ok := legacyRoleCodes[tag]
	if !ok {
		return nil
	}
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}
