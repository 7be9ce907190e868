package authz

// Permission codes granted to principals independent of role. The set is a
// closed vocabulary owned by the portal's action layer.
const (
	PermStudioSubmit       = "studio.submit"
	PermStudioReview       = "studio.review"
	PermStudioPromote      = "studio.promote"
	PermSeasonsManage      = "seasons.manage"
	PermSeasonsLock        = "seasons.lock"
	PermSlotsCreate        = "slots.create"
	PermSlotsFill          = "slots.fill"
	PermColorsManage       = "colors.manage"
	PermColorsConfirm      = "colors.confirm"
	PermConceptsAdvance    = "concepts.advance"
	PermConceptsKill       = "concepts.kill"
	PermConceptsOverride   = "concepts.override"
	PermCoreProgramsManage = "core_programs.manage"
	PermSourcingView       = "sourcing.view"
	PermSourcingManage     = "sourcing.manage"
	PermCostingView        = "costing.view"
	PermMarginsView        = "margins.view"
)

// AllPermissionCodes lists every code in the vocabulary, used for validation
// at the token boundary and for seeding admin tooling.
var AllPermissionCodes = []string{
	PermStudioSubmit,
	PermStudioReview,
	PermStudioPromote,
	PermSeasonsManage,
	PermSeasonsLock,
	PermSlotsCreate,
	PermSlotsFill,
	PermColorsManage,
	PermColorsConfirm,
	PermConceptsAdvance,
	PermConceptsKill,
	PermConceptsOverride,
	PermCoreProgramsManage,
	PermSourcingView,
	PermSourcingManage,
	PermCostingView,
	PermMarginsView,
}
