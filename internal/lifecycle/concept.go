package lifecycle

import (
	"fmt"
	"time"
)

// ConceptStatus is one position in the fixed sequence a product concept moves
// through from first sketch to retirement.
type ConceptStatus string

const (
	StatusDraft      ConceptStatus = "draft"
	StatusSpec       ConceptStatus = "spec"
	StatusSampling   ConceptStatus = "sampling"
	StatusCosting    ConceptStatus = "costing"
	StatusApproved   ConceptStatus = "approved"
	StatusProduction ConceptStatus = "production"
	StatusLive       ConceptStatus = "live"
	StatusRetired    ConceptStatus = "retired"
)

// conceptStages is the only legal ordering. Transitions move forward by
// exactly one stage; skipping and backward movement are rejected here
// (reverting is a different operation, not covered by this validator).
var conceptStages = []ConceptStatus{
	StatusDraft,
	StatusSpec,
	StatusSampling,
	StatusCosting,
	StatusApproved,
	StatusProduction,
	StatusLive,
	StatusRetired,
}

// Concept is a product concept moving through the stage sequence.
type Concept struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     ConceptStatus `json:"status"`
	CreatedBy  string        `json:"created_by"`
	ApprovedBy string        `json:"approved_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// StageEntry marks when a concept entered a stage.
type StageEntry struct {
	ConceptID string        `json:"concept_id"`
	Status    ConceptStatus `json:"status"`
	ActorID   string        `json:"actor_id"`
	EnteredAt time.Time     `json:"entered_at"`
}

func stageIndex(s ConceptStatus) int {
	for i, stage := range conceptStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// ValidateConceptTransition checks whether moving a concept from current to
// target is legal right now. All violated rules are reported together. Pure
// and side-effect free; safe to call speculatively before committing a write.
func ValidateConceptTransition(current, target ConceptStatus) Result {
	var res Result
	ci := stageIndex(current)
	ti := stageIndex(target)
	if ci < 0 {
		res.addf("Current status '%s' is not recognized.", current)
	}
	if ti < 0 {
		res.addf("Target status '%s' is not recognized.", target)
	}
	if ci < 0 || ti < 0 {
		return res.finish("concept_transition")
	}
	if ti != ci+1 {
		next, ok := NextConceptStatus(current)
		if !ok {
			res.addf("Concept is already '%s', the final stage.", current)
		} else {
			res.addf("Cannot skip from '%s' to '%s'. Next stage is '%s'.", current, target, next)
		}
	}
	return res.finish("concept_transition")
}

// NextConceptStatus returns the stage one past current, or false when current
// is terminal or unrecognized.
func NextConceptStatus(current ConceptStatus) (ConceptStatus, bool) {
	i := stageIndex(current)
	if i < 0 || i == len(conceptStages)-1 {
		return "", false
	}
	return conceptStages[i+1], true
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
