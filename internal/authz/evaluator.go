package authz

import (
	"context"
	"sort"

	"seamline.io/internal/obs"
)

// ResourceScope is the answer to "which resources of this type can the
// principal reach". All=true means every resource of the type (bypass roles);
// otherwise IDs holds the reachable ids, de-duplicated and possibly empty.
type ResourceScope struct {
	All bool     `json:"all"`
	IDs []string `json:"ids"`
}

// Evaluator decides resource-scoped access questions against the grant store.
// It holds no cache: every check re-queries, so a revoked grant is visible to
// the next request.
type Evaluator struct {
	grants GrantReader
}

// NewEvaluator constructs an evaluator over the given grant reader.
func NewEvaluator(grants GrantReader) *Evaluator {
	return &Evaluator{grants: grants}
}

// HasResourceAccess reports whether the principal holds the required level on
// one resource instance. Store failures propagate to the caller; "we don't
// know" is never reported as "no".
func (e *Evaluator) HasResourceAccess(ctx context.Context, p Principal, resourceType ResourceType, resourceID string, required Level) (bool, error) {
	if p.Role.Bypass() {
		obs.ObserveAuthzDecision(true)
		return true, nil
	}
	levels := required.Satisfying()
	if len(levels) == 0 {
		obs.ObserveAuthzDecision(false)
		return false, nil
	}
	ok, err := e.grants.MatchingGrantExists(ctx, p.subjects(), resourceType, resourceID, levels)
	if err != nil {
		return false, err
	}
	obs.ObserveAuthzDecision(ok)
	return ok, nil
}

// AccessibleResourceIDs returns the principal's reachable resources of a type
// at the required level, for pre-filtering listing queries instead of checking
// row by row.
func (e *Evaluator) AccessibleResourceIDs(ctx context.Context, p Principal, resourceType ResourceType, required Level) (ResourceScope, error) {
	if p.Role.Bypass() {
		return ResourceScope{All: true}, nil
	}
	levels := required.Satisfying()
	if len(levels) == 0 {
		return ResourceScope{IDs: []string{}}, nil
	}
	ids, err := e.grants.ResourceIDsForSubjects(ctx, p.subjects(), resourceType, levels)
	if err != nil {
		return ResourceScope{}, err
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return ResourceScope{IDs: out}, nil
}
