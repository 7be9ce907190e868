package lifecycle

import "seamline.io/internal/obs"

// Result reports the outcome of a validation: Valid, or every violated rule
// at once. Error strings are user-facing sentences, rendered verbatim by the
// action layer. A denial is a normal outcome, not an application error.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// finish resolves Valid from the accumulated errors and counts the failure.
func (r Result) finish(check string) Result {
	r.Valid = len(r.Errors) == 0
	if !r.Valid {
		obs.ObserveLifecycleFailure(check)
	}
	return r
}
