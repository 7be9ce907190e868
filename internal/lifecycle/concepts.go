package lifecycle

import (
	"context"
	"fmt"
	"time"
)

// Concepts coordinates concept stage transitions: load, validate, persist.
// The permission check happens in the action layer before calling Advance.
type Concepts struct {
	store ConceptStore
	now   func() time.Time
}

// ConceptsOption configures the service.
type ConceptsOption func(*Concepts)

// WithConceptsClock overrides the time source (useful for tests).
func WithConceptsClock(fn func() time.Time) ConceptsOption {
	return func(c *Concepts) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewConcepts constructs the concept service.
func NewConcepts(store ConceptStore, opts ...ConceptsOption) *Concepts {
	c := &Concepts{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Advance moves a concept to the target status when the transition validator
// allows it, recording a stage-history entry with the entry timestamp.
// A validation failure is a normal outcome carried in the Result; the error
// return is reserved for storage failures.
func (c *Concepts) Advance(ctx context.Context, conceptID string, target ConceptStatus, actorID string) (Result, *Concept, error) {
	if conceptID == "" {
		return Result{}, nil, fmt.Errorf("%w: concept_id is required", ErrInvalidInput)
	}
	concept, err := c.store.Find(ctx, conceptID)
	if err != nil {
		return Result{}, nil, err
	}
	res := ValidateConceptTransition(concept.Status, target)
	if !res.Valid {
		return res, concept, nil
	}
	entry := StageEntry{
		ConceptID: concept.ID,
		Status:    target,
		ActorID:   actorID,
		EnteredAt: c.now().UTC(),
	}
	if err := c.store.SetStatus(ctx, concept.ID, target, entry); err != nil {
		return Result{}, nil, err
	}
	concept.Status = target
	concept.UpdatedAt = entry.EnteredAt
	if target == StatusApproved {
		concept.ApprovedBy = actorID
	}
	return res, concept, nil
}

// History returns the stage-entry markers for every stage the concept has
// visited, oldest first.
func (c *Concepts) History(ctx context.Context, conceptID string) ([]StageEntry, error) {
	if conceptID == "" {
		return nil, fmt.Errorf("%w: concept_id is required", ErrInvalidInput)
	}
	return c.store.StageHistory(ctx, conceptID)
}
