package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seamline.io/internal/audit"
	"seamline.io/internal/ids"
)

// NewGrant carries the attributes of a grant to create.
type NewGrant struct {
	SubjectType  SubjectType
	SubjectID    string
	ResourceType ResourceType
	ResourceID   string
	Level        Level
	GrantedBy    string
}

// Grants manages durable grant records. Callers are responsible for having
// authorized the acting principal before mutating; the store layer does not
// re-derive authorization.
type Grants struct {
	store    GrantStore
	recorder *audit.Recorder
	now      func() time.Time
}

// GrantsOption configures Grants behavior.
type GrantsOption func(*Grants)

// WithGrantsClock overrides the time source (useful for tests).
func WithGrantsClock(fn func() time.Time) GrantsOption {
	return func(g *Grants) {
		if fn != nil {
			g.now = fn
		}
	}
}

// NewGrants constructs the grant service. The recorder may be nil, in which
// case mutations are not audited.
func NewGrants(store GrantStore, recorder *audit.Recorder, opts ...GrantsOption) *Grants {
	g := &Grants{store: store, recorder: recorder, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create inserts a new grant row and records a grant.create audit entry.
// No uniqueness is enforced: duplicate grants never produce wrong denials,
// only redundant rows.
func (g *Grants) Create(ctx context.Context, req NewGrant) (Grant, error) {
	if _, ok := ParseSubjectType(string(req.SubjectType)); !ok {
		return Grant{}, fmt.Errorf("%w: unsupported subject type %q", ErrInvalidInput, req.SubjectType)
	}
	if req.SubjectID == "" {
		return Grant{}, fmt.Errorf("%w: subject_id is required", ErrInvalidInput)
	}
	if _, ok := ParseResourceType(string(req.ResourceType)); !ok {
		return Grant{}, fmt.Errorf("%w: unsupported resource type %q", ErrInvalidInput, req.ResourceType)
	}
	if req.ResourceID == "" {
		return Grant{}, fmt.Errorf("%w: resource_id is required", ErrInvalidInput)
	}
	if _, ok := ParseLevel(string(req.Level)); !ok {
		return Grant{}, fmt.Errorf("%w: unsupported permission level %q", ErrInvalidInput, req.Level)
	}

	grant := Grant{
		ID:           ids.New(),
		SubjectType:  req.SubjectType,
		SubjectID:    req.SubjectID,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Level:        req.Level,
		GrantedBy:    req.GrantedBy,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.store.Insert(ctx, &grant); err != nil {
		return Grant{}, err
	}
	g.recorder.Record(ctx, audit.Entry{
		ActorID:           req.GrantedBy,
		Action:            audit.ActionGrantCreate,
		TargetSubjectType: string(grant.SubjectType),
		TargetSubjectID:   grant.SubjectID,
		Details: map[string]string{
			"grant_id":      grant.ID,
			"resource_type": string(grant.ResourceType),
			"resource_id":   grant.ResourceID,
			"level":         string(grant.Level),
		},
	})
	return grant, nil
}

// Delete removes a grant by id. Deleting an id that no longer exists is a
// silent no-op and writes no audit entry.
func (g *Grants) Delete(ctx context.Context, grantID, actorID string) error {
	if grantID == "" {
		return fmt.Errorf("%w: grant_id is required", ErrInvalidInput)
	}
	grant, err := g.store.Find(ctx, grantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := g.store.Delete(ctx, grantID); err != nil {
		return err
	}
	g.recorder.Record(ctx, audit.Entry{
		ActorID:           actorID,
		Action:            audit.ActionGrantDelete,
		TargetSubjectType: string(grant.SubjectType),
		TargetSubjectID:   grant.SubjectID,
		Details: map[string]string{
			"grant_id":      grant.ID,
			"resource_type": string(grant.ResourceType),
			"resource_id":   grant.ResourceID,
			"level":         string(grant.Level),
		},
	})
	return nil
}

// ListForSubject returns all grants for one subject across resource types.
func (g *Grants) ListForSubject(ctx context.Context, subjectType SubjectType, subjectID string) ([]Grant, error) {
	if _, ok := ParseSubjectType(string(subjectType)); !ok {
		return nil, fmt.Errorf("%w: unsupported subject type %q", ErrInvalidInput, subjectType)
	}
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject_id is required", ErrInvalidInput)
	}
	return g.store.ListBySubject(ctx, subjectType, subjectID)
}
