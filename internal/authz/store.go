package authz

import "context"

// GrantReader answers the evaluator's read-only questions against grant rows.
type GrantReader interface {
	// MatchingGrantExists reports whether any grant covers one of the subjects
	// on the given resource at one of the given levels.
	MatchingGrantExists(ctx context.Context, subjects []SubjectRef, resourceType ResourceType, resourceID string, levels []Level) (bool, error)
	// ResourceIDsForSubjects returns the de-duplicated resource ids reachable
	// by the subjects at one of the given levels.
	ResourceIDsForSubjects(ctx context.Context, subjects []SubjectRef, resourceType ResourceType, levels []Level) ([]string, error)
}

// GrantStore is the durable backing for grants.
type GrantStore interface {
	GrantReader

	Insert(ctx context.Context, grant *Grant) error
	Find(ctx context.Context, id string) (*Grant, error)
	Delete(ctx context.Context, id string) error
	ListBySubject(ctx context.Context, subjectType SubjectType, subjectID string) ([]Grant, error)
}
