package authz

import (
	"context"
	"sync"
)

// MemoryGrantStore implements GrantStore in process. Used by tests and local
// development; production deployments use the Postgres store.
type MemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[string]Grant
}

var _ GrantStore = (*MemoryGrantStore)(nil)

// NewMemoryGrantStore creates an empty in-memory store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]Grant)}
}

func (s *MemoryGrantStore) Insert(ctx context.Context, grant *Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.ID] = *grant
	return nil
}

func (s *MemoryGrantStore) Find(ctx context.Context, id string) (*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := g
	return &out, nil
}

func (s *MemoryGrantStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, id)
	return nil
}

func (s *MemoryGrantStore) ListBySubject(ctx context.Context, subjectType SubjectType, subjectID string) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Grant
	for _, g := range s.grants {
		if g.SubjectType == subjectType && g.SubjectID == subjectID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *MemoryGrantStore) MatchingGrantExists(ctx context.Context, subjects []SubjectRef, resourceType ResourceType, resourceID string, levels []Level) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.grants {
		if g.ResourceType != resourceType || g.ResourceID != resourceID {
			continue
		}
		if !matchesSubject(g, subjects) || !matchesLevel(g, levels) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (s *MemoryGrantStore) ResourceIDsForSubjects(ctx context.Context, subjects []SubjectRef, resourceType ResourceType, levels []Level) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, g := range s.grants {
		if g.ResourceType != resourceType {
			continue
		}
		if !matchesSubject(g, subjects) || !matchesLevel(g, levels) {
			continue
		}
		out = append(out, g.ResourceID)
	}
	return out, nil
}

func matchesSubject(g Grant, subjects []SubjectRef) bool {
	for _, s := range subjects {
		if g.SubjectType == s.Type && g.SubjectID == s.ID {
			return true
		}
	}
	return false
}

func matchesLevel(g Grant, levels []Level) bool {
	for _, l := range levels {
		if g.Level == l {
			return true
		}
	}
	return false
}
