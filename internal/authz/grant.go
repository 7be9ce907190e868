package authz

import (
	"strings"
	"time"
)

// SubjectType identifies what kind of subject a grant binds to.
type SubjectType string

const (
	SubjectUser SubjectType = "user"
	SubjectOrg  SubjectType = "org"
	SubjectRole SubjectType = "role"
)

// ResourceType identifies the kind of resource instance a grant covers.
type ResourceType string

const (
	ResourceCollection  ResourceType = "collection"
	ResourceSeason      ResourceType = "season"
	ResourceFactory     ResourceType = "factory"
	ResourceProductType ResourceType = "product_type"
)

// Level is an ordered permission level: admin implies write, write implies read.
type Level string

const (
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelAdmin Level = "admin"
)

// Satisfying expands a required level to the set of grant levels that meet it.
func (l Level) Satisfying() []Level {
	switch l {
	case LevelRead:
		return []Level{LevelRead, LevelWrite, LevelAdmin}
	case LevelWrite:
		return []Level{LevelWrite, LevelAdmin}
	case LevelAdmin:
		return []Level{LevelAdmin}
	default:
		return nil
	}
}

// ParseSubjectType normalizes and validates a raw subject type.
func ParseSubjectType(raw string) (SubjectType, bool) {
	st := SubjectType(strings.TrimSpace(strings.ToLower(raw)))
	switch st {
	case SubjectUser, SubjectOrg, SubjectRole:
		return st, true
	}
	return "", false
}

// ParseResourceType normalizes and validates a raw resource type.
func ParseResourceType(raw string) (ResourceType, bool) {
	rt := ResourceType(strings.TrimSpace(strings.ToLower(raw)))
	switch rt {
	case ResourceCollection, ResourceSeason, ResourceFactory, ResourceProductType:
		return rt, true
	}
	return "", false
}

// ParseLevel normalizes and validates a raw permission level.
func ParseLevel(raw string) (Level, bool) {
	l := Level(strings.TrimSpace(strings.ToLower(raw)))
	switch l {
	case LevelRead, LevelWrite, LevelAdmin:
		return l, true
	}
	return "", false
}

// SubjectRef names one grant subject.
type SubjectRef struct {
	Type SubjectType
	ID   string
}

// Grant is a durable record giving a subject a permission level on one
// resource instance. Grants are never mutated in place; level changes are
// delete-and-recreate.
type Grant struct {
	ID           string       `json:"id"`
	SubjectType  SubjectType  `json:"subject_type"`
	SubjectID    string       `json:"subject_id"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	Level        Level        `json:"level"`
	GrantedBy    string       `json:"granted_by"`
	CreatedAt    time.Time    `json:"created_at"`
}
