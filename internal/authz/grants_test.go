package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"seamline.io/internal/audit"
)

type captureAuditStore struct {
	entries []audit.Entry
	err     error
}

func (s *captureAuditStore) Append(ctx context.Context, entry *audit.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
}

func TestGrantsCreate(t *testing.T) {
	store := NewMemoryGrantStore()
	auditStore := &captureAuditStore{}
	svc := NewGrants(store, audit.NewRecorder(auditStore), WithGrantsClock(fixedClock))

	grant, err := svc.Create(context.Background(), NewGrant{
		SubjectType:  SubjectUser,
		SubjectID:    "u1",
		ResourceType: ResourceCollection,
		ResourceID:   "c1",
		Level:        LevelWrite,
		GrantedBy:    "admin-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if grant.ID == "" {
		t.Fatal("Create must assign an id")
	}
	if !grant.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("CreatedAt = %v, want %v", grant.CreatedAt, fixedClock())
	}

	stored, err := store.Find(context.Background(), grant.ID)
	if err != nil {
		t.Fatalf("Find after create: %v", err)
	}
	if stored.Level != LevelWrite || stored.SubjectID != "u1" {
		t.Fatalf("stored grant = %+v", stored)
	}

	if len(auditStore.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditStore.entries))
	}
	entry := auditStore.entries[0]
	if entry.Action != audit.ActionGrantCreate {
		t.Fatalf("audit action = %s, want %s", entry.Action, audit.ActionGrantCreate)
	}
	if entry.ActorID != "admin-1" {
		t.Fatalf("audit actor = %s, want admin-1", entry.ActorID)
	}
	if entry.Details["grant_id"] != grant.ID {
		t.Fatalf("audit details = %v", entry.Details)
	}
}

func TestGrantsCreateInvalidInput(t *testing.T) {
	svc := NewGrants(NewMemoryGrantStore(), nil)
	cases := []NewGrant{
		{SubjectType: "team", SubjectID: "t1", ResourceType: ResourceCollection, ResourceID: "c1", Level: LevelRead},
		{SubjectType: SubjectUser, SubjectID: "", ResourceType: ResourceCollection, ResourceID: "c1", Level: LevelRead},
		{SubjectType: SubjectUser, SubjectID: "u1", ResourceType: "warehouse", ResourceID: "w1", Level: LevelRead},
		{SubjectType: SubjectUser, SubjectID: "u1", ResourceType: ResourceCollection, ResourceID: "", Level: LevelRead},
		{SubjectType: SubjectUser, SubjectID: "u1", ResourceType: ResourceCollection, ResourceID: "c1", Level: "superadmin"},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestGrantsCreateAuditFailureDoesNotFail(t *testing.T) {
	store := NewMemoryGrantStore()
	auditStore := &captureAuditStore{err: errors.New("audit db down")}
	svc := NewGrants(store, audit.NewRecorder(auditStore))

	grant, err := svc.Create(context.Background(), NewGrant{
		SubjectType:  SubjectUser,
		SubjectID:    "u1",
		ResourceType: ResourceSeason,
		ResourceID:   "s1",
		Level:        LevelRead,
		GrantedBy:    "admin-1",
	})
	if err != nil {
		t.Fatalf("Create must succeed when only the audit write fails: %v", err)
	}
	if _, err := store.Find(context.Background(), grant.ID); err != nil {
		t.Fatalf("grant must be persisted despite audit failure: %v", err)
	}
}

func TestGrantsDelete(t *testing.T) {
	store := NewMemoryGrantStore()
	auditStore := &captureAuditStore{}
	svc := NewGrants(store, audit.NewRecorder(auditStore))

	grant, err := svc.Create(context.Background(), NewGrant{
		SubjectType:  SubjectOrg,
		SubjectID:    "org-9",
		ResourceType: ResourceFactory,
		ResourceID:   "f1",
		Level:        LevelAdmin,
		GrantedBy:    "admin-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), grant.ID, "admin-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Find(context.Background(), grant.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("grant must be gone, got %v", err)
	}

	if len(auditStore.entries) != 2 {
		t.Fatalf("audit entries = %d, want create + delete", len(auditStore.entries))
	}
	entry := auditStore.entries[1]
	if entry.Action != audit.ActionGrantDelete {
		t.Fatalf("audit action = %s, want %s", entry.Action, audit.ActionGrantDelete)
	}
	if entry.ActorID != "admin-2" {
		t.Fatalf("audit actor = %s, want admin-2", entry.ActorID)
	}
}

func TestGrantsDeleteMissingIsNoOp(t *testing.T) {
	auditStore := &captureAuditStore{}
	svc := NewGrants(NewMemoryGrantStore(), audit.NewRecorder(auditStore))

	if err := svc.Delete(context.Background(), "no-such-grant", "admin-1"); err != nil {
		t.Fatalf("deleting a missing grant must be a no-op, got %v", err)
	}
	if len(auditStore.entries) != 0 {
		t.Fatalf("no-op delete must not be audited, got %d entries", len(auditStore.entries))
	}
}

func TestGrantLifecycleVisibility(t *testing.T) {
	// A created grant is visible to the next access check; a deleted grant is
	// gone from the next one. No cache sits between the store and evaluator.
	store := NewMemoryGrantStore()
	svc := NewGrants(store, nil)
	eval := NewEvaluator(store)
	p := NewPrincipal("u1", RoleEditor, "", nil)

	grant, err := svc.Create(context.Background(), NewGrant{
		SubjectType:  SubjectUser,
		SubjectID:    "u1",
		ResourceType: ResourceCollection,
		ResourceID:   "c1",
		Level:        LevelWrite,
		GrantedBy:    "admin-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err := eval.HasResourceAccess(context.Background(), p, ResourceCollection, "c1", LevelWrite)
	if err != nil || !ok {
		t.Fatalf("after create: got (%v, %v), want allowed", ok, err)
	}

	if err := svc.Delete(context.Background(), grant.ID, "admin-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err = eval.HasResourceAccess(context.Background(), p, ResourceCollection, "c1", LevelWrite)
	if err != nil || ok {
		t.Fatalf("after delete: got (%v, %v), want denied", ok, err)
	}
}

func TestGrantsListForSubject(t *testing.T) {
	store := NewMemoryGrantStore()
	svc := NewGrants(store, nil)

	for _, rid := range []string{"c1", "c2"} {
		if _, err := svc.Create(context.Background(), NewGrant{
			SubjectType:  SubjectUser,
			SubjectID:    "u1",
			ResourceType: ResourceCollection,
			ResourceID:   rid,
			Level:        LevelRead,
			GrantedBy:    "admin-1",
		}); err != nil {
			t.Fatalf("Create %s: %v", rid, err)
		}
	}

	grants, err := svc.ListForSubject(context.Background(), SubjectUser, "u1")
	if err != nil {
		t.Fatalf("ListForSubject: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("grants = %d, want 2", len(grants))
	}

	if _, err := svc.ListForSubject(context.Background(), "team", "t1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid subject type: err = %v, want ErrInvalidInput", err)
	}
}
