package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seamline.io/internal/audit"
	"seamline.io/internal/authz"
	"seamline.io/internal/lifecycle"
	"seamline.io/internal/session"
)

const testSecret = "test-secret-0123456789"

type fixture struct {
	api    *API
	tokens *session.Tokens
	grants *authz.MemoryGrantStore
}

// memConceptStore is a minimal in-process ConceptStore for handler tests.
type memConceptStore struct {
	concepts map[string]*lifecycle.Concept
	history  map[string][]lifecycle.StageEntry
}

func (s *memConceptStore) Find(ctx context.Context, id string) (*lifecycle.Concept, error) {
	c, ok := s.concepts[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *memConceptStore) SetStatus(ctx context.Context, id string, status lifecycle.ConceptStatus, entry lifecycle.StageEntry) error {
	c, ok := s.concepts[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	c.Status = status
	s.history[id] = append(s.history[id], entry)
	return nil
}

func (s *memConceptStore) StageHistory(ctx context.Context, id string) ([]lifecycle.StageEntry, error) {
	return s.history[id], nil
}

// memSeasonStore is a minimal in-process SeasonStore for handler tests.
type memSeasonStore struct {
	seasons map[string]*lifecycle.Season
	slots   map[string]*lifecycle.Slot
}

func (s *memSeasonStore) Find(ctx context.Context, id string) (*lifecycle.Season, error) {
	season, ok := s.seasons[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	out := *season
	return &out, nil
}

func (s *memSeasonStore) CountSlots(ctx context.Context, seasonID string) (int, error) {
	n := 0
	for _, slot := range s.slots {
		if slot.SeasonID == seasonID {
			n++
		}
	}
	return n, nil
}

func (s *memSeasonStore) CountFilledSlots(ctx context.Context, seasonID string) (int, error) {
	n := 0
	for _, slot := range s.slots {
		if slot.SeasonID == seasonID && slot.Filled() {
			n++
		}
	}
	return n, nil
}

func (s *memSeasonStore) ListCategories(ctx context.Context, seasonID string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, slot := range s.slots {
		if slot.SeasonID != seasonID {
			continue
		}
		if _, ok := seen[slot.Category]; ok {
			continue
		}
		seen[slot.Category] = struct{}{}
		out = append(out, slot.Category)
	}
	return out, nil
}

func (s *memSeasonStore) InsertSlot(ctx context.Context, slot *lifecycle.Slot) error {
	copied := *slot
	s.slots[slot.ID] = &copied
	return nil
}

func (s *memSeasonStore) FindSlot(ctx context.Context, seasonID, slotID string) (*lifecycle.Slot, error) {
	slot, ok := s.slots[slotID]
	if !ok || slot.SeasonID != seasonID {
		return nil, lifecycle.ErrNotFound
	}
	out := *slot
	return &out, nil
}

func (s *memSeasonStore) FillSlot(ctx context.Context, slotID, conceptID string) error {
	slot, ok := s.slots[slotID]
	if !ok {
		return lifecycle.ErrNotFound
	}
	slot.ConceptID = conceptID
	slot.FilledAt = time.Now().UTC()
	return nil
}

func newFixture(t *testing.T) (*fixture, *memConceptStore, *memSeasonStore) {
	t.Helper()
	tokens, err := session.NewTokens(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	grantStore := authz.NewMemoryGrantStore()
	concepts := &memConceptStore{
		concepts: map[string]*lifecycle.Concept{},
		history:  map[string][]lifecycle.StageEntry{},
	}
	seasons := &memSeasonStore{
		seasons: map[string]*lifecycle.Season{},
		slots:   map[string]*lifecycle.Slot{},
	}
	api := New(Options{
		Version:   "test",
		Tokens:    tokens,
		Grants:    authz.NewGrants(grantStore, audit.NewRecorder(nil)),
		Evaluator: authz.NewEvaluator(grantStore),
		Concepts:  lifecycle.NewConcepts(concepts),
		Seasons:   lifecycle.NewSeasons(seasons),
	})
	return &fixture{api: api, tokens: tokens, grants: grantStore}, concepts, seasons
}

func (f *fixture) bearer(t *testing.T, userID string, role authz.Role, orgID string, permissions []string) string {
	t.Helper()
	raw, err := f.tokens.Issue(userID, role, orgID, permissions)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + raw
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["service"] != "seamline-api" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestInfoIsPublic(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/v1/info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProtectedPathsRequireToken(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/v1/grants?subject_type=user&subject_id=u1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/grants?subject_type=user&subject_id=u1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	if rec := f.do(t, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID must be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = f.do(t, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("X-Request-ID = %q, want echoed req-42", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	f, _, _ := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	tokens, err := session.NewTokens(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	api := New(Options{
		Tokens:             tokens,
		RateLimitPerSecond: 1,
		RateLimitBurst:     2,
	})
	h := api.Handler()

	limited := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("burst of requests must trip the limiter")
	}
}
