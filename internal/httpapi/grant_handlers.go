package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"seamline.io/internal/authz"
	"seamline.io/internal/session"
)

type createGrantRequest struct {
	SubjectType  string `json:"subject_type"`
	SubjectID    string `json:"subject_id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Level        string `json:"level"`
}

// requirePrincipal pulls the authenticated principal off the context.
func (a *API) requirePrincipal(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	principal, ok := session.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return authz.Principal{}, false
	}
	return principal, true
}

// requireAdmin additionally demands an owner or admin role. Grant mutations
// are admin-only regardless of permission codes.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return authz.Principal{}, false
	}
	if !principal.Role.Bypass() {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return authz.Principal{}, false
	}
	return principal, true
}

func (a *API) handleGrants(w http.ResponseWriter, r *http.Request) {
	if a.grants == nil {
		writeError(w, r, http.StatusServiceUnavailable, "grant service unavailable")
		return
	}
	switch r.Method {
	case http.MethodPost:
		a.handleGrantCreate(w, r)
	case http.MethodGet:
		a.handleGrantList(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleGrantCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}
	var req createGrantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	grant, err := a.grants.Create(r.Context(), authz.NewGrant{
		SubjectType:  authz.SubjectType(req.SubjectType),
		SubjectID:    req.SubjectID,
		ResourceType: authz.ResourceType(req.ResourceType),
		ResourceID:   req.ResourceID,
		Level:        authz.Level(req.Level),
		GrantedBy:    principal.UserID,
	})
	if err != nil {
		handleAuthzError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/grants/%s", grant.ID))
	writeJSON(w, http.StatusCreated, grant)
}

func (a *API) handleGrantList(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	q := r.URL.Query()
	subjectType, ok := authz.ParseSubjectType(q.Get("subject_type"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "subject_type must be one of user, org, role")
		return
	}
	subjectID := strings.TrimSpace(q.Get("subject_id"))
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, "subject_id is required")
		return
	}
	grants, err := a.grants.ListForSubject(r.Context(), subjectType, subjectID)
	if err != nil {
		handleAuthzError(w, r, err)
		return
	}
	if grants == nil {
		grants = []authz.Grant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"grants": grants})
}

func (a *API) handleGrantByID(w http.ResponseWriter, r *http.Request) {
	if a.grants == nil {
		writeError(w, r, http.StatusServiceUnavailable, "grant service unavailable")
		return
	}
	grantID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/grants/"), "/")
	if grantID == "" || strings.Contains(grantID, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	principal, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}
	if err := a.grants.Delete(r.Context(), grantID, principal.UserID); err != nil {
		handleAuthzError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	if a.evaluator == nil {
		writeError(w, r, http.StatusServiceUnavailable, "evaluator unavailable")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	resourceType, ok := authz.ParseResourceType(q.Get("resource_type"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "resource_type must be one of collection, season, factory, product_type")
		return
	}
	resourceID := strings.TrimSpace(q.Get("resource_id"))
	if resourceID == "" {
		writeError(w, r, http.StatusBadRequest, "resource_id is required")
		return
	}
	level := authz.LevelRead
	if raw := q.Get("level"); raw != "" {
		parsed, ok := authz.ParseLevel(raw)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "level must be one of read, write, admin")
			return
		}
		level = parsed
	}
	allowed, err := a.evaluator.HasResourceAccess(r.Context(), principal, resourceType, resourceID, level)
	if err != nil {
		// A store failure is "we don't know", never "no".
		writeError(w, r, http.StatusInternalServerError, "access check failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allowed": allowed})
}

func (a *API) handleAccessResources(w http.ResponseWriter, r *http.Request) {
	if a.evaluator == nil {
		writeError(w, r, http.StatusServiceUnavailable, "evaluator unavailable")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	resourceType, ok := authz.ParseResourceType(q.Get("resource_type"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "resource_type must be one of collection, season, factory, product_type")
		return
	}
	level := authz.LevelRead
	if raw := q.Get("level"); raw != "" {
		parsed, ok := authz.ParseLevel(raw)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "level must be one of read, write, admin")
			return
		}
		level = parsed
	}
	scope, err := a.evaluator.AccessibleResourceIDs(r.Context(), principal, resourceType, level)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "access lookup failed")
		return
	}
	if scope.IDs == nil {
		scope.IDs = []string{}
	}
	writeJSON(w, http.StatusOK, scope)
}

func handleAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, authz.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "grant operation failed")
	}
}
