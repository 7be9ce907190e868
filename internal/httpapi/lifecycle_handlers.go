package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"seamline.io/internal/authz"
	"seamline.io/internal/lifecycle"
)

type advanceConceptRequest struct {
	TargetStatus string `json:"target_status"`
}

type addSlotRequest struct {
	Category string `json:"category"`
}

type fillSlotRequest struct {
	ConceptID string `json:"concept_id"`
}

func (a *API) handleConceptResource(w http.ResponseWriter, r *http.Request) {
	if a.concepts == nil {
		writeError(w, r, http.StatusServiceUnavailable, "concept service unavailable")
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/concepts/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	conceptID := parts[0]
	switch parts[1] {
	case "advance":
		a.handleConceptAdvance(w, r, conceptID)
	case "history":
		a.handleConceptHistory(w, r, conceptID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleConceptAdvance(w http.ResponseWriter, r *http.Request, conceptID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.HasPermission(authz.PermConceptsAdvance) {
		writeError(w, r, http.StatusForbidden, "permission concepts.advance required")
		return
	}
	var req advanceConceptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, concept, err := a.concepts.Advance(r.Context(), conceptID, lifecycle.ConceptStatus(req.TargetStatus), principal.UserID)
	if err != nil {
		handleLifecycleError(w, r, err)
		return
	}
	if !res.Valid {
		writeJSON(w, http.StatusConflict, res)
		return
	}
	writeJSON(w, http.StatusOK, concept)
}

func (a *API) handleConceptHistory(w http.ResponseWriter, r *http.Request, conceptID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requirePrincipal(w, r); !ok {
		return
	}
	history, err := a.concepts.History(r.Context(), conceptID)
	if err != nil {
		handleLifecycleError(w, r, err)
		return
	}
	if history == nil {
		history = []lifecycle.StageEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (a *API) handleSeasonResource(w http.ResponseWriter, r *http.Request) {
	if a.seasons == nil {
		writeError(w, r, http.StatusServiceUnavailable, "season service unavailable")
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/seasons/"), "/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] == "slots":
		a.handleSlotAdd(w, r, parts[0])
	case len(parts) == 4 && parts[0] != "" && parts[1] == "slots" && parts[2] != "" && parts[3] == "fill":
		a.handleSlotFill(w, r, parts[0], parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleSlotAdd(w http.ResponseWriter, r *http.Request, seasonID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.HasPermission(authz.PermSlotsCreate) {
		writeError(w, r, http.StatusForbidden, "permission slots.create required")
		return
	}
	var req addSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, slot, err := a.seasons.AddSlot(r.Context(), seasonID, strings.TrimSpace(req.Category))
	if err != nil {
		handleLifecycleError(w, r, err)
		return
	}
	if !res.Valid {
		writeJSON(w, http.StatusConflict, res)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (a *API) handleSlotFill(w http.ResponseWriter, r *http.Request, seasonID, slotID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.HasPermission(authz.PermSlotsFill) {
		writeError(w, r, http.StatusForbidden, "permission slots.fill required")
		return
	}
	var req fillSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, slot, err := a.seasons.FillSlot(r.Context(), seasonID, slotID, strings.TrimSpace(req.ConceptID))
	if err != nil {
		handleLifecycleError(w, r, err)
		return
	}
	if !res.Valid {
		writeJSON(w, http.StatusConflict, res)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func handleLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "lifecycle operation failed")
	}
}
