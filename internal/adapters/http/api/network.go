// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/esgbench/internal/app"
	"github.com/okian/esgbench/internal/domain/model"
)

// NetworkHandler handles network membership, health, and report exports.
type NetworkHandler struct {
	deps Dependencies
}

// NewNetworkHandler creates a new network handler.
func NewNetworkHandler(deps Dependencies) *NetworkHandler {
	return &NetworkHandler{deps: deps}
}

type joinRequest struct {
	Profile model.BenchmarkingProfile `json:"profile"`
	Privacy model.PrivacySettings     `json:"privacy"`
}

// HandleJoin handles POST /network/join requests.
func (h *NetworkHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.Profile.OrganizationID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	receipt, err := h.deps.JoinNetwork(r.Context(), req.Profile, req.Privacy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// HandleEffects handles GET /network/effects requests.
func (h *NetworkHandler) HandleEffects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.NetworkEffects(r.Context()))
}

type exportRequest struct {
	MetricIDs []string     `json:"metric_ids"`
	Filter    model.Filter `json:"filter"`
	Format    string       `json:"format"`
}

// HandleExport handles POST /export requests.
func (h *NetworkHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = app.FormatJSON
	}
	raw, err := h.deps.Export(r.Context(), req.MetricIDs, req.Filter, req.Format)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	contentType := "application/json; charset=utf-8"
	if req.Format == app.FormatYAML {
		contentType = "application/yaml; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
