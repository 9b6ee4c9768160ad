// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PeersHandler handles organization comparison and composed result reads.
type PeersHandler struct {
	deps Dependencies
}

// NewPeersHandler creates a new peer comparison handler.
func NewPeersHandler(deps Dependencies) *PeersHandler {
	return &PeersHandler{deps: deps}
}

type compareRequest struct {
	OrganizationIDs []string `json:"organization_ids"`
	MetricIDs       []string `json:"metric_ids"`
	Year            int      `json:"year,omitempty"`
}

// HandleCompare handles POST /compare requests.
func (h *PeersHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	matrix, err := h.deps.CompareOrganizations(r.Context(), req.OrganizationIDs, req.MetricIDs, req.Year)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

// HandleGetResults handles GET /organizations/{id}/results requests.
func (h *PeersHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Path shape: /organizations/{id}/results
	rest := strings.TrimPrefix(r.URL.Path, "/organizations/")
	orgID, tail, ok := strings.Cut(rest, "/")
	if !ok || orgID == "" || tail != "results" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var metricIDs []string
	if raw := r.URL.Query().Get("metrics"); raw != "" {
		metricIDs = strings.Split(raw, ",")
	}
	results, err := h.deps.BenchmarkResults(r.Context(), orgID, metricIDs)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
