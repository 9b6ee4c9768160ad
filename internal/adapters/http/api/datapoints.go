// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/esgbench/internal/domain/model"
)

// DataPointsHandler handles metric data point ingestion.
type DataPointsHandler struct {
	deps Dependencies
}

// NewDataPointsHandler creates a new ingestion handler.
func NewDataPointsHandler(deps Dependencies) *DataPointsHandler {
	return &DataPointsHandler{deps: deps}
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostDataPoint handles POST /datapoints requests.
func (h *DataPointsHandler) HandlePostDataPoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var point model.MetricDataPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.AddDataPoint(r.Context(), point); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

type bulkResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// HandlePostBulk handles POST /datapoints/bulk requests. Bulk ingestion
// is partial-success: the response always carries both counters.
func (h *DataPointsHandler) HandlePostBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var points []model.MetricDataPoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	res := h.deps.AddBulk(r.Context(), points)
	resp := bulkResponse{Accepted: res.Accepted, Rejected: res.Rejected}
	for _, err := range res.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	writeJSON(w, http.StatusAccepted, resp)
}
