// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
)

// BenchmarksHandler handles benchmark, rank, potential, and trend reads.
type BenchmarksHandler struct {
	deps Dependencies
}

// NewBenchmarksHandler creates a new benchmark read handler.
func NewBenchmarksHandler(deps Dependencies) *BenchmarksHandler {
	return &BenchmarksHandler{deps: deps}
}

// HandleGetBenchmark handles GET /benchmarks requests.
func (h *BenchmarksHandler) HandleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	b, err := h.deps.CalculateBenchmark(r.Context(), r.URL.Query().Get("metric_id"), f)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type rankResponse struct {
	MetricID   string  `json:"metric_id"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
}

// HandleGetRank handles GET /rank requests.
func (h *BenchmarksHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid value; must be a number"))
		return
	}
	metricID := r.URL.Query().Get("metric_id")
	rank, err := h.deps.PercentileRank(r.Context(), metricID, value, f)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{MetricID: metricID, Value: value, Percentile: rank})
}

// HandleGetPotential handles GET /potential requests.
func (h *BenchmarksHandler) HandleGetPotential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	q := r.URL.Query()
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid value; must be a number"))
		return
	}
	target, err := strconv.ParseFloat(q.Get("target"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid target; must be a number"))
		return
	}
	p, err := h.deps.ImprovementPotential(r.Context(), q.Get("metric_id"), value, target, f)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetTrend handles GET /trend requests.
func (h *BenchmarksHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	years := 0
	if raw := r.URL.Query().Get("years"); raw != "" {
		years, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid years; must be an integer"))
			return
		}
	}
	series, err := h.deps.Trend(r.Context(), r.URL.Query().Get("metric_id"), f, years)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
