// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/app"
	"github.com/okian/esgbench/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	AddDataPoint(ctx context.Context, p model.MetricDataPoint) error
	AddBulk(ctx context.Context, points []model.MetricDataPoint) repository.BulkResult
	CalculateBenchmark(ctx context.Context, metricID string, f model.Filter) (model.IndustryBenchmark, error)
	PercentileRank(ctx context.Context, metricID string, value float64, f model.Filter) (float64, error)
	ImprovementPotential(ctx context.Context, metricID string, currentValue, targetPercentile float64, f model.Filter) (model.Potential, error)
	Trend(ctx context.Context, metricID string, f model.Filter, years int) ([]model.TrendPoint, error)
	CompareOrganizations(ctx context.Context, orgIDs, metricIDs []string, year int) (map[string]map[string]*float64, error)
	BenchmarkResults(ctx context.Context, organizationID string, metricIDs []string) ([]model.BenchmarkResult, error)
	JoinNetwork(ctx context.Context, profile model.BenchmarkingProfile, privacy model.PrivacySettings) (model.JoinReceipt, error)
	NetworkEffects(ctx context.Context) model.NetworkEffect
	Export(ctx context.Context, metricIDs []string, f model.Filter, format string) ([]byte, error)
}

// Server wires HTTP routes for the benchmarking API.
type Server struct {
	healthHandler     *HealthHandler
	dataPointsHandler *DataPointsHandler
	benchmarksHandler *BenchmarksHandler
	peersHandler      *PeersHandler
	networkHandler    *NetworkHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		dataPointsHandler: NewDataPointsHandler(deps),
		benchmarksHandler: NewBenchmarksHandler(deps),
		peersHandler:      NewPeersHandler(deps),
		networkHandler:    NewNetworkHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/datapoints", MetricsMiddleware(s.dataPointsHandler.HandlePostDataPoint, "datapoints"))
	mux.HandleFunc("/datapoints/bulk", MetricsMiddleware(s.dataPointsHandler.HandlePostBulk, "datapoints_bulk"))
	mux.HandleFunc("/benchmarks", MetricsMiddleware(s.benchmarksHandler.HandleGetBenchmark, "benchmarks"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.benchmarksHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/potential", MetricsMiddleware(s.benchmarksHandler.HandleGetPotential, "potential"))
	mux.HandleFunc("/trend", MetricsMiddleware(s.benchmarksHandler.HandleGetTrend, "trend"))
	mux.HandleFunc("/compare", MetricsMiddleware(s.peersHandler.HandleCompare, "compare"))
	mux.HandleFunc("/organizations/", MetricsMiddleware(s.peersHandler.HandleGetResults, "results"))
	mux.HandleFunc("/network/join", MetricsMiddleware(s.networkHandler.HandleJoin, "network_join"))
	mux.HandleFunc("/network/effects", MetricsMiddleware(s.networkHandler.HandleEffects, "network_effects"))
	mux.HandleFunc("/export", MetricsMiddleware(s.networkHandler.HandleExport, "export"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError translates engine errors to their HTTP shape.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err)
	case errors.Is(err, app.ErrInsufficientData):
		writeError(w, http.StatusConflict, "insufficient_data", err)
	case errors.Is(err, app.ErrUnknownOrganization):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrInvalidFilter), errors.Is(err, app.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseFilter reads the shared benchmark filter query parameters.
func parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{
		Industry: q.Get("industry"),
		Region:   q.Get("region"),
		Size:     model.SizeCategory(q.Get("size")),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return model.Filter{}, errors.New("invalid year; must be an integer")
		}
		f.Year = year
	}
	if raw := q.Get("verified_only"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			return model.Filter{}, errors.New("invalid verified_only; must be a boolean")
		}
		f.VerifiedOnly = verified
	}
	return f, nil
}
