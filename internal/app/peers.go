package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/domain/model"
)

// Confidence score parameters. The score is a heuristic for how much to
// trust a comparison, not a statistical confidence interval.
const (
	confidenceBase          = 0.5
	confidenceLargeSample   = 0.2 // sampleSize >= 20
	confidenceSmallSample   = 0.1 // sampleSize >= 10
	confidenceFreshData     = 0.2 // data newer than 30 days
	confidenceRecentData    = 0.1 // data newer than 90 days
	confidenceKnownIndustry = 0.1
	freshDataAge            = 30 * 24 * time.Hour
	recentDataAge           = 90 * 24 * time.Hour
	maxSimilarPeers         = 5
	compareConcurrency      = 8
)

// BenchmarkResults composes benchmark, peer comparison, trend, and
// confidence for each requested metric of one organization. Metrics whose
// cohort fails a gate come back with Unavailable set rather than being
// dropped, so callers can tell "not reported" from "not released".
func (s *Service) BenchmarkResults(ctx context.Context, organizationID string, metricIDs []string) ([]model.BenchmarkResult, error) {
	profile, err := s.profiles.Get(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOrganization, organizationID)
	}

	results := make([]model.BenchmarkResult, 0, len(metricIDs))
	for _, metricID := range metricIDs {
		latest, err := s.store.LatestFor(ctx, organizationID, metricID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // organization never reported this metric
			}
			return nil, err
		}

		result := model.BenchmarkResult{MetricID: metricID, Value: latest.Value}

		f := model.Filter{Industry: profile.Industry}
		b, err := s.CalculateBenchmark(ctx, metricID, f)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				result.Unavailable = true
				results = append(results, result)
				continue
			}
			return nil, err
		}

		comparison := s.compare(ctx, profile, metricID, latest.Value, b)
		result.Benchmark = &b
		result.Comparison = &comparison
		result.Confidence = confidenceLevel(b, profile)
		results = append(results, result)
	}
	return results, nil
}

// compare builds the peer comparison for one value against a benchmark.
func (s *Service) compare(ctx context.Context, profile model.BenchmarkingProfile, metricID string, value float64, b model.IndustryBenchmark) model.PeerComparison {
	rank := percentileRank(value, b)
	comparison := model.PeerComparison{
		YourPercentile: rank,
		Position:       positionFor(rank),
		// Sign convention: positive gap means behind for higher-is-better
		// metrics; display layers flip the sign for lower-is-better ones.
		GapToMedian:      b.Percentiles.P50 - value,
		GapToTopQuartile: b.Percentiles.P75 - value,
		GapToTopDecile:   b.Percentiles.P90 - value,
		SimilarPeers:     s.similarPeers(ctx, profile, metricID, value),
	}
	if trend, ok := s.organizationTrend(ctx, profile.OrganizationID, metricID); ok {
		comparison.Trend = &trend
	}
	return comparison
}

// similarPeers returns up to five anonymized peers from the same industry
// and size bucket whose latest value lies within the similarity band.
func (s *Service) similarPeers(ctx context.Context, profile model.BenchmarkingProfile, metricID string, value float64) []model.AnonymizedPeer {
	if value == 0 {
		return nil
	}
	candidates := s.profiles.Members(ctx, profile.Industry, profile.Size)
	delete(candidates, profile.OrganizationID)

	// Benchmarks for the position label are computed against the same
	// industry cohort the caller was compared to.
	b, err := s.CalculateBenchmark(ctx, metricID, model.Filter{Industry: profile.Industry})
	haveBenchmark := err == nil

	peers := make([]model.AnonymizedPeer, 0, maxSimilarPeers)
	for orgID := range candidates {
		latest, err := s.store.LatestFor(ctx, orgID, metricID)
		if err != nil {
			continue
		}
		if math.Abs(latest.Value-value)/value > s.similarityTolerance {
			continue
		}
		peerProfile, err := s.profiles.Get(ctx, orgID)
		if err != nil {
			continue
		}
		peer := model.AnonymizedPeer{
			ID:     s.anon.Pseudonym(orgID),
			Size:   peerProfile.Size,
			Region: latest.Region,
			Value:  latest.Value,
		}
		if haveBenchmark {
			peer.PerformanceLevel = positionFor(percentileRank(latest.Value, b))
		}
		peers = append(peers, peer)
		if len(peers) == maxSimilarPeers {
			break
		}
	}
	return peers
}

// confidenceLevel scores how much weight a comparison deserves. This is a
// heuristic, not a statistical confidence interval: bigger and fresher
// cohorts with a known industry score higher, capped at 1.0.
func confidenceLevel(b model.IndustryBenchmark, profile model.BenchmarkingProfile) float64 {
	score := confidenceBase
	switch {
	case b.SampleSize >= 20:
		score += confidenceLargeSample
	case b.SampleSize >= 10:
		score += confidenceSmallSample
	}
	age := time.Since(b.LatestDataAt)
	switch {
	case age < freshDataAge:
		score += confidenceFreshData
	case age < recentDataAge:
		score += confidenceRecentData
	}
	if profile.Industry != "" {
		score += confidenceKnownIndustry
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// CompareOrganizations returns a value matrix orgID -> metricID -> value.
// Missing observations come back as nil entries, never as zeros. When
// year is zero the latest observation per pair is used.
func (s *Service) CompareOrganizations(ctx context.Context, orgIDs, metricIDs []string, year int) (map[string]map[string]*float64, error) {
	if year < 0 {
		return nil, fmt.Errorf("%w: year must not be negative", ErrInvalidFilter)
	}

	// Duplicate IDs collapse to one row, so each row has exactly one
	// writer goroutine below.
	out := make(map[string]map[string]*float64, len(orgIDs))
	for _, orgID := range orgIDs {
		if _, ok := out[orgID]; ok {
			continue
		}
		out[orgID] = make(map[string]*float64, len(metricIDs))
	}

	// One goroutine per distinct organization; each writes only its own row.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for orgID, row := range out {
		orgID, row := orgID, row
		g.Go(func() error {
			for _, metricID := range metricIDs {
				row[metricID] = s.valueFor(gctx, orgID, metricID, year)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// valueFor picks the organization's observation for a metric: the latest
// overall, or the latest within a specific year.
func (s *Service) valueFor(ctx context.Context, orgID, metricID string, year int) *float64 {
	if year == 0 {
		latest, err := s.store.LatestFor(ctx, orgID, metricID)
		if err != nil {
			return nil
		}
		return &latest.Value
	}
	history := s.store.History(ctx, orgID, metricID)
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Year == year {
			return &history[i].Value
		}
	}
	return nil
}
