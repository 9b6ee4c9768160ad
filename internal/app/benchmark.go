package app

import (
	"context"
	"fmt"
	"time"

	cache "github.com/okian/esgbench/internal/adapters/cache"
	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/domain/anonymize"
	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/internal/domain/stats"
	"github.com/okian/esgbench/pkg/metrics"
)

// CalculateBenchmark returns the industry benchmark for a metric/filter
// tuple, computing and caching it on a miss. It returns
// ErrInsufficientData when the outlier-filtered sample is below the
// minimum sample size or the cohort fails the privacy gate.
func (s *Service) CalculateBenchmark(ctx context.Context, metricID string, f model.Filter) (model.IndustryBenchmark, error) {
	if err := validateFilter(metricID, f); err != nil {
		return model.IndustryBenchmark{}, err
	}

	key := cache.Key(metricID, f)
	lock := s.lockFor(metricID)
	lock.RLock()
	defer lock.RUnlock()

	if b, ok := s.cache.Get(ctx, key); ok {
		return b, nil
	}

	b, err := s.computeBenchmark(ctx, metricID, f)
	if err != nil {
		return model.IndustryBenchmark{}, err
	}
	s.cache.Put(ctx, key, b)
	metrics.RecordBenchmarkComputed()
	return b, nil
}

// computeBenchmark gathers the cohort, filters outliers, applies the
// sample-size and privacy gates, and derives the benchmark artifact.
// Callers hold at least the metric's read lock.
func (s *Service) computeBenchmark(ctx context.Context, metricID string, f model.Filter) (model.IndustryBenchmark, error) {
	q := repository.Query{
		Year:         f.Year,
		Region:       f.Region,
		VerifiedOnly: f.VerifiedOnly,
	}
	if f.Industry != "" || f.Size != "" {
		q.Organizations = s.profiles.Members(ctx, f.Industry, f.Size)
	}

	points := s.store.Points(ctx, metricID, q)
	if len(points) == 0 {
		metrics.RecordInsufficientData()
		return model.IndustryBenchmark{}, ErrInsufficientData
	}

	values := make([]float64, 0, len(points))
	var latestData time.Time
	for _, p := range points {
		values = append(values, p.Value)
		if p.RecordedAt.After(latestData) {
			latestData = p.RecordedAt
		}
	}

	// Statistics are always computed on the outlier-filtered sample. A
	// cleaned set below the minimum is "insufficient data", never a
	// benchmark with a small sample.
	cleaned := stats.RemoveOutliers(values)
	if len(cleaned) < s.minSampleSize {
		metrics.RecordInsufficientData()
		return model.IndustryBenchmark{}, ErrInsufficientData
	}
	if !anonymize.ReleaseAllowed(len(cleaned), s.effectiveThreshold(ctx, points)) {
		metrics.RecordInsufficientData()
		return model.IndustryBenchmark{}, ErrInsufficientData
	}

	b := model.IndustryBenchmark{
		MetricID: metricID,
		Industry: f.Industry,
		Region:   f.Region,
		Year:     f.Year,
		Percentiles: model.Percentiles{
			P10: stats.Percentile(cleaned, 10),
			P25: stats.Percentile(cleaned, 25),
			P50: stats.Percentile(cleaned, 50),
			P75: stats.Percentile(cleaned, 75),
			P90: stats.Percentile(cleaned, 90),
			P95: stats.Percentile(cleaned, 95),
		},
		Average:      stats.Mean(cleaned),
		StdDev:       stats.StdDev(cleaned),
		SampleSize:   len(cleaned),
		Leaders:      s.selectLeaders(points, cleaned, metricID),
		ComputedAt:   time.Now(),
		LatestDataAt: latestData,
	}
	return b, nil
}

// effectiveThreshold is the privacy release floor for a cohort: the
// configured default, raised to the strictest per-organization setting
// among the contributing organizations.
func (s *Service) effectiveThreshold(ctx context.Context, points []model.MetricDataPoint) int {
	threshold := s.aggregationThreshold
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p.OrganizationID]; ok {
			continue
		}
		seen[p.OrganizationID] = struct{}{}
		privacy, err := s.profiles.Privacy(ctx, p.OrganizationID)
		if err != nil {
			continue
		}
		if privacy.AggregationThreshold > threshold {
			threshold = privacy.AggregationThreshold
		}
	}
	return threshold
}

// selectLeaders ranks the latest value per organization, discarding
// organizations whose value fell outside the cleaned range, and returns
// the top performers as pseudonyms.
func (s *Service) selectLeaders(points []model.MetricDataPoint, cleaned []float64, metricID string) []string {
	if len(cleaned) == 0 {
		return nil
	}
	low, high := cleaned[0], cleaned[len(cleaned)-1]

	latest := make(map[string]model.MetricDataPoint, len(points))
	for _, p := range points {
		cur, ok := latest[p.OrganizationID]
		if !ok || p.RecordedAt.After(cur.RecordedAt) {
			latest[p.OrganizationID] = p
		}
	}

	cohort := make([]anonymize.Ranked, 0, len(latest))
	for org, p := range latest {
		if p.Value < low || p.Value > high {
			continue
		}
		cohort = append(cohort, anonymize.Ranked{OrganizationID: org, Value: p.Value})
	}
	return s.anon.Leaders(cohort, model.LowerIsBetter(metricID), s.maxLeaders)
}

// PercentileRank positions a raw value within the benchmark distribution,
// returning the highest percentile bucket whose cut point is at or below
// the value; values below p10 map to 5.
func (s *Service) PercentileRank(ctx context.Context, metricID string, value float64, f model.Filter) (float64, error) {
	b, err := s.CalculateBenchmark(ctx, metricID, f)
	if err != nil {
		return 0, err
	}
	return percentileRank(value, b), nil
}

// percentileRank walks the stored cut points highest first and returns
// the first bucket the value clears.
func percentileRank(value float64, b model.IndustryBenchmark) float64 {
	buckets := []struct {
		rank float64
		cut  float64
	}{
		{95, b.Percentiles.P95},
		{90, b.Percentiles.P90},
		{75, b.Percentiles.P75},
		{50, b.Percentiles.P50},
		{25, b.Percentiles.P25},
		{10, b.Percentiles.P10},
	}
	for _, bucket := range buckets {
		if value >= bucket.cut {
			return bucket.rank
		}
	}
	return 5
}

// positionFor maps a percentile rank to its qualitative bucket. Buckets
// are contiguous and exhaustive over [0,100].
func positionFor(percentile float64) model.Position {
	switch {
	case percentile >= 90:
		return model.TopDecile
	case percentile >= 75:
		return model.TopQuartile
	case percentile >= 50:
		return model.AboveMedian
	case percentile >= 25:
		return model.BelowMedian
	case percentile >= 10:
		return model.BottomQuartile
	default:
		return model.BottomDecile
	}
}

// ImprovementPotential quantifies the distance from a current value to a
// target percentile of the benchmark. Positive improvement always means
// "distance still to cover", regardless of the metric's direction.
func (s *Service) ImprovementPotential(ctx context.Context, metricID string, currentValue, targetPercentile float64, f model.Filter) (model.Potential, error) {
	b, err := s.CalculateBenchmark(ctx, metricID, f)
	if err != nil {
		return model.Potential{}, err
	}

	target, err := cutPointFor(b, targetPercentile)
	if err != nil {
		return model.Potential{}, err
	}

	improvement := target - currentValue
	if model.LowerIsBetter(metricID) {
		improvement = currentValue - target
	}
	var pct float64
	if currentValue != 0 {
		pct = improvement / currentValue * 100
	}
	return model.Potential{
		TargetValue:      target,
		Improvement:      improvement,
		PercentageChange: pct,
	}, nil
}

// cutPointFor resolves one of the stored percentile cut points.
func cutPointFor(b model.IndustryBenchmark, percentile float64) (float64, error) {
	switch percentile {
	case 10:
		return b.Percentiles.P10, nil
	case 25:
		return b.Percentiles.P25, nil
	case 50:
		return b.Percentiles.P50, nil
	case 75:
		return b.Percentiles.P75, nil
	case 90:
		return b.Percentiles.P90, nil
	case 95:
		return b.Percentiles.P95, nil
	default:
		return 0, fmt.Errorf("%w: target percentile must be one of 10, 25, 50, 75, 90, 95", ErrInvalidFilter)
	}
}

// validateFilter rejects malformed filter combinations up front.
func validateFilter(metricID string, f model.Filter) error {
	if metricID == "" {
		return fmt.Errorf("%w: metric id is required", ErrInvalidFilter)
	}
	if f.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", ErrInvalidFilter)
	}
	switch f.Size {
	case "", model.SizeSmall, model.SizeMedium, model.SizeLarge:
	default:
		return fmt.Errorf("%w: unknown size category %q", ErrInvalidFilter, f.Size)
	}
	return nil
}
