package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/esgbench/internal/domain/model"
)

// stableBandPercent bounds the rate regarded as neither improving nor
// declining: |rate| <= 5% is stable.
const stableBandPercent = 5.0

// organizationTrend computes one organization's trajectory for a metric
// from its reporting history. Needs at least two observations.
func (s *Service) organizationTrend(ctx context.Context, organizationID, metricID string) (model.Trend, bool) {
	history := s.store.History(ctx, organizationID, metricID)
	if len(history) < 2 {
		return model.Trend{}, false
	}
	first := history[0].Value
	last := history[len(history)-1].Value
	if first == 0 {
		return model.Trend{}, false
	}

	rate := (last - first) / first * 100

	// Direction respects the metric's orientation: a falling emissions
	// intensity is an improvement.
	effective := rate
	if model.LowerIsBetter(metricID) {
		effective = -rate
	}
	direction := model.TrendStable
	switch {
	case effective > stableBandPercent:
		direction = model.TrendImproving
	case effective < -stableBandPercent:
		direction = model.TrendDeclining
	}

	return model.Trend{
		Direction:   direction,
		RatePercent: rate,
		Periods:     len(history),
	}, true
}

// Trend returns the industry-wide series for the last years reporting
// periods (the configured default when years is zero). Years that fail
// the sample-size or privacy gates are omitted, never zero-filled.
func (s *Service) Trend(ctx context.Context, metricID string, f model.Filter, years int) ([]model.TrendPoint, error) {
	if years < 0 {
		return nil, fmt.Errorf("%w: years must not be negative", ErrInvalidFilter)
	}
	if years == 0 {
		years = s.trendYears
	}
	if err := validateFilter(metricID, f); err != nil {
		return nil, err
	}

	current := time.Now().Year()
	series := make([]model.TrendPoint, 0, years)
	for year := current - years + 1; year <= current; year++ {
		yearFilter := f
		yearFilter.Year = year
		b, err := s.CalculateBenchmark(ctx, metricID, yearFilter)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				continue
			}
			return nil, err
		}
		series = append(series, model.TrendPoint{
			Year:       year,
			Average:    b.Average,
			Median:     b.Percentiles.P50,
			SampleSize: b.SampleSize,
		})
	}
	return series, nil
}
