package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// exportReport is the serialized benchmark report envelope.
type exportReport struct {
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Filter      model.Filter  `json:"filter" yaml:"filter"`
	Benchmarks  []exportEntry `json:"benchmarks" yaml:"benchmarks"`
}

// exportEntry holds one metric's benchmark plus a plain-language reading
// of it, so the report is usable without the raw numbers.
type exportEntry struct {
	MetricID       string                   `json:"metric_id" yaml:"metric_id"`
	Benchmark      *model.IndustryBenchmark `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	Interpretation string                   `json:"interpretation" yaml:"interpretation"`
}

// Export renders benchmarks for the given metrics as a JSON or YAML
// report. Metrics without enough data are included with an explanatory
// note rather than dropped, so the report shape is stable.
func (s *Service) Export(ctx context.Context, metricIDs []string, f model.Filter, format string) ([]byte, error) {
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if len(metricIDs) == 0 {
		return nil, fmt.Errorf("%w: no metrics requested", ErrInvalidFilter)
	}
	if len(metricIDs) > s.maxExportMetrics {
		return nil, fmt.Errorf("%w: at most %d metrics per export", ErrInvalidFilter, s.maxExportMetrics)
	}

	report := exportReport{
		GeneratedAt: time.Now().UTC(),
		Filter:      f,
		Benchmarks:  make([]exportEntry, 0, len(metricIDs)),
	}
	for _, metricID := range metricIDs {
		entry := exportEntry{MetricID: metricID}
		benchmark, err := s.CalculateBenchmark(ctx, metricID, f)
		switch {
		case err == nil:
			b := benchmark
			entry.Benchmark = &b
			entry.Interpretation = interpret(metricID, benchmark)
		case errors.Is(err, ErrInsufficientData):
			entry.Interpretation = "not enough participating organizations to release this benchmark"
		default:
			return nil, err
		}
		report.Benchmarks = append(report.Benchmarks, entry)
	}

	s.logger.Debug(ctx, "benchmark report exported",
		logger.Int("metrics", len(metricIDs)),
		logger.String("format", format))

	if format == FormatYAML {
		return yaml.Marshal(report)
	}
	return json.MarshalIndent(report, "", "  ")
}

// interpret summarizes a benchmark in one sentence.
func interpret(metricID string, b model.IndustryBenchmark) string {
	def, ok := model.Lookup(metricID)
	name := metricID
	if ok {
		name = def.Name
	}
	direction := "higher values are better"
	if model.LowerIsBetter(metricID) {
		direction = "lower values are better"
	}
	return fmt.Sprintf("%s: median %.2f across %d organizations (average %.2f); %s",
		name, b.Percentiles.P50, b.SampleSize, b.Average, direction)
}
