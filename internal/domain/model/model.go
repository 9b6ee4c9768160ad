// Package model contains domain types passed between layers.
package model

import "time"

// SizeCategory buckets organizations by headcount/revenue band.
type SizeCategory string

// Size categories.
const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
)

// ParticipationLevel describes how much of the network an organization
// contributes to and may read from.
type ParticipationLevel string

// Participation levels.
const (
	ParticipationBasic    ParticipationLevel = "basic"
	ParticipationStandard ParticipationLevel = "standard"
	ParticipationPremium  ParticipationLevel = "premium"
)

// MetricDataPoint is a single ESG metric observation reported by one
// organization. Points are immutable once stored: the store appends,
// never mutates.
type MetricDataPoint struct {
	OrganizationID string    `json:"organization_id"`
	MetricID       string    `json:"metric_id"`
	Value          float64   `json:"value"`
	Unit           string    `json:"unit"`
	Year           int       `json:"year"`
	Region         string    `json:"region,omitempty"`
	Verified       bool      `json:"verified"`
	Methodology    string    `json:"methodology,omitempty"` // required when Verified
	RecordedAt     time.Time `json:"recorded_at"`
}

// BenchmarkingProfile describes an organization participating in the
// benchmarking network. Created on join, never deleted while the
// organization participates.
type BenchmarkingProfile struct {
	OrganizationID     string             `json:"organization_id"`
	Industry           string             `json:"industry"`
	Size               SizeCategory       `json:"size"`
	Revenue            float64            `json:"revenue,omitempty"`
	Employees          int                `json:"employees,omitempty"`
	Regions            []string           `json:"regions,omitempty"`
	ParticipationLevel ParticipationLevel `json:"participation_level"`
	JoinedAt           time.Time          `json:"joined_at"`
}

// PrivacySettings are supplied per organization when joining the network.
type PrivacySettings struct {
	// AggregationThreshold is the smallest cohort this organization accepts
	// being aggregated into. The strictest member of a cohort wins.
	AggregationThreshold int `json:"aggregation_threshold,omitempty"`
	// Anonymize forces pseudonymous output for this organization.
	Anonymize bool `json:"anonymize"`
}

// Filter narrows which data points contribute to a benchmark.
type Filter struct {
	Industry     string       `json:"industry,omitempty" yaml:"industry,omitempty"`
	Region       string       `json:"region,omitempty" yaml:"region,omitempty"`
	Year         int          `json:"year,omitempty" yaml:"year,omitempty"` // 0 = latest/all years
	Size         SizeCategory `json:"size,omitempty" yaml:"size,omitempty"`
	VerifiedOnly bool         `json:"verified_only,omitempty" yaml:"verified_only,omitempty"`
}

// Percentiles holds the interpolated distribution cut points of a benchmark.
type Percentiles struct {
	P10 float64 `json:"p10" yaml:"p10"`
	P25 float64 `json:"p25" yaml:"p25"`
	P50 float64 `json:"p50" yaml:"p50"`
	P75 float64 `json:"p75" yaml:"p75"`
	P90 float64 `json:"p90" yaml:"p90"`
	P95 float64 `json:"p95" yaml:"p95"`
}

// IndustryBenchmark is the derived, cached aggregate for one
// (metric, filter) combination. It is always computed from
// outlier-filtered values and never from fewer than the configured
// minimum sample size.
type IndustryBenchmark struct {
	MetricID    string      `json:"metric_id" yaml:"metric_id"`
	Industry    string      `json:"industry" yaml:"industry"`
	Region      string      `json:"region,omitempty" yaml:"region,omitempty"`
	Year        int         `json:"year,omitempty" yaml:"year,omitempty"`
	Percentiles Percentiles `json:"percentiles" yaml:"percentiles"`
	Average     float64     `json:"average" yaml:"average"`
	StdDev      float64     `json:"std_dev" yaml:"std_dev"`
	SampleSize  int         `json:"sample_size" yaml:"sample_size"`
	Leaders     []string    `json:"leaders" yaml:"leaders"` // pseudonyms, never raw IDs
	ComputedAt  time.Time   `json:"computed_at" yaml:"computed_at"`
	// LatestDataAt is the newest contributing observation; confidence
	// scoring uses it as the benchmark's data age.
	LatestDataAt time.Time `json:"latest_data_at" yaml:"latest_data_at"`
}

// Position is the qualitative bucket for a percentile rank.
type Position string

// Positions, contiguous and exhaustive over [0,100].
const (
	TopDecile      Position = "top_decile"
	TopQuartile    Position = "top_quartile"
	AboveMedian    Position = "above_median"
	BelowMedian    Position = "below_median"
	BottomQuartile Position = "bottom_quartile"
	BottomDecile   Position = "bottom_decile"
)

// AnonymizedPeer is a peer organization rendered safe for output.
// The id is a pseudonym; engine outputs alone must never allow
// recovering the underlying organization ID.
type AnonymizedPeer struct {
	ID               string       `json:"id"`
	Size             SizeCategory `json:"size"`
	Region           string       `json:"region,omitempty"`
	Value            float64      `json:"value"`
	PerformanceLevel Position     `json:"performance_level"`
}

// TrendDirection classifies the slope of a history.
type TrendDirection string

// Trend directions.
const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Trend summarizes one organization's trajectory for one metric.
type Trend struct {
	Direction   TrendDirection `json:"direction"`
	RatePercent float64        `json:"rate_percent"`
	Periods     int            `json:"periods"`
}

// PeerComparison positions one organization's value against a benchmark.
// Derived on demand, never stored.
type PeerComparison struct {
	YourPercentile   float64          `json:"your_percentile"`
	Position         Position         `json:"position"`
	GapToMedian      float64          `json:"gap_to_median"`
	GapToTopQuartile float64          `json:"gap_to_top_quartile"`
	GapToTopDecile   float64          `json:"gap_to_top_decile"`
	SimilarPeers     []AnonymizedPeer `json:"similar_peers"`
	Trend            *Trend           `json:"trend,omitempty"`
}

// BenchmarkResult composes everything a caller needs for one metric.
type BenchmarkResult struct {
	MetricID   string             `json:"metric_id"`
	Value      float64            `json:"value"`
	Benchmark  *IndustryBenchmark `json:"benchmark,omitempty"`
	Comparison *PeerComparison    `json:"comparison,omitempty"`
	Confidence float64            `json:"confidence"`
	// Unavailable is set when the cohort has not cleared the sample-size
	// or privacy gates yet.
	Unavailable bool `json:"unavailable,omitempty"`
}

// TrendPoint is one year of an industry-wide trend series.
type TrendPoint struct {
	Year       int     `json:"year"`
	Average    float64 `json:"average"`
	Median     float64 `json:"median"`
	SampleSize int     `json:"sample_size"`
}

// Potential quantifies the distance to a target percentile.
type Potential struct {
	TargetValue      float64 `json:"target_value"`
	Improvement      float64 `json:"improvement"`
	PercentageChange float64 `json:"percentage_change"`
}

// NetworkEffect captures aggregate health of the whole benchmarking
// population. Recomputed after every accepted ingestion batch.
type NetworkEffect struct {
	ParticipantCount        int     `json:"participant_count"`
	DataRichness            float64 `json:"data_richness"`             // [0,1]
	InsightQuality          float64 `json:"insight_quality"`           // [0,1]
	CollectiveLearningScore float64 `json:"collective_learning_score"` // [0,1]
}

// JoinReceipt is returned to an organization that joined the network.
type JoinReceipt struct {
	ProfileID          string        `json:"profile_id"`
	Benefits           []string      `json:"benefits"`
	ContributionImpact NetworkEffect `json:"contribution_impact"`
}
