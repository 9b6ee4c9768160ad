// Package repository defines the data point and profile store contracts
// plus their sharded in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/esgbench/internal/domain/model"
)

// Query narrows a data point scan. Zero values mean "any".
type Query struct {
	Year         int
	Region       string
	VerifiedOnly bool
	// Organizations, when non-nil, restricts the scan to these IDs. The
	// engine resolves industry/size filters to an ID set via profiles.
	Organizations map[string]struct{}
}

// BulkResult reports the outcome of a batch ingestion. A batch never
// aborts on a bad record: rejects are collected, accepts applied.
type BulkResult struct {
	Accepted int     `json:"accepted"`
	Rejected int     `json:"rejected"`
	Errors   []error `json:"-"`
}

// DataPointStore is the append-only store of raw metric observations.
// Points are immutable once accepted; cache invalidation on ingestion is
// orchestrated by the service layer.
type DataPointStore interface {
	// Add validates and appends one point. Returns a *ValidationError
	// (wrapping ErrValidation) on rejection.
	Add(ctx context.Context, p model.MetricDataPoint) error

	// AddBulk applies Add to each point, allowing partial success.
	AddBulk(ctx context.Context, points []model.MetricDataPoint) BulkResult

	// Points returns all stored points for a metric matching q. Pure read.
	Points(ctx context.Context, metricID string, q Query) []model.MetricDataPoint

	// LatestFor returns the most recent point (by RecordedAt) for an
	// organization/metric pair, or ErrNotFound.
	LatestFor(ctx context.Context, organizationID, metricID string) (model.MetricDataPoint, error)

	// History returns all points for an organization/metric pair sorted
	// by RecordedAt ascending.
	History(ctx context.Context, organizationID, metricID string) []model.MetricDataPoint

	// Counts returns total and verified point counts across all metrics.
	Counts(ctx context.Context) (total, verified int)
}

// ProfileStore keeps benchmarking network membership.
type ProfileStore interface {
	// Put registers or replaces a profile and its privacy settings.
	Put(ctx context.Context, p model.BenchmarkingProfile, privacy model.PrivacySettings) error

	// Get returns a profile, or ErrNotFound.
	Get(ctx context.Context, organizationID string) (model.BenchmarkingProfile, error)

	// Privacy returns the organization's privacy settings, or ErrNotFound.
	Privacy(ctx context.Context, organizationID string) (model.PrivacySettings, error)

	// Count returns the number of registered organizations.
	Count(ctx context.Context) int

	// Industries returns participant counts keyed by industry.
	Industries(ctx context.Context) map[string]int

	// Members returns the IDs of organizations matching industry and size;
	// empty arguments match everything.
	Members(ctx context.Context, industry string, size model.SizeCategory) map[string]struct{}
}
