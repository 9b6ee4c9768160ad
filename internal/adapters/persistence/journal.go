// Package persistence provides the warm-start journal: accepted data
// points and profiles are written behind the in-memory store and replayed
// at startup. The in-memory store stays authoritative; losing the tail of
// the journal on crash costs warm-start completeness, not correctness.
package persistence

import (
	"context"

	"github.com/okian/esgbench/internal/domain/model"
)

// Journal persists points and profiles across restarts.
type Journal interface {
	// AppendPoint durably records one accepted data point.
	AppendPoint(ctx context.Context, p model.MetricDataPoint) error

	// SaveProfile durably records a profile and its privacy settings.
	SaveProfile(ctx context.Context, p model.BenchmarkingProfile, privacy model.PrivacySettings) error

	// LoadPoints streams every journaled point to fn in append order.
	LoadPoints(ctx context.Context, fn func(model.MetricDataPoint) error) error

	// LoadProfiles streams every journaled profile to fn.
	LoadProfiles(ctx context.Context, fn func(model.BenchmarkingProfile, model.PrivacySettings) error) error

	// Close releases the underlying storage.
	Close() error
}
