package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/metrics"
)

// defaultShardCount balances lock granularity against bookkeeping.
const defaultShardCount = 8

// MemStore is the sharded in-memory DataPointStore. Shards are keyed by
// metric ID, so writes for one metric never contend with reads of another.
type MemStore struct {
	shards []*shard
}

// shard holds every point for the metrics hashing into it.
type shard struct {
	mu sync.RWMutex
	// points keyed by metricID|year|region
	points map[string][]model.MetricDataPoint
	// byOrg keyed by organizationID|metricID, ordered by RecordedAt
	byOrg map[string][]model.MetricDataPoint
	// counts per shard, rolled up by Counts
	total    int
	verified int
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithShardCount sets the number of metric shards.
func WithShardCount(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.shards = make([]*shard, n)
		}
	}
}

// NewMemStore creates an empty sharded store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{shards: make([]*shard, defaultShardCount)}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{
			points: make(map[string][]model.MetricDataPoint),
			byOrg:  make(map[string][]model.MetricDataPoint),
		}
	}
	return s
}

func (s *MemStore) shardFor(metricID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(metricID))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

func pointKey(metricID string, year int, region string) string {
	return metricID + "|" + strconv.Itoa(year) + "|" + region
}

func orgKey(organizationID, metricID string) string {
	return organizationID + "|" + metricID
}

// validate enforces the ingestion contract: metric, unit and a usable
// value are mandatory; negative values are out of range; verified points
// must carry a methodology reference.
func validate(p model.MetricDataPoint) error {
	switch {
	case strings.TrimSpace(p.MetricID) == "":
		return &ValidationError{Field: "metric_id", Reason: "missing"}
	case strings.TrimSpace(p.OrganizationID) == "":
		return &ValidationError{Field: "organization_id", Reason: "missing"}
	case strings.TrimSpace(p.Unit) == "":
		return &ValidationError{Field: "unit", Reason: "missing"}
	case math.IsNaN(p.Value) || math.IsInf(p.Value, 0):
		return &ValidationError{Field: "value", Reason: "not a finite number"}
	case p.Value < 0:
		return &ValidationError{Field: "value", Reason: "must be >= 0"}
	case p.Year <= 0:
		return &ValidationError{Field: "year", Reason: "missing"}
	case p.Verified && strings.TrimSpace(p.Methodology) == "":
		return &ValidationError{Field: "methodology", Reason: "required for verified points"}
	}
	return nil
}

// Add validates and appends one point.
func (s *MemStore) Add(_ context.Context, p model.MetricDataPoint) error {
	if err := validate(p); err != nil {
		metrics.RecordPointRejected()
		return err
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now()
	}

	sh := s.shardFor(p.MetricID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	pk := pointKey(p.MetricID, p.Year, p.Region)
	sh.points[pk] = append(sh.points[pk], p)

	ok := orgKey(p.OrganizationID, p.MetricID)
	history := append(sh.byOrg[ok], p)
	// Keep per-org history ordered by RecordedAt; appends are usually
	// already in order so this is a no-op in the common case.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].RecordedAt.Before(history[j].RecordedAt)
	})
	sh.byOrg[ok] = history

	sh.total++
	if p.Verified {
		sh.verified++
	}
	metrics.RecordPointAccepted()
	return nil
}

// AddBulk applies Add per point; one bad record never aborts the batch.
func (s *MemStore) AddBulk(ctx context.Context, points []model.MetricDataPoint) BulkResult {
	var res BulkResult
	for _, p := range points {
		if err := s.Add(ctx, p); err != nil {
			res.Rejected++
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Accepted++
	}
	return res
}

// Points returns every stored point for a metric matching q.
func (s *MemStore) Points(_ context.Context, metricID string, q Query) []model.MetricDataPoint {
	sh := s.shardFor(metricID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	prefix := metricID + "|"
	var out []model.MetricDataPoint
	for key, pts := range sh.points {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, p := range pts {
			if q.Year != 0 && p.Year != q.Year {
				continue
			}
			if q.Region != "" && p.Region != q.Region {
				continue
			}
			if q.VerifiedOnly && !p.Verified {
				continue
			}
			if q.Organizations != nil {
				if _, ok := q.Organizations[p.OrganizationID]; !ok {
					continue
				}
			}
			out = append(out, p)
		}
	}
	return out
}

// LatestFor returns the most recent point for an org/metric pair.
func (s *MemStore) LatestFor(_ context.Context, organizationID, metricID string) (model.MetricDataPoint, error) {
	sh := s.shardFor(metricID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	history := sh.byOrg[orgKey(organizationID, metricID)]
	if len(history) == 0 {
		return model.MetricDataPoint{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns all points for an org/metric pair, oldest first.
func (s *MemStore) History(_ context.Context, organizationID, metricID string) []model.MetricDataPoint {
	sh := s.shardFor(metricID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	history := sh.byOrg[orgKey(organizationID, metricID)]
	out := make([]model.MetricDataPoint, len(history))
	copy(out, history)
	return out
}

// Counts returns total and verified point counts across all shards.
func (s *MemStore) Counts(_ context.Context) (int, int) {
	var total, verified int
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += sh.total
		verified += sh.verified
		sh.mu.RUnlock()
	}
	return total, verified
}

// MemProfileStore is the in-memory ProfileStore.
type MemProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]model.BenchmarkingProfile
	privacy  map[string]model.PrivacySettings
}

// NewMemProfileStore creates an empty profile store.
func NewMemProfileStore() *MemProfileStore {
	return &MemProfileStore{
		profiles: make(map[string]model.BenchmarkingProfile),
		privacy:  make(map[string]model.PrivacySettings),
	}
}

// Put registers or replaces a profile.
func (s *MemProfileStore) Put(_ context.Context, p model.BenchmarkingProfile, privacy model.PrivacySettings) error {
	if strings.TrimSpace(p.OrganizationID) == "" {
		return &ValidationError{Field: "organization_id", Reason: "missing"}
	}
	if strings.TrimSpace(p.Industry) == "" {
		return &ValidationError{Field: "industry", Reason: "missing"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.OrganizationID] = p
	s.privacy[p.OrganizationID] = privacy
	metrics.UpdateParticipantCount(len(s.profiles))
	return nil
}

// Get returns a profile by organization ID.
func (s *MemProfileStore) Get(_ context.Context, organizationID string) (model.BenchmarkingProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[organizationID]
	if !ok {
		return model.BenchmarkingProfile{}, ErrNotFound
	}
	return p, nil
}

// Privacy returns an organization's privacy settings.
func (s *MemProfileStore) Privacy(_ context.Context, organizationID string) (model.PrivacySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.privacy[organizationID]
	if !ok {
		return model.PrivacySettings{}, ErrNotFound
	}
	return p, nil
}

// Count returns the number of registered organizations.
func (s *MemProfileStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Industries returns participant counts per industry.
func (s *MemProfileStore) Industries(_ context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, p := range s.profiles {
		out[p.Industry]++
	}
	return out
}

// Members returns organization IDs matching industry and size.
func (s *MemProfileStore) Members(_ context.Context, industry string, size model.SizeCategory) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for id, p := range s.profiles {
		if industry != "" && p.Industry != industry {
			continue
		}
		if size != "" && p.Size != size {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
