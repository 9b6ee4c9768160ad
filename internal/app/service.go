// Package app provides the benchmarking engine service: ingestion,
// benchmark computation, peer comparison, trend analysis, and network
// health, orchestrated over the store, cache, and anonymization layers.
package app

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	cache "github.com/okian/esgbench/internal/adapters/cache"
	persistence "github.com/okian/esgbench/internal/adapters/persistence"
	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/domain/anonymize"
	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
)

// Default engine configuration constants.
const (
	defaultMinSampleSize        = 10
	defaultAggregationThreshold = 5
	defaultSimilarityTolerance  = 0.20
	defaultTrendYears           = 5
	defaultMaxLeaders           = 5
	defaultMaxExportMetrics     = 25
	metricLockCount             = 64
)

// Service is the benchmarking engine. All shared state lives in the
// injected store and cache; the service itself holds only configuration,
// so one process can run several isolated instances.
type Service struct {
	store    repository.DataPointStore
	profiles repository.ProfileStore
	cache    *cache.BenchmarkCache
	anon     *anonymize.Anonymizer

	// Optional warm-start journal.
	journal persistence.Journal
	writer  *persistence.Writer

	// Configuration
	minSampleSize        int
	aggregationThreshold int
	similarityTolerance  float64
	trendYears           int
	maxLeaders           int
	maxExportMetrics     int

	// Per-metric reader/writer locks: ingestion for a metric excludes
	// benchmark computation for the same metric, so a cached result can
	// never be built from a half-invalidated view. Store and cache are
	// always touched in the fixed order store -> cache.
	locks [metricLockCount]sync.RWMutex

	// Last computed network effect, guarded separately.
	effectMu   sync.RWMutex
	lastEffect model.NetworkEffect

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the data point store.
func WithStore(store repository.DataPointStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProfiles sets the profile store.
func WithProfiles(profiles repository.ProfileStore) Option {
	return func(s *Service) {
		if profiles != nil {
			s.profiles = profiles
		}
	}
}

// WithCache sets the benchmark cache.
func WithCache(c *cache.BenchmarkCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithAnonymizer sets the anonymization layer.
func WithAnonymizer(a *anonymize.Anonymizer) Option {
	return func(s *Service) {
		if a != nil {
			s.anon = a
		}
	}
}

// WithJournal enables the warm-start journal.
func WithJournal(j persistence.Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithMinSampleSize sets the statistical sample-size gate.
func WithMinSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSampleSize = n
		}
	}
}

// WithAggregationThreshold sets the privacy release floor.
func WithAggregationThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.aggregationThreshold = n
		}
	}
}

// WithSimilarityTolerance sets the peer similarity band (0.20 = ±20%).
func WithSimilarityTolerance(tol float64) Option {
	return func(s *Service) {
		if tol > 0 && tol < 1 {
			s.similarityTolerance = tol
		}
	}
}

// WithTrendYears sets the default industry trend lookback.
func WithTrendYears(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trendYears = n
		}
	}
}

// WithMaxLeaders caps the leader list per benchmark.
func WithMaxLeaders(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaders = n
		}
	}
}

// WithMaxExportMetrics caps the export metric list.
func WithMaxExportMetrics(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxExportMetrics = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration. Collaborators not
// injected via options are created in-memory.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		minSampleSize:        defaultMinSampleSize,
		aggregationThreshold: defaultAggregationThreshold,
		similarityTolerance:  defaultSimilarityTolerance,
		trendYears:           defaultTrendYears,
		maxLeaders:           defaultMaxLeaders,
		maxExportMetrics:     defaultMaxExportMetrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.profiles == nil {
		s.profiles = repository.NewMemProfileStore()
	}
	if s.cache == nil {
		c, err := cache.New()
		if err != nil {
			return nil, fmt.Errorf("create benchmark cache: %w", err)
		}
		s.cache = c
	}
	if s.anon == nil {
		s.anon = anonymize.New()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	return s, nil
}

// Start replays the journal (when configured) into the in-memory stores
// and begins write-behind journaling for new data.
func (s *Service) Start(ctx context.Context) error {
	if s.started {
		return nil
	}
	if s.journal != nil {
		var profileCount, pointCount int
		err := s.journal.LoadProfiles(ctx, func(p model.BenchmarkingProfile, privacy model.PrivacySettings) error {
			if err := s.profiles.Put(ctx, p, privacy); err != nil {
				return err
			}
			profileCount++
			return nil
		})
		if err != nil {
			return fmt.Errorf("replay profiles: %w", err)
		}
		// Replay goes straight to the store so points are not re-journaled.
		err = s.journal.LoadPoints(ctx, func(p model.MetricDataPoint) error {
			if err := s.store.Add(ctx, p); err != nil {
				return err
			}
			pointCount++
			return nil
		})
		if err != nil {
			return fmt.Errorf("replay points: %w", err)
		}
		s.writer = persistence.NewWriter(s.journal, persistence.WithLogger(s.logger.Named("journal")))
		s.logger.Info(ctx, "journal replayed",
			logger.Int("profiles", profileCount),
			logger.Int("points", pointCount))
	}
	s.refreshNetworkEffect(ctx)
	s.started = true
	return nil
}

// Stop flushes the write-behind journal and releases it.
func (s *Service) Stop() {
	if s.writer != nil {
		s.writer.Close()
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
	s.started = false
}

// lockFor returns the reader/writer lock shard for a metric.
func (s *Service) lockFor(metricID string) *sync.RWMutex {
	h := fnv.New32a()
	h.Write([]byte(metricID))
	return &s.locks[int(h.Sum32())%metricLockCount]
}
