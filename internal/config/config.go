// Package config defines engine configuration and its loading hooks.
//
// Conventions:
// - New() builds a Config with safe defaults.
// - Load() layers defaults, an optional YAML file, and ESGB_* env vars.
// - External errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MinSampleSize is the smallest outlier-filtered cohort a benchmark
	// may be computed from.
	MinSampleSize int `koanf:"min_sample_size"`

	// AggregationThreshold is the privacy floor: aggregates for cohorts
	// smaller than this are never released, independent of MinSampleSize.
	AggregationThreshold int `koanf:"aggregation_threshold"`

	// ShardCount configures the number of metric shards in the data store.
	ShardCount int `koanf:"shard_count"`

	// CacheSize bounds the number of memoized benchmarks.
	CacheSize int `koanf:"cache_size"`

	// SimilarityTolerance is the relative distance within which a peer
	// value counts as similar (0.20 = ±20%).
	SimilarityTolerance float64 `koanf:"similarity_tolerance"`

	// TrendYears is the default lookback for industry trend series.
	TrendYears int `koanf:"trend_years"`

	// MaxLeaders caps the leader list per benchmark.
	MaxLeaders int `koanf:"max_leaders"`

	// Anonymize toggles pseudonymous output. Only disable for internal
	// deployments.
	Anonymize bool `koanf:"anonymize"`

	// PseudonymSalt keeps pseudonyms stable across restarts. Empty means
	// a random per-process salt.
	PseudonymSalt string `koanf:"pseudonym_salt"`

	// DataDir, when set, enables the badger journal for warm starts.
	DataDir string `koanf:"data_dir"`

	// MaxExportMetrics caps the metric list accepted by the export API.
	MaxExportMetrics int `koanf:"max_export_metrics"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		MinSampleSize:        10,
		AggregationThreshold: 5,
		ShardCount:           8,
		CacheSize:            1024,
		SimilarityTolerance:  0.20,
		TrendYears:           5,
		MaxLeaders:           5,
		Anonymize:            true,
		MaxExportMetrics:     25,
	}
}
