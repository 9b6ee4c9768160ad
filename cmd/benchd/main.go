// Command benchd runs the ESG peer-benchmarking service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/esgbench/internal/adapters/cache"
	"github.com/okian/esgbench/internal/adapters/http/api"
	"github.com/okian/esgbench/internal/adapters/persistence"
	"github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/app"
	"github.com/okian/esgbench/internal/config"
	"github.com/okian/esgbench/internal/domain/anonymize"
	"github.com/okian/esgbench/pkg/logger"
	"github.com/okian/esgbench/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	benchCache, err := cache.New(cache.WithSize(cfg.CacheSize))
	if err != nil {
		log.Error(ctx, "failed to create benchmark cache", logger.Error(err))
		return
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithStore(repository.NewMemStore(repository.WithShardCount(cfg.ShardCount))),
		app.WithCache(benchCache),
		app.WithAnonymizer(anonymize.New(
			anonymize.WithSalt(cfg.PseudonymSalt),
			anonymize.WithEnabled(cfg.Anonymize),
		)),
		app.WithMinSampleSize(cfg.MinSampleSize),
		app.WithAggregationThreshold(cfg.AggregationThreshold),
		app.WithSimilarityTolerance(cfg.SimilarityTolerance),
		app.WithTrendYears(cfg.TrendYears),
		app.WithMaxLeaders(cfg.MaxLeaders),
		app.WithMaxExportMetrics(cfg.MaxExportMetrics),
	}
	if cfg.DataDir != "" {
		journal, err := persistence.OpenBadger(cfg.DataDir)
		if err != nil {
			log.Error(ctx, "failed to open journal", logger.String("dir", cfg.DataDir), logger.Error(err))
			return
		}
		opts = append(opts, app.WithJournal(journal))
	}

	svc, err := app.New(opts...)
	if err != nil {
		log.Error(ctx, "failed to create engine", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start engine", logger.Error(err))
		return
	}
	defer svc.Stop()

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	mux.Handle("/metrics", metrics.GetHandler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}
