// Command seed-data loads a synthetic benchmarking population into a
// running benchd instance.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/esgbench/internal/seed"
	"github.com/okian/esgbench/pkg/logger"
)

func main() {
	url := flag.String("url", "http://localhost:9090", "base URL of the service")
	orgs := flag.Int("orgs", 200, "number of organizations to create")
	years := flag.Int("years", 3, "reporting years per organization")
	rngSeed := flag.Int64("seed", 0, "RNG seed; 0 means time-based")
	workers := flag.Int("workers", 8, "concurrent submission workers")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx := context.Background()
	err := seed.Run(ctx, seed.Config{
		BaseURL:       *url,
		Organizations: *orgs,
		Years:         *years,
		Seed:          *rngSeed,
		Timeout:       *timeout,
		Workers:       *workers,
	})
	if err != nil {
		log.Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "seeding complete")
}
