package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
)

// bulkBatchSize bounds how many points travel per bulk request.
const bulkBatchSize = 500

// Run generates a population and submits it to a running service:
// one join call per organization, then the observations in bulk batches.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	log := logger.Get().Named("seed")
	pop := Generate(cfg)
	log.Info(ctx, "population generated", logger.String("population", pop.String()))

	client := &http.Client{Timeout: cfg.Timeout}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for orgID, profile := range pop.Profiles {
		orgID, profile := orgID, profile
		g.Go(func() error {
			body := map[string]any{"profile": profile, "privacy": pop.Privacy[orgID]}
			return post(gctx, client, cfg.BaseURL+"/network/join", body, http.StatusCreated)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("join organizations: %w", err)
	}
	log.Info(ctx, "organizations joined", logger.Int("count", len(pop.Profiles)))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for start := 0; start < len(pop.Points); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(pop.Points) {
			end = len(pop.Points)
		}
		batch := pop.Points[start:end]
		g.Go(func() error {
			return post(gctx, client, cfg.BaseURL+"/datapoints/bulk", batch, http.StatusAccepted)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("submit data points: %w", err)
	}
	log.Info(ctx, "data points submitted", logger.Int("count", len(pop.Points)))

	return verify(ctx, client, cfg, log)
}

// verify spot-checks one benchmark per industry to confirm the service
// releases aggregates from the seeded data.
func verify(ctx context.Context, client *http.Client, cfg Config, log logger.Logger) error {
	released := 0
	for _, industry := range industries {
		url := fmt.Sprintf("%s/benchmarks?metric_id=ghg_intensity&industry=%s", cfg.BaseURL, industry)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build verify request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch benchmark: %w", err)
		}
		if resp.StatusCode == http.StatusOK {
			var b model.IndustryBenchmark
			if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
				resp.Body.Close()
				return fmt.Errorf("decode benchmark: %w", err)
			}
			released++
			log.Info(ctx, "benchmark released",
				logger.String("industry", industry),
				logger.Int("sample_size", b.SampleSize),
				logger.Float64("median", b.Percentiles.P50))
		}
		resp.Body.Close()
	}
	if released == 0 {
		return fmt.Errorf("no industry benchmark released; population too small")
	}
	return nil
}

// post submits a JSON body and checks the expected status code.
func post(ctx context.Context, client *http.Client, url string, body any, wantStatus int) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
