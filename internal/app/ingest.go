package app

import (
	"context"
	"time"

	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
)

// AddDataPoint validates and stores one observation. On acceptance, every
// cached benchmark for the point's metric is invalidated and the network
// effect is recomputed. Rejections return a *repository.ValidationError.
func (s *Service) AddDataPoint(ctx context.Context, p model.MetricDataPoint) error {
	if err := s.ingestOne(ctx, p); err != nil {
		return err
	}
	s.refreshNetworkEffect(ctx)
	return nil
}

// AddBulk ingests a batch with partial success: one bad record never
// aborts the rest. The network effect is recomputed once per batch.
func (s *Service) AddBulk(ctx context.Context, points []model.MetricDataPoint) repository.BulkResult {
	var res repository.BulkResult
	for _, p := range points {
		if err := s.ingestOne(ctx, p); err != nil {
			res.Rejected++
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Accepted++
	}
	if res.Accepted > 0 {
		s.refreshNetworkEffect(ctx)
	}
	s.logger.Debug(ctx, "bulk ingest finished",
		logger.Int("accepted", res.Accepted),
		logger.Int("rejected", res.Rejected))
	return res
}

// ingestOne appends to the store and invalidates the metric's cache
// entries under the metric's write lock, so concurrent benchmark reads
// never observe the store ahead of the cache.
func (s *Service) ingestOne(ctx context.Context, p model.MetricDataPoint) error {
	// Stamp before storing so the journaled copy carries the same time.
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now()
	}
	lock := s.lockFor(p.MetricID)
	lock.Lock()
	err := s.store.Add(ctx, p)
	if err == nil {
		s.cache.Invalidate(ctx, p.MetricID)
	}
	lock.Unlock()
	if err != nil {
		return err
	}

	if s.writer != nil {
		if !s.writer.Enqueue(p) {
			s.logger.Warn(ctx, "journal buffer full; point not journaled",
				logger.String("metric_id", p.MetricID))
		}
	}
	return nil
}
