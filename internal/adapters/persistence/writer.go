package persistence

import (
	"context"
	"sync"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
	"github.com/okian/esgbench/pkg/metrics"
)

// defaultWriterBuffer bounds the write-behind channel.
const defaultWriterBuffer = 4096

// Writer appends points to a Journal behind the hot path. Ingestion stays
// synchronous against the in-memory store; journal appends flow through a
// bounded channel drained by one background goroutine. A full channel
// drops the append rather than blocking ingestion.
type Writer struct {
	journal Journal
	ch      chan model.MetricDataPoint
	log     logger.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// WriterOption applies a configuration option to the Writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	buffer int
	log    logger.Logger
}

// WithBuffer sets the write-behind channel capacity.
func WithBuffer(n int) WriterOption {
	return func(c *writerConfig) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithLogger sets the writer's logger.
func WithLogger(log logger.Logger) WriterOption {
	return func(c *writerConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// NewWriter creates a Writer and starts its drain goroutine.
func NewWriter(journal Journal, opts ...WriterOption) *Writer {
	cfg := writerConfig{buffer: defaultWriterBuffer, log: logger.Get().Named("journal")}
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &Writer{
		journal: journal,
		ch:      make(chan model.MetricDataPoint, cfg.buffer),
		log:     cfg.log,
		done:    make(chan struct{}),
	}
	go w.drain()
	return w
}

// Enqueue hands a point to the background writer. Returns false when the
// buffer is full and the point was not journaled.
func (w *Writer) Enqueue(p model.MetricDataPoint) bool {
	select {
	case w.ch <- p:
		return true
	default:
		metrics.RecordJournalError()
		return false
	}
}

// Close stops accepting points, flushes the buffer, and waits for the
// drain goroutine to finish. The journal itself is not closed.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		close(w.ch)
		<-w.done
	})
}

func (w *Writer) drain() {
	defer close(w.done)
	ctx := context.Background()
	for p := range w.ch {
		if err := w.journal.AppendPoint(ctx, p); err != nil {
			metrics.RecordJournalError()
			w.log.Warn(ctx, "journal append failed",
				logger.String("metric_id", p.MetricID),
				logger.Error(err))
			continue
		}
		metrics.RecordJournalWrite()
	}
}
