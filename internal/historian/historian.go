// internal/historian/historian.go
//
// The historian drains the game action queue from Redis and persists it to
// Postgres in batches. It runs as its own binary so a slow database never
// backpressures the game server.
package historian

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/models"
)

// Source is the queue side. Satisfied by *cache.Queue.
type Source interface {
	PopGameAction(ctx context.Context, timeout time.Duration) (models.GameActionRecord, bool, error)
}

// Sink is the persistence side. Satisfied by *database.Store.
type Sink interface {
	InsertGameActions(ctx context.Context, records []models.GameActionRecord) error
}

// Config tunes batching. Zero values fall back to defaults.
type Config struct {
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration
}

// Service accumulates popped records and flushes them when the batch fills
// or the flush delay elapses, whichever comes first.
type Service struct {
	logger *logrus.Logger
	source Source
	sink   Sink
	cfg    Config

	batch     []models.GameActionRecord
	lastFlush time.Time
}

// New builds a historian over the given queue and store.
func New(logger *logrus.Logger, source Source, sink Sink, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = 500 * time.Millisecond
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 3 * time.Second
	}
	return &Service{
		logger:    logger,
		source:    source,
		sink:      sink,
		cfg:       cfg,
		batch:     make([]models.GameActionRecord, 0, cfg.BatchSize),
		lastFlush: time.Now(),
	}
}

// Run drains the queue until the context ends, then flushes what remains.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("historian started")
	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background())
			s.logger.Info("historian stopped")
			return
		default:
		}

		record, ok, err := s.source.PopGameAction(ctx, s.cfg.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			s.logger.WithError(err).Warn("pop game action failed")
			time.Sleep(time.Second)
		} else if ok {
			s.batch = append(s.batch, record)
		}

		if len(s.batch) >= s.cfg.BatchSize || (len(s.batch) > 0 && time.Since(s.lastFlush) >= s.cfg.FlushDelay) {
			s.flush(ctx)
		}
	}
}

// flush writes the accumulated batch in one transaction. On failure the
// batch is kept for the next attempt; the (game_id, seq) key keeps retries
// idempotent.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.sink.InsertGameActions(ctx, s.batch); err != nil {
		s.logger.WithError(err).WithField("batch", len(s.batch)).Error("flush failed, retaining batch")
		return
	}
	s.logger.WithField("batch", len(s.batch)).Debug("flushed actions")
	s.batch = s.batch[:0]
}
