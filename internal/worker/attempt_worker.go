package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWriter persists batches of attempts.
type AttemptWriter interface {
	InsertBatch(ctx context.Context, attempts []model.AssessmentAttempt) error
}

// AttemptWorker drains the attempt queue into Postgres in batches.
type AttemptWorker struct {
	writer AttemptWriter
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewAttemptWorker creates a new AttemptWorker.
func NewAttemptWorker(writer AttemptWriter, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		writer: writer,
		rdb:    rdb,
		log:    log.With().Str("component", "attempt_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then flushes what it holds.
func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.AssessmentAttempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {
			batch = w.flush(ctx, batch)
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested, flushing batch")
			w.flush(context.Background(), batch)
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("BLPop error")
				time.Sleep(AttemptPollTimeout)
			}
			continue
		}
		if len(item) < 2 {
			continue
		}

		var a model.AssessmentAttempt
		if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
			w.log.Error().Err(err).Msg("Invalid attempt payload, dropping")
			continue
		}
		batch = append(batch, a)
	}
}

// flush writes the batch. On failure the items go back on the queue so that a
// later flush (or another instance) retries them. Returns the emptied batch.
func (w *AttemptWorker) flush(ctx context.Context, batch []model.AssessmentAttempt) []model.AssessmentAttempt {
	if len(batch) == 0 {
		return batch
	}

	if err := w.writer.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Attempt batch insert failed, requeueing")
		pipe := w.rdb.Pipeline()
		for _, a := range batch {
			raw, _ := json.Marshal(a)
			pipe.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			w.log.Error().Err(err).Msg("Requeue failed, attempts lost")
		}
		return batch[:0]
	}

	w.log.Debug().Int("count", len(batch)).Msg("Attempt batch persisted")
	return batch[:0]
}
