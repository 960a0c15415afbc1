package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/model"
)

// HistoryInserter persists one answer set.
type HistoryInserter interface {
	Insert(ctx context.Context, h *model.FormHistory) error
}

// HistoryWorker consumes persist_history_queue and inserts entries into PostgreSQL.
type HistoryWorker struct {
	store      HistoryInserter
	rdb        *redis.Client
	log        zerolog.Logger
	queue      string
	retryDelay time.Duration
	push       func(ctx context.Context, key, payload string) error
}

// NewHistoryWorker creates a new HistoryWorker.
func NewHistoryWorker(store HistoryInserter, rdb *redis.Client, log zerolog.Logger) *HistoryWorker {
	return &HistoryWorker{
		store:      store,
		rdb:        rdb,
		log:        log.With().Str("component", "history_worker").Logger(),
		queue:      config.WorkerKey.PersistHistoryQueue,
		retryDelay: 5 * time.Second,
		push: func(ctx context.Context, key, payload string) error {
			return rdb.RPush(ctx, key, payload).Err()
		},
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *HistoryWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or the 1s timeout passes.
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.handle(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying later")
		w.requeue(ctx, result[1])

		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// handle decodes and stores one payload. Malformed payloads are logged and
// dropped; only storage failures are returned.
func (w *HistoryWorker) handle(ctx context.Context, payload string) error {
	var entry model.FormHistory
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping payload")
		return nil
	}
	if err := w.store.Insert(ctx, &entry); err != nil {
		return err
	}
	w.log.Debug().
		Str("id", entry.ID.String()).
		Int("user_id", entry.UserID).
		Msg("History persisted")
	return nil
}

// requeue puts a payload back at the tail of the queue. It runs detached from
// ctx so an insert cancelled by shutdown is not lost as well.
func (w *HistoryWorker) requeue(ctx context.Context, payload string) {
	if err := w.push(context.WithoutCancel(ctx), w.queue, payload); err != nil {
		w.log.Error().Err(err).Str("payload", payload).Msg("Requeue failed, entry lost")
	}
}

// drain persists all remaining items before shutdown.
func (w *HistoryWorker) drain(ctx context.Context) {
	drained := 0
	for {
		payload, err := w.rdb.LPop(ctx, w.queue).Result()
		if err != nil {
			break
		}
		if err := w.handle(ctx, payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.requeue(ctx, payload)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
