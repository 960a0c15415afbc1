package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/model"
)

// HistoryQueue hands finished answer sets to the persistence worker.
type HistoryQueue interface {
	Enqueue(ctx context.Context, h *model.FormHistory) error
}

// RedisHistoryQueue pushes entries onto the persist_history_queue list.
type RedisHistoryQueue struct {
	rdb *redis.Client
}

// NewRedisHistoryQueue creates a new RedisHistoryQueue.
func NewRedisHistoryQueue(rdb *redis.Client) *RedisHistoryQueue {
	return &RedisHistoryQueue{rdb: rdb}
}

// Enqueue appends h to the queue.
func (q *RedisHistoryQueue) Enqueue(ctx context.Context, h *model.FormHistory) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistHistoryQueue, data).Err()
}
