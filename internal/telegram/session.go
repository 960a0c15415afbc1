package telegram

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/formfill-backend/internal/config"
)

// Sessions keeps per-chat settings.
type Sessions interface {
	WrongCount(ctx context.Context, chatID int64) (int, error)
	SetWrongCount(ctx context.Context, chatID int64, n int) error
	LastForm(ctx context.Context, chatID int64) (string, error)
	SetLastForm(ctx context.Context, chatID int64, url string) error
	Reset(ctx context.Context, chatID int64) error
}

// RedisSessions stores chat settings in Redis. Keys never expire.
type RedisSessions struct {
	rdb *redis.Client
}

// NewRedisSessions creates a RedisSessions.
func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

// WrongCount returns the chat's deliberate-miss count, 0 when unset.
func (s *RedisSessions) WrongCount(ctx context.Context, chatID int64) (int, error) {
	v, err := s.rdb.Get(ctx, config.CacheKey.TelegramWrongCountKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// SetWrongCount stores the chat's deliberate-miss count.
func (s *RedisSessions) SetWrongCount(ctx context.Context, chatID int64, n int) error {
	return s.rdb.Set(ctx, config.CacheKey.TelegramWrongCountKey(chatID), n, 0).Err()
}

// LastForm returns the last URL answered in the chat, "" when none.
func (s *RedisSessions) LastForm(ctx context.Context, chatID int64) (string, error) {
	v, err := s.rdb.Get(ctx, config.CacheKey.TelegramLastFormKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// SetLastForm remembers url as the chat's last form.
func (s *RedisSessions) SetLastForm(ctx context.Context, chatID int64, url string) error {
	return s.rdb.Set(ctx, config.CacheKey.TelegramLastFormKey(chatID), url, 0).Err()
}

// Reset clears every setting of the chat.
func (s *RedisSessions) Reset(ctx context.Context, chatID int64) error {
	return s.rdb.Del(ctx,
		config.CacheKey.TelegramWrongCountKey(chatID),
		config.CacheKey.TelegramLastFormKey(chatID),
	).Err()
}
