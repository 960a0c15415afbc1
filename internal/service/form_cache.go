package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/model"
)

// FormCache stores parsed forms by URL.
type FormCache interface {
	Get(ctx context.Context, url string) (*model.ParsedForm, error)
	Set(ctx context.Context, url string, form *model.ParsedForm, ttl time.Duration) error
}

// errCacheMiss is returned by FormCache.Get when nothing is stored.
var errCacheMiss = errors.New("cache miss")

// RedisFormCache is a FormCache backed by Redis string keys.
type RedisFormCache struct {
	rdb *redis.Client
}

// NewRedisFormCache creates a new RedisFormCache.
func NewRedisFormCache(rdb *redis.Client) *RedisFormCache {
	return &RedisFormCache{rdb: rdb}
}

// Get loads a cached form.
func (c *RedisFormCache) Get(ctx context.Context, url string) (*model.ParsedForm, error) {
	data, err := c.rdb.Get(ctx, formKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, err
	}
	var form model.ParsedForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// Set stores form for ttl.
func (c *RedisFormCache) Set(ctx context.Context, url string, form *model.ParsedForm, ttl time.Duration) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, formKey(url), data, ttl).Err()
}

func formKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return config.CacheKey.FormParsedKey(hex.EncodeToString(sum[:]))
}
