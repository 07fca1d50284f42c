package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	tagKeyPrefix = "tags:"
	tagIndexKey  = "tags:keys"
)

type redisTagCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTagCache shares results between instances. ttl 0 keeps entries
// until redis evicts them.
func NewRedisTagCache(client *redis.Client, ttl time.Duration) TagCache {
	return &redisTagCache{client: client, ttl: ttl}
}

func (r *redisTagCache) Get(ctx context.Context, key string) (*entity.TagResult, bool, error) {
	data, err := r.client.Get(ctx, tagKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result entity.TagResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (r *redisTagCache) Set(ctx context.Context, key string, result *entity.TagResult) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tagKeyPrefix+key, data, r.ttl)
	pipe.SAdd(ctx, tagIndexKey, key)
	_, err = pipe.Exec(ctx)
	return err
}

// Len counts indexed keys. Entries that already expired are still counted.
func (r *redisTagCache) Len(ctx context.Context) (int64, error) {
	return r.client.SCard(ctx, tagIndexKey).Result()
}
