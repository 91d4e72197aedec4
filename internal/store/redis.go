package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/novaspeak/internal/errs"
)

const redisKeyPrefix = "novaspeak:settings:"

type redisKV struct {
	redis *redis.Client
}

func NewRedis(client *redis.Client) *redisKV {
	return &redisKV{redis: client}
}

func (r *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.redis.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.NewDatabaseError("read", "failed to read setting", err)
	}
	return val, true, nil
}

// Put stores without expiry; the configuration lives until replaced.
func (r *redisKV) Put(ctx context.Context, key, value string) error {
	if err := r.redis.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return errs.NewDatabaseError("write", "failed to save setting", err)
	}
	return nil
}

func (r *redisKV) Close() error {
	return r.redis.Close()
}
