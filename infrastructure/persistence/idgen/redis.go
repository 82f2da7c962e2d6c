package idgen

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSequence reserves blocks with INCRBY on a single key.
type RedisSequence struct {
	rdb   redis.Cmdable
	key   string
	name  string
	start int64
	pool  *pool
}

func NewRedisSequence(rdb redis.Cmdable, keyPrefix, name string, start, step int64) *RedisSequence {
	s := &RedisSequence{rdb: rdb, key: keyPrefix + name, name: name, start: start}
	s.pool = newPool(step, s.reserve)
	return s
}

func (s *RedisSequence) Name() string { return s.name }

func (s *RedisSequence) Next(ctx context.Context) (int64, error) {
	return s.pool.nextValue(ctx)
}

func (s *RedisSequence) SupportsBatchInserts() bool { return true }

func (s *RedisSequence) reserve(ctx context.Context) (int64, error) {
	if err := s.rdb.SetNX(ctx, s.key, s.start-1, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed sequence %s: %w", s.key, err)
	}
	hi, err := s.rdb.IncrBy(ctx, s.key, s.pool.step).Result()
	if err != nil {
		return 0, fmt.Errorf("reserve block from sequence %s: %w", s.key, err)
	}
	return hi, nil
}
