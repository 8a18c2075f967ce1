package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/rolecast/internal/core"
)

const redisKeyPrefix = "rolecast:mem:"

// RedisStore backs records with a remote key-value server, for deployments
// where memory must survive restarts and be shared across replicas.
type RedisStore struct {
	client  *redis.Client
	persona string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(ctx context.Context, opts RedisOptions, persona string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client, persona: persona}, nil
}

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (core.MemoryRecord, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		rec := NewRecord(s.persona)
		if err := s.set(ctx, id, rec); err != nil {
			return core.MemoryRecord{}, err
		}
		return rec, nil
	}
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("get record: %w", err)
	}

	var rec core.MemoryRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return core.MemoryRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, rec core.MemoryRecord) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.set(ctx, id, merge(existing, rec))
}

func (s *RedisStore) set(ctx context.Context, id string, rec core.MemoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	// No TTL: records live until an explicit wipe.
	return s.client.Set(ctx, s.key(id), data, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
