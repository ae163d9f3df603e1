package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "clinic:client:"

// RedisStore persists client state in Redis so it survives restarts.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("store: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("clinic.internal.store")
	}
	return &RedisStore{
		redis:  client,
		tracer: tracer,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "store.get")
	defer span.End()

	data, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("store: failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := s.tracer.Start(ctx, "store.set")
	defer span.End()

	if err := s.redis.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store: failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "store.delete")
	defer span.End()

	if err := s.redis.Del(ctx, keyPrefix+key).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store: failed to delete %s: %w", key, err)
	}
	return nil
}
