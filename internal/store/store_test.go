package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyToken, []byte("bearer-abc")))

	got, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("bearer-abc"), got)

	require.NoError(t, s.Delete(ctx, KeyToken))
	_, err = s.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreMissingKey(t *testing.T) {
	s := newRedisStore(t)
	_, err := s.Get(context.Background(), "never-written")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyNotifications, []byte(`[]`)))

	got, err := s.Get(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	// Mutating the returned slice must not corrupt stored state.
	got[0] = 'x'
	again, err := s.Get(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), again)

	require.NoError(t, s.Delete(ctx, KeyNotifications))
	_, err = s.Get(ctx, KeyNotifications)
	assert.ErrorIs(t, err, ErrNotFound)
}
