package core

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(RedisStoreOptions{
		RedisURL:  "redis://" + mr.Addr(),
		Namespace: "quickplate:sessions",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_Validation(t *testing.T) {
	t.Run("requires URL", func(t *testing.T) {
		_, err := NewRedisStore(RedisStoreOptions{})
		assert.ErrorIs(t, err, ErrMissingConfiguration)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		_, err := NewRedisStore(RedisStoreOptions{RedisURL: "not-a-url"})
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unreachable server fails the ping", func(t *testing.T) {
		_, err := NewRedisStore(RedisStoreOptions{RedisURL: "redis://127.0.0.1:1"})
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user_profile", `{"id":7}`, 0))

	value, err := store.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.Equal(t, `{"id":7}`, value)

	// keys are namespaced
	raw, err := mr.Get("quickplate:sessions:user_profile")
	require.NoError(t, err)
	assert.Equal(t, `{"id":7}`, raw)
}

func TestRedisStore_MissingKeyIsEmptyNotError(t *testing.T) {
	store, _ := newRedisStore(t)

	value, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "v", time.Minute))

	mr.FastForward(2 * time.Minute)

	value, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisStore_DeleteAndExists(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "k"))

	exists, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStore_HealthCheck(t *testing.T) {
	store, mr := newRedisStore(t)

	assert.NoError(t, store.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, store.HealthCheck(context.Background()))
}
