package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, "sf:", ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "cart-storage:abc", []byte(`{"version":0}`)))

	stored, err := mr.Get("sf:cart-storage:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"version":0}`, stored)

	data, err := store.Load(ctx, "cart-storage:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":0}`), data)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, time.Hour)
	defer cleanup()

	require.NoError(t, store.Save(context.Background(), "k", []byte("v")))
	assert.Equal(t, time.Hour, mr.TTL("sf:k"))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("sf:k"))

	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("sf:k"))

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	mr.Close()
	_, err := store.Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
}
