package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, time.Minute), mr
}

func TestSetThenGet(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "catalog:a", entry{Name: "a", Items: []string{"x", "y"}}))

	var got entry
	require.NoError(t, cache.Get(ctx, "catalog:a", &got))
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, []string{"x", "y"}, got.Items)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	var got entry
	err := cache.Get(context.Background(), "nonexistent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("catalog:bad", "{not json"))

	var got entry
	err := cache.Get(context.Background(), "catalog:bad", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_TTLWithinJitterWindow(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), "catalog:ttl", entry{Name: "t"}))

	ttl := mr.TTL("catalog:ttl")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, time.Minute+time.Minute/5)
}

func TestSet_Overwrites(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", entry{Name: "first"}))
	require.NoError(t, cache.Set(ctx, "k", entry{Name: "second"}))

	var got entry
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "second", got.Name)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", entry{Name: "x"}))
	require.NoError(t, cache.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	// deleting a missing key is not an error
	require.NoError(t, cache.Delete(ctx, "k"))
}

func TestDeletePrefix(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set("catalog:"+time.Duration(i).String(), "1"))
	}
	require.NoError(t, mr.Set("cart-storage:c1", "keep"))

	require.NoError(t, cache.DeletePrefix(ctx, "catalog:"))

	assert.Equal(t, []string{"cart-storage:c1"}, mr.Keys())
}

func TestRedisUnavailable(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	var got entry
	err := cache.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, cache.Set(context.Background(), "k", entry{}))
}
