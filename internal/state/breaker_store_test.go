package state

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBreakerStore_PassesThrough(t *testing.T) {
	inner := NewMemoryStore()
	store := NewBreakerStore(inner, BreakerSettings{Name: "test"}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []byte("v")))
	data, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestBreakerStore_MissingBlobsDoNotTrip(t *testing.T) {
	store := NewBreakerStore(NewMemoryStore(), BreakerSettings{Name: "test", FailureThreshold: 2}, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := store.Load(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrBlobNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner, BreakerSettings{Name: "test", FailureThreshold: 3}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, store.Save(ctx, "k", []byte("v")))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the backend")
}
