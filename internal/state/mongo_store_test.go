package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestMongo(t *testing.T) (*MongoStore, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	store := NewMongoStore(db)
	require.NoError(t, store.CreateIndexes(ctx))

	cleanup := func() {
		if err := db.Client().Disconnect(ctx); err != nil {
			t.Logf("failed to disconnect: %s", err)
		}
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func TestMongoStore_LoadMissing(t *testing.T) {
	store, cleanup := setupTestMongo(t)
	defer cleanup()

	_, err := store.Load(context.Background(), "cart-storage:nobody")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestMongoStore_SaveOverwriteDelete(t *testing.T) {
	store, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	key := "cart-storage:client-1"

	require.NoError(t, store.Save(ctx, key, []byte(`{"version":0}`)))
	require.NoError(t, store.Save(ctx, key, []byte(`{"version":1}`)))

	data, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}
