package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live server: MONGODB_TEST_URL=mongodb://localhost:27017
func TestMongoBackendRoundTrip(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx := context.Background()
	backend, err := ConnectMongo(ctx, url, "pancymodbot_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer func() {
		_ = backend.collection.Database().Drop(ctx)
		_ = backend.Disconnect(ctx)
	}()

	_, err = backend.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	doc := NewDocument(backend, "counters", newCounters)
	require.NoError(t, doc.Update(ctx, func(c *counters) error {
		(*c)["a"] = 3
		return nil
	}))

	v, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v["a"])

	status, ok := backend.Status(ctx)
	assert.True(t, ok)
	assert.Contains(t, status, "En linea")
}
