package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPreWarmStoresCallback(t *testing.T) {
	delete(preWarmCallbacks, FleetViewKey)

	RegisterPreWarm(FleetViewKey, func(ctx context.Context) ([]byte, error) {
		return []byte("[]"), nil
	})

	_, ok := preWarmCallbacks[FleetViewKey]
	require.True(t, ok)
}

func TestPreWarmCacheWithoutRedisIsNoOp(t *testing.T) {
	require.Nil(t, client)

	called := false
	RegisterPreWarm(AnalyticsKey, func(ctx context.Context) ([]byte, error) {
		called = true
		return nil, nil
	})

	// Without a redis connection the pre-warm pass must not run callbacks
	PreWarmCache()
	assert.False(t, called)
}

func TestCachedReadsDegradeWithoutRedis(t *testing.T) {
	require.Nil(t, client)

	_, ok := GetCached(context.Background(), InventoryListKey)
	assert.False(t, ok)
	assert.False(t, IsHealthy())
}
