package tests

import (
	"context"
	"testing"

	"sendr/agg-svc/internal/domain"
	"sendr/agg-svc/internal/storage"
	"sendr/pkg/stats"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*storage.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return storage.NewStore(rdb), mr
}

func TestStore_RecordOrderPlaced(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	event := placedEvent()

	applied, err := store.RecordOrderPlaced(ctx, event)
	require.NoError(t, err)
	assert.True(t, applied)

	second := event
	second.OrderID = "o2"
	second.Total = 100
	second.Items = []domain.EventItem{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 3}}
	_, err = store.RecordOrderPlaced(ctx, second)
	require.NoError(t, err)

	for _, vendor := range []string{"v1", stats.AllVendors} {
		hash := stats.VendorDay("2024-05-01", vendor)
		assert.Equal(t, "2", mr.HGet(hash, stats.FieldOrders))
		assert.Equal(t, "330", mr.HGet(hash, stats.FieldRevenue))
		assert.Equal(t, "2", mr.HGet(hash, stats.StatusPrefix+"placed"))

		popularity := stats.ProductPopularity("2024-05-01", vendor)
		p1, err := mr.ZScore(popularity, "p1")
		require.NoError(t, err)
		assert.Equal(t, 3.0, p1)
		p2, err := mr.ZScore(popularity, "p2")
		require.NoError(t, err)
		assert.Equal(t, 3.0, p2)
		assert.Equal(t, stats.Retention, mr.TTL(hash))
	}
}

func TestStore_IgnoresRedelivery(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	applied, err := store.RecordOrderPlaced(ctx, placedEvent())
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.RecordOrderPlaced(ctx, placedEvent())
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, "1", mr.HGet(stats.VendorDay("2024-05-01", "v1"), stats.FieldOrders))
}

func TestStore_RecordStatusChange(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	event := placedEvent()
	event.Type = domain.EventStatusChanged
	event.Status = "rejected"

	applied, err := store.RecordStatusChange(ctx, event)
	require.NoError(t, err)
	assert.True(t, applied)

	hash := stats.VendorDay("2024-05-01", "v1")
	assert.Equal(t, "1", mr.HGet(hash, stats.StatusPrefix+"rejected"))
	assert.Equal(t, "", mr.HGet(hash, stats.FieldOrders))
}
