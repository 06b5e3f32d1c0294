package storage

import (
	"context"
	"time"

	"sendr/agg-svc/internal/domain"
	"sendr/pkg/stats"

	"github.com/redis/go-redis/v9"
)

const processedTTL = 7 * 24 * time.Hour

type Store struct {
	rdb *redis.Client
	now func() time.Time
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

func (s *Store) day(e domain.OrderEvent) string {
	if e.Timestamp.IsZero() {
		return stats.Day(s.now())
	}
	return stats.Day(e.Timestamp)
}

// claim marks the event processed. It reports false when an earlier delivery
// already applied it.
func (s *Store) claim(ctx context.Context, e domain.OrderEvent) (bool, error) {
	return s.rdb.SetNX(ctx, stats.Processed(e.ID()), 1, processedTTL).Result()
}

// apply runs fn in a MULTI block, releasing the claim when it fails so a
// redelivery can retry.
func (s *Store) apply(ctx context.Context, e domain.OrderEvent, fn func(pipe redis.Pipeliner)) (bool, error) {
	ok, err := s.claim(ctx, e)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fn(pipe)
		return nil
	}); err != nil {
		s.rdb.Del(ctx, stats.Processed(e.ID()))
		return false, err
	}
	return true, nil
}

// RecordOrderPlaced counts the order and its revenue for the vendor and the
// platform, and adds each line's units to product popularity.
func (s *Store) RecordOrderPlaced(ctx context.Context, e domain.OrderEvent) (bool, error) {
	day := s.day(e)
	return s.apply(ctx, e, func(pipe redis.Pipeliner) {
		for _, vendor := range []string{e.VendorID, stats.AllVendors} {
			hash := stats.VendorDay(day, vendor)
			pipe.HIncrBy(ctx, hash, stats.FieldOrders, 1)
			pipe.HIncrByFloat(ctx, hash, stats.FieldRevenue, e.Total)
			pipe.HIncrBy(ctx, hash, stats.StatusPrefix+e.Status, 1)
			pipe.Expire(ctx, hash, stats.Retention)

			popularity := stats.ProductPopularity(day, vendor)
			for _, item := range e.Items {
				if item.ProductID == "" || item.Qty <= 0 {
					continue
				}
				pipe.ZIncrBy(ctx, popularity, float64(item.Qty), item.ProductID)
			}
			pipe.Expire(ctx, popularity, stats.Retention)
		}
	})
}

// RecordStatusChange counts one transition into the event's status.
func (s *Store) RecordStatusChange(ctx context.Context, e domain.OrderEvent) (bool, error) {
	day := s.day(e)
	return s.apply(ctx, e, func(pipe redis.Pipeliner) {
		for _, vendor := range []string{e.VendorID, stats.AllVendors} {
			hash := stats.VendorDay(day, vendor)
			pipe.HIncrBy(ctx, hash, stats.StatusPrefix+e.Status, 1)
			pipe.Expire(ctx, hash, stats.Retention)
		}
	})
}
