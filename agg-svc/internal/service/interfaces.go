package service

import (
	"context"

	"sendr/agg-svc/internal/domain"
	"sendr/agg-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

// StoreInterface applies order events to the counters. The bool result is
// false when the event had already been applied.
type StoreInterface interface {
	RecordOrderPlaced(ctx context.Context, e domain.OrderEvent) (bool, error)
	RecordStatusChange(ctx context.Context, e domain.OrderEvent) (bool, error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	ProcessEvent(ctx context.Context, e domain.OrderEvent)
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
