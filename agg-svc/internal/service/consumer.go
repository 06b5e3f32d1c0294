package service

import (
	"context"
	"encoding/json"
	"log"

	"sendr/agg-svc/internal/domain"
	"sendr/pkg/metrics"
)

type Consumer struct {
	Reader MessageReader
	Store  StoreInterface
}

func NewConsumer(reader MessageReader, store StoreInterface) *Consumer {
	return &Consumer{
		Reader: reader,
		Store:  store,
	}
}

// Start reads order events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Println("[agg-svc] starting order events consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[agg-svc] read message: %v", err)
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("[agg-svc] unmarshal message at offset %d: %v", message.Offset, err)
			continue
		}
		c.ProcessEvent(ctx, event)
	}
}

func (c *Consumer) ProcessEvent(ctx context.Context, e domain.OrderEvent) {
	var (
		applied bool
		err     error
	)
	switch e.Type {
	case domain.EventOrderPlaced:
		applied, err = c.Store.RecordOrderPlaced(ctx, e)
	case domain.EventStatusChanged:
		applied, err = c.Store.RecordStatusChange(ctx, e)
	default:
		return
	}
	metrics.RecordOperation("agg-svc", e.Type, err == nil)

	switch {
	case err != nil:
		log.Printf("[agg-svc] apply %s for order %s: %v", e.Type, e.OrderID, err)
	case !applied:
		log.Printf("[agg-svc] skipped duplicate %s for order %s", e.Type, e.OrderID)
	default:
		log.Printf("[agg-svc] applied %s for order %s (vendor %q, status %s)", e.Type, e.OrderID, e.VendorID, e.Status)
	}
}
