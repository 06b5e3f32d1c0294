package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"sendr/order-svc/internal/domain"
	"sendr/pkg/metrics"
)

const actorVendor = "vendor"

type OrderService struct {
	repo         OrderRepository
	publisher    EventPublisher
	qr           QRGenerator
	publicOrigin string

	// inFlight holds the ids of orders with an action being applied.
	inFlight sync.Map
}

func NewOrderService(repo OrderRepository, publisher EventPublisher, qr QRGenerator, publicOrigin string) *OrderService {
	return &OrderService{
		repo:         repo,
		publisher:    publisher,
		qr:           qr,
		publicOrigin: publicOrigin,
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// ListForVendor lists every order when vendorID is empty.
func (s *OrderService) ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx, vendorID)
}

// ApplyAction moves an order to the status named by action and appends one
// vendor entry to its history. Only one action per order runs at a time.
func (s *OrderService) ApplyAction(ctx context.Context, id, vendorID, action string, confirm bool) (*domain.Order, error) {
	order, err := s.applyAction(ctx, id, vendorID, action, confirm)
	metrics.RecordOperation(serviceName, "apply_action", err == nil)
	return order, err
}

func (s *OrderService) applyAction(ctx context.Context, id, vendorID, action string, confirm bool) (*domain.Order, error) {
	allowed, ok := AllowedFrom(action)
	if !ok {
		return nil, ErrUnknownAction
	}
	if action == domain.StatusRejected && !confirm {
		return nil, ErrConfirmationRequired
	}

	if _, busy := s.inFlight.LoadOrStore(id, struct{}{}); busy {
		return nil, ErrActionInFlight
	}
	defer s.inFlight.Delete(id)

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.VendorID != vendorID {
		return nil, ErrNotOrderVendor
	}
	if !CanApply(current.Status, action) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, action)
	}

	entry := domain.StatusEntry{Status: action, By: actorVendor}
	updated, err := s.repo.AppendStatus(ctx, id, entry, allowed)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, ErrOrderNotFound
	case errors.Is(err, domain.ErrStatusConflict):
		return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	case err != nil:
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if s.publisher != nil {
		event := domain.OrderEvent{
			Type:      domain.EventStatusChanged,
			OrderID:   updated.ID,
			VendorID:  updated.VendorID,
			Status:    updated.Status,
			Total:     updated.Total,
			Timestamp: time.Now(),
		}
		if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
			log.Printf("[order-svc] failed to publish status_changed for %s: %v", id, err)
		}
	}
	return updated, nil
}

// TrackingQRCode renders the order's tracking link as a PNG.
func (s *OrderService) TrackingQRCode(ctx context.Context, id, origin string) ([]byte, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if origin == "" {
		origin = s.publicOrigin
	}
	return s.qr.Generate(TrackingLink(origin, id))
}
