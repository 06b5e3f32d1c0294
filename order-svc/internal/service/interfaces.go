package service

import (
	"context"

	"sendr/order-svc/internal/domain"
)

type CartStore interface {
	Load(ctx context.Context, session string) ([]domain.CartItem, error)
	ClearOrdered(ctx context.Context, session string, ordered []domain.CartItem) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	SetOrderID(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, vendorID string) ([]domain.Order, error)
	AppendStatus(ctx context.Context, id string, entry domain.StatusEntry, allowedFrom []string) (*domain.Order, error)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type CheckoutServiceInterface interface {
	PlaceOrder(ctx context.Context, session, paymentMethod, origin string) (*Placement, error)
}

type OrderServiceInterface interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error)
	ApplyAction(ctx context.Context, id, vendorID, action string, confirm bool) (*domain.Order, error)
	TrackingQRCode(ctx context.Context, id, origin string) ([]byte, error)
}

var (
	_ CheckoutServiceInterface = (*CheckoutService)(nil)
	_ OrderServiceInterface    = (*OrderService)(nil)
)
