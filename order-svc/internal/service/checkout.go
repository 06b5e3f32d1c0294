package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sendr/order-svc/internal/domain"
	"sendr/pkg/metrics"
)

const serviceName = "order-svc"

type Placement struct {
	Order        *domain.Order `json:"order"`
	TrackingLink string        `json:"trackingLink"`
}

type CheckoutService struct {
	cart         CartStore
	products     ProductReader
	orders       OrderRepository
	publisher    EventPublisher
	pricing      Pricing
	publicOrigin string
}

func NewCheckoutService(cart CartStore, products ProductReader, orders OrderRepository, publisher EventPublisher, pricing Pricing, publicOrigin string) *CheckoutService {
	return &CheckoutService{
		cart:         cart,
		products:     products,
		orders:       orders,
		publisher:    publisher,
		pricing:      pricing,
		publicOrigin: publicOrigin,
	}
}

// PlaceOrder validates the session's cart against the catalog and turns it
// into an order. Nothing is written when any line fails validation. The cart
// is cleared only after the order exists.
func (s *CheckoutService) PlaceOrder(ctx context.Context, session, paymentMethod, origin string) (*Placement, error) {
	placement, err := s.placeOrder(ctx, session, paymentMethod, origin)
	metrics.RecordOperation(serviceName, "place_order", err == nil)
	return placement, err
}

func (s *CheckoutService) placeOrder(ctx context.Context, session, paymentMethod, origin string) (*Placement, error) {
	paymentStatus, err := paymentStatusFor(paymentMethod)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.cart.Load(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	items, vendorID, err := s.validate(ctx, cartItems)
	if err != nil {
		return nil, err
	}

	quote := s.pricing.Quote(items)
	order := &domain.Order{
		VendorID:      vendorID,
		SessionID:     session,
		Items:         items,
		Subtotal:      quote.Subtotal,
		Delivery:      quote.Delivery,
		Total:         quote.Total,
		Status:        domain.StatusPlaced,
		PaymentMethod: paymentMethod,
		PaymentStatus: paymentStatus,
		StatusHistory: []domain.StatusEntry{},
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.orders.SetOrderID(ctx, order.ID); err != nil {
		log.Printf("[order-svc] failed to set orderId on %s: %v", order.ID, err)
	} else {
		order.OrderID = order.ID
	}

	if err := s.cart.ClearOrdered(ctx, session, cartItems); err != nil {
		log.Printf("[order-svc] failed to clear cart for session %s: %v", session, err)
	}

	if s.publisher != nil {
		event := domain.OrderEvent{
			Type:      domain.EventOrderPlaced,
			OrderID:   order.ID,
			VendorID:  order.VendorID,
			Status:    order.Status,
			Total:     order.Total,
			Timestamp: time.Now(),
		}
		for _, it := range order.Items {
			event.Items = append(event.Items, domain.OrderEventItem{ProductID: it.ProductID, Qty: it.Qty})
		}
		if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
			log.Printf("[order-svc] failed to publish order_placed for %s: %v", order.ID, err)
		}
	}

	if origin == "" {
		origin = s.publicOrigin
	}
	return &Placement{Order: order, TrackingLink: TrackingLink(origin, order.ID)}, nil
}

// validate checks every line in cart order and stops at the first failure.
// All lines must come from one vendor. Prices and names are taken from the
// catalog, not from the cart.
func (s *CheckoutService) validate(ctx context.Context, cartItems []domain.CartItem) ([]domain.OrderItem, string, error) {
	if len(cartItems) == 0 {
		return nil, "", &CheckoutError{Kind: ErrCartEmpty}
	}

	items := make([]domain.OrderItem, 0, len(cartItems))
	vendorID := ""
	for i, it := range cartItems {
		if it.ProductID == nil || *it.ProductID == "" {
			return nil, "", &CheckoutError{Kind: ErrMissingProductID, Item: it.Name}
		}

		product, err := s.products.GetProduct(ctx, *it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", &CheckoutError{Kind: ErrProductGone, Item: it.Name}
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to load product %s: %w", *it.ProductID, err)
		}
		if !product.Available {
			return nil, "", &CheckoutError{Kind: ErrProductUnavailable, Item: it.Name}
		}
		if product.Quantity < it.Qty {
			return nil, "", &CheckoutError{Kind: ErrInsufficientStock, Item: it.Name, Available: product.Quantity}
		}

		if i == 0 {
			vendorID = product.VendorID
		} else if product.VendorID != vendorID {
			return nil, "", &CheckoutError{Kind: ErrMixedVendors, Item: it.Name}
		}

		name := product.Name
		if name == "" {
			name = it.Name
		}
		items = append(items, domain.OrderItem{
			ProductID: *it.ProductID,
			Name:      name,
			Price:     product.Price,
			Qty:       it.Qty,
			ImageURL:  it.ImageURL,
			Unit:      it.Unit,
		})
	}
	return items, vendorID, nil
}

func paymentStatusFor(method string) (string, error) {
	switch method {
	case domain.PaymentOnline:
		return "sample-paid", nil
	case domain.PaymentCOD:
		return "pending", nil
	}
	return "", ErrInvalidPaymentMethod
}
