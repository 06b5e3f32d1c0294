package service

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrMissingProductID   = errors.New("missing product id")
	ErrProductGone        = errors.New("product no longer exists")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrMixedVendors       = errors.New("cart mixes shops")

	ErrInvalidPaymentMethod = errors.New("payment method must be online or cod")
	ErrOrderNotFound        = errors.New("Order not found")
	ErrUnknownAction        = errors.New("unknown order action")
	ErrInvalidTransition    = errors.New("action not allowed from the current status")
	ErrConfirmationRequired = errors.New("rejecting an order must be confirmed")
	ErrActionInFlight       = errors.New("another action on this order is in progress")
	ErrNotOrderVendor       = errors.New("order belongs to another vendor")
)

// CheckoutError describes the cart line that stopped a checkout.
type CheckoutError struct {
	Kind      error
	Item      string
	Available int
}

func (e *CheckoutError) Error() string {
	switch e.Kind {
	case ErrCartEmpty:
		return "Cart is empty"
	case ErrMissingProductID:
		name := e.Item
		if name == "" {
			name = "item"
		}
		return fmt.Sprintf("Missing product id for %s", name)
	case ErrProductGone:
		return fmt.Sprintf("%s no longer exists", e.Item)
	case ErrProductUnavailable:
		return fmt.Sprintf("%s is unavailable", e.Item)
	case ErrMixedVendors:
		return fmt.Sprintf("%s is sold by another shop; order each shop's items separately", e.Item)
	case ErrInsufficientStock:
		return fmt.Sprintf("%s has only %d left", e.Item, e.Available)
	}
	return e.Kind.Error()
}

func (e *CheckoutError) Unwrap() error {
	return e.Kind
}
