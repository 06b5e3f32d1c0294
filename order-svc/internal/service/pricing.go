package service

import "sendr/order-svc/internal/domain"

type Pricing struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
}

func DefaultPricing() Pricing {
	return Pricing{FreeDeliveryThreshold: 499, DeliveryFee: 30}
}

type Quote struct {
	Subtotal float64
	Delivery float64
	Total    float64
}

// Quote charges the flat fee only for non-empty subtotals up to the threshold.
func (p Pricing) Quote(items []domain.OrderItem) Quote {
	var q Quote
	for _, it := range items {
		q.Subtotal += it.Price * float64(it.Qty)
	}
	if q.Subtotal != 0 && q.Subtotal <= p.FreeDeliveryThreshold {
		q.Delivery = p.DeliveryFee
	}
	q.Total = q.Subtotal + q.Delivery
	return q
}
