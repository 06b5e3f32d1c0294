package domain

import "time"

const (
	EventOrderPlaced   = "order_placed"
	EventStatusChanged = "status_changed"
)

type EventItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// OrderEvent is the payload order-svc writes to the orders topic.
type OrderEvent struct {
	Type      string      `json:"type"`
	OrderID   string      `json:"order_id"`
	VendorID  string      `json:"vendor_id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Items     []EventItem `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

// ID identifies one logical event across redeliveries.
func (e OrderEvent) ID() string {
	return e.OrderID + ":" + e.Type + ":" + e.Status
}
