package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrStatusConflict = errors.New("status precondition failed")
)

const (
	StatusPlaced         = "placed"
	StatusAccepted       = "accepted"
	StatusRejected       = "rejected"
	StatusPacked         = "packed"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
)

const (
	PaymentOnline = "online"
	PaymentCOD    = "cod"
)

// CartItem is the canonical shape of one cart line. ProductID is nil when
// the legacy entry carried no identifier.
type CartItem struct {
	ProductID *string `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	ImageURL  string  `json:"imageUrl"`
	Unit      string  `json:"unit"`
}

type CartSummary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Location is the last geolocation notification of a session: either
// coordinates or a manually entered pincode.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Pincode string   `json:"pincode,omitempty"`
}

type Product struct {
	ID        string  `json:"id"`
	ShopID    string  `json:"shopId"`
	VendorID  string  `json:"vendorId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Available bool    `json:"available"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	ImageURL  string  `json:"imageUrl"`
	Unit      string  `json:"unit"`
}

type StatusEntry struct {
	Status string    `json:"status"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
}

type Order struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId,omitempty"`
	VendorID      string        `json:"vendorId,omitempty"`
	SessionID     string        `json:"-"`
	Items         []OrderItem   `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Delivery      float64       `json:"delivery"`
	Total         float64       `json:"total"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus string        `json:"paymentStatus"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OrderEvent is published to the orders topic.
type OrderEvent struct {
	Type      string           `json:"type"`
	OrderID   string           `json:"order_id"`
	VendorID  string           `json:"vendor_id"`
	Status    string           `json:"status"`
	Total     float64          `json:"total"`
	Items     []OrderEventItem `json:"items,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

const (
	EventOrderPlaced   = "order_placed"
	EventStatusChanged = "status_changed"
)

// SortedHistory returns the status history ordered by timestamp for display.
// The stored history is never reordered.
func (o Order) SortedHistory() []StatusEntry {
	sorted := make([]StatusEntry, len(o.StatusHistory))
	copy(sorted, o.StatusHistory)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return sorted
}
