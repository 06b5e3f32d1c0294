package domain

const (
	SourceCache  = "cache"
	SourceOrders = "orders"
)

type ProductAnalytics struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Units     float64 `json:"units"`
}

// VendorDaySummary backs the vendor dashboard. Source tells whether the
// numbers came from the aggregated counters or were computed from orders.
type VendorDaySummary struct {
	VendorID        string             `json:"vendorId"`
	Date            string             `json:"date"`
	Orders          int                `json:"orders"`
	Revenue         float64            `json:"revenue"`
	StatusBreakdown map[string]int     `json:"statusBreakdown"`
	TopProducts     []ProductAnalytics `json:"topProducts"`
	Source          string             `json:"source"`
}
