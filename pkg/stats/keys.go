// Package stats names the Redis keys shared by the aggregation writer and the
// analytics reader.
package stats

import "time"

const (
	DayLayout = "2006-01-02"
	// AllVendors buckets platform-wide counters.
	AllVendors = "all"

	FieldOrders  = "orders"
	FieldRevenue = "revenue"
	StatusPrefix = "status:"

	Retention = 30 * 24 * time.Hour
)

// Day formats t as the UTC calendar day used in key names.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// VendorDay is the hash of order count, revenue and per-status counters.
func VendorDay(day, vendorID string) string {
	return "stats:" + day + ":" + vendorKey(vendorID)
}

// ProductPopularity is the sorted set of product id → units ordered.
func ProductPopularity(day, vendorID string) string {
	return VendorDay(day, vendorID) + ":products"
}

// Processed marks an event as applied so redeliveries are ignored.
func Processed(eventID string) string {
	return "stats:processed:" + eventID
}

func vendorKey(vendorID string) string {
	if vendorID == "" {
		return "_"
	}
	return vendorID
}
