package service

import (
	"context"

	"sendr/analytics-svc/internal/domain"
)

type AnalyticsInterface interface {
	VendorDay(ctx context.Context, vendorID, day string) (*domain.VendorDaySummary, error)
	TopProducts(ctx context.Context, day string, limit int) ([]domain.ProductAnalytics, error)
}

var _ AnalyticsInterface = (*AnalyticsService)(nil)
