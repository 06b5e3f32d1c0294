package mocks

import (
	"context"

	"sendr/analytics-svc/internal/domain"
	"sendr/analytics-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type Analytics struct {
	mock.Mock
}

var _ service.AnalyticsInterface = (*Analytics)(nil)

func NewAnalytics(t testingT) *Analytics {
	m := &Analytics{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Analytics) VendorDay(ctx context.Context, vendorID, day string) (*domain.VendorDaySummary, error) {
	ret := m.Called(ctx, vendorID, day)
	var summary *domain.VendorDaySummary
	if v := ret.Get(0); v != nil {
		summary = v.(*domain.VendorDaySummary)
	}
	return summary, ret.Error(1)
}

func (m *Analytics) TopProducts(ctx context.Context, day string, limit int) ([]domain.ProductAnalytics, error) {
	ret := m.Called(ctx, day, limit)
	var products []domain.ProductAnalytics
	if v := ret.Get(0); v != nil {
		products = v.([]domain.ProductAnalytics)
	}
	return products, ret.Error(1)
}
