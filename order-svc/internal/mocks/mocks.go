// Package mocks holds testify mocks for the order service dependencies.
package mocks

import (
	"context"

	"sendr/order-svc/internal/domain"
	"sendr/order-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type CartStore struct {
	mock.Mock
}

func NewCartStore(t testingT) *CartStore {
	m := &CartStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CartStore) Load(ctx context.Context, session string) ([]domain.CartItem, error) {
	ret := m.Called(ctx, session)
	var items []domain.CartItem
	if v := ret.Get(0); v != nil {
		items = v.([]domain.CartItem)
	}
	return items, ret.Error(1)
}

func (m *CartStore) ClearOrdered(ctx context.Context, session string, ordered []domain.CartItem) error {
	return m.Called(ctx, session, ordered).Error(0)
}

type ProductReader struct {
	mock.Mock
}

func NewProductReader(t testingT) *ProductReader {
	m := &ProductReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ProductReader) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ret := m.Called(ctx, id)
	var p *domain.Product
	if v := ret.Get(0); v != nil {
		p = v.(*domain.Product)
	}
	return p, ret.Error(1)
}

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) SetOrderID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ret := m.Called(ctx, id)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

func (m *OrderRepository) ListOrders(ctx context.Context, vendorID string) ([]domain.Order, error) {
	ret := m.Called(ctx, vendorID)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

func (m *OrderRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry, allowedFrom []string) (*domain.Order, error) {
	ret := m.Called(ctx, id, entry, allowedFrom)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *QRGenerator) Generate(content string) ([]byte, error) {
	ret := m.Called(content)
	var b []byte
	if v := ret.Get(0); v != nil {
		b = v.([]byte)
	}
	return b, ret.Error(1)
}

type CheckoutService struct {
	mock.Mock
}

func NewCheckoutService(t testingT) *CheckoutService {
	m := &CheckoutService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CheckoutService) PlaceOrder(ctx context.Context, session, paymentMethod, origin string) (*service.Placement, error) {
	ret := m.Called(ctx, session, paymentMethod, origin)
	var p *service.Placement
	if v := ret.Get(0); v != nil {
		p = v.(*service.Placement)
	}
	return p, ret.Error(1)
}

type OrderService struct {
	mock.Mock
}

func NewOrderService(t testingT) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	ret := m.Called(ctx, id)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

func (m *OrderService) ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	ret := m.Called(ctx, vendorID)
	var orders []domain.Order
	if v := ret.Get(0); v != nil {
		orders = v.([]domain.Order)
	}
	return orders, ret.Error(1)
}

func (m *OrderService) ApplyAction(ctx context.Context, id, vendorID, action string, confirm bool) (*domain.Order, error) {
	ret := m.Called(ctx, id, vendorID, action, confirm)
	var o *domain.Order
	if v := ret.Get(0); v != nil {
		o = v.(*domain.Order)
	}
	return o, ret.Error(1)
}

func (m *OrderService) TrackingQRCode(ctx context.Context, id, origin string) ([]byte, error) {
	ret := m.Called(ctx, id, origin)
	var b []byte
	if v := ret.Get(0); v != nil {
		b = v.([]byte)
	}
	return b, ret.Error(1)
}

var (
	_ service.CartStore                = (*CartStore)(nil)
	_ service.ProductReader            = (*ProductReader)(nil)
	_ service.OrderRepository          = (*OrderRepository)(nil)
	_ service.EventPublisher           = (*EventPublisher)(nil)
	_ service.QRGenerator              = (*QRGenerator)(nil)
	_ service.CheckoutServiceInterface = (*CheckoutService)(nil)
	_ service.OrderServiceInterface    = (*OrderService)(nil)
)
