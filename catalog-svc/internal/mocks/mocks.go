// Package mocks holds testify mocks for the catalog repositories.
package mocks

import (
	"context"
	"io"

	"sendr/catalog-svc/internal/domain"
	"sendr/catalog-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type VendorRepository struct {
	mock.Mock
}

func NewVendorRepository(t testingT) *VendorRepository {
	m := &VendorRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *VendorRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

func (m *VendorRepository) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	ret := m.Called(ctx, id)
	var v *domain.Vendor
	if r := ret.Get(0); r != nil {
		v = r.(*domain.Vendor)
	}
	return v, ret.Error(1)
}

func (m *VendorRepository) GetVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	ret := m.Called(ctx, email)
	var v *domain.Vendor
	if r := ret.Get(0); r != nil {
		v = r.(*domain.Vendor)
	}
	return v, ret.Error(1)
}

func (m *VendorRepository) UpsertVendorProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Vendor, error) {
	ret := m.Called(ctx, id, update)
	var v *domain.Vendor
	if r := ret.Get(0); r != nil {
		v = r.(*domain.Vendor)
	}
	return v, ret.Error(1)
}

var _ service.VendorRepository = (*VendorRepository)(nil)

type ShopRepository struct {
	mock.Mock
}

func NewShopRepository(t testingT) *ShopRepository {
	m := &ShopRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ShopRepository) CreateShop(ctx context.Context, shop *domain.Shop) error {
	return m.Called(ctx, shop).Error(0)
}

func (m *ShopRepository) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	ret := m.Called(ctx, id)
	var s *domain.Shop
	if r := ret.Get(0); r != nil {
		s = r.(*domain.Shop)
	}
	return s, ret.Error(1)
}

func (m *ShopRepository) ListShops(ctx context.Context, pincode string) ([]domain.Shop, error) {
	ret := m.Called(ctx, pincode)
	var shops []domain.Shop
	if r := ret.Get(0); r != nil {
		shops = r.([]domain.Shop)
	}
	return shops, ret.Error(1)
}

var _ service.ShopRepository = (*ShopRepository)(nil)

type ProductRepository struct {
	mock.Mock
}

func NewProductRepository(t testingT) *ProductRepository {
	m := &ProductRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ret := m.Called(ctx, id)
	var p *domain.Product
	if r := ret.Get(0); r != nil {
		p = r.(*domain.Product)
	}
	return p, ret.Error(1)
}

func (m *ProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ret := m.Called(ctx, filter)
	var products []domain.Product
	if r := ret.Get(0); r != nil {
		products = r.([]domain.Product)
	}
	return products, ret.Error(1)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) DeleteProduct(ctx context.Context, id string) (int64, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *ProductRepository) UpdateProductImage(ctx context.Context, id, imageURL string) error {
	return m.Called(ctx, id, imageURL).Error(0)
}

var _ service.ProductRepository = (*ProductRepository)(nil)

type ImageStore struct {
	mock.Mock
}

func NewImageStore(t testingT) *ImageStore {
	m := &ImageStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ImageStore) Save(prefix, filename string, content io.Reader) (string, error) {
	ret := m.Called(prefix, filename, content)
	return ret.String(0), ret.Error(1)
}

var _ service.ImageStore = (*ImageStore)(nil)
