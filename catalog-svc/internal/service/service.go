package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"

	"sendr/catalog-svc/internal/domain"
	"sendr/pkg/metrics"

	"golang.org/x/crypto/bcrypt"
)

const serviceName = "catalog-svc"

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs
	maxPasswordBytes = 72
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrVendorNotFound     = errors.New("Vendor not found")
	ErrShopNotFound       = errors.New("Shop not found")
	ErrProductNotFound    = errors.New("Product not found")
	ErrUnsupportedImage   = errors.New("Invalid file type. Only JPEG, PNG, GIF, WebP allowed")
)

type VendorRepository interface {
	CreateVendor(ctx context.Context, vendor *domain.Vendor) error
	GetVendor(ctx context.Context, id string) (*domain.Vendor, error)
	GetVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	UpsertVendorProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Vendor, error)
}

type ShopRepository interface {
	CreateShop(ctx context.Context, shop *domain.Shop) error
	GetShop(ctx context.Context, id string) (*domain.Shop, error)
	ListShops(ctx context.Context, pincode string) ([]domain.Shop, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) (int64, error)
	UpdateProductImage(ctx context.Context, id, imageURL string) error
}

type TokenIssuer interface {
	Issue(vendorID, email string) (string, error)
}

type VendorServiceInterface interface {
	Register(ctx context.Context, email, password, name, phone string) (*domain.Vendor, string, error)
	Login(ctx context.Context, email, password string) (*domain.Vendor, string, error)
	Profile(ctx context.Context, id string) (*domain.Vendor, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Vendor, error)
}

type ShopServiceInterface interface {
	List(ctx context.Context, pincode string) ([]domain.Shop, error)
	Get(ctx context.Context, id string) (*domain.Shop, error)
	Create(ctx context.Context, vendorID string, shop *domain.Shop) error
}

type ProductServiceInterface interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, vendorID string, product *domain.Product) error
	Update(ctx context.Context, vendorID string, product *domain.Product) error
	Delete(ctx context.Context, vendorID, id string) error
	SetImage(ctx context.Context, vendorID, id, filename, contentType string, content io.Reader) (string, error)
}

type VendorService struct {
	repo   VendorRepository
	tokens TokenIssuer
}

func NewVendorService(repo VendorRepository, tokens TokenIssuer) *VendorService {
	return &VendorService{repo: repo, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *VendorService) Register(ctx context.Context, email, password, name, phone string) (*domain.Vendor, string, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, "", fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	if err != nil {
		return nil, "", err
	}

	vendor := &domain.Vendor{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
	}
	if err := s.repo.CreateVendor(ctx, vendor); err != nil {
		metrics.RecordOperation(serviceName, "register", false)
		return nil, "", err
	}
	metrics.RecordOperation(serviceName, "register", true)

	token, err := s.tokens.Issue(vendor.ID, vendor.Email)
	if err != nil {
		return nil, "", err
	}
	return vendor, token, nil
}

func (s *VendorService) Login(ctx context.Context, email, password string) (*domain.Vendor, string, error) {
	vendor, err := s.repo.GetVendorByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		metrics.RecordOperation(serviceName, "login", false)
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(password)); err != nil {
		metrics.RecordOperation(serviceName, "login", false)
		return nil, "", ErrInvalidCredentials
	}
	metrics.RecordOperation(serviceName, "login", true)

	token, err := s.tokens.Issue(vendor.ID, vendor.Email)
	if err != nil {
		return nil, "", err
	}
	return vendor, token, nil
}

func (s *VendorService) Profile(ctx context.Context, id string) (*domain.Vendor, error) {
	vendor, err := s.repo.GetVendor(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return vendor, err
}

// UpdateProfile merges the given attributes into the vendor's profile,
// creating it when missing. Applying the same update twice is a no-op.
func (s *VendorService) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Vendor, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.UpsertVendorProfile(ctx, id, update)
}

var _ VendorServiceInterface = (*VendorService)(nil)

type ShopService struct {
	repo    ShopRepository
	vendors VendorRepository
}

func NewShopService(repo ShopRepository, vendors VendorRepository) *ShopService {
	return &ShopService{repo: repo, vendors: vendors}
}

func (s *ShopService) List(ctx context.Context, pincode string) ([]domain.Shop, error) {
	return s.repo.ListShops(ctx, strings.TrimSpace(pincode))
}

func (s *ShopService) Get(ctx context.Context, id string) (*domain.Shop, error) {
	shop, err := s.repo.GetShop(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrShopNotFound
	}
	return shop, err
}

// Create stores the shop and links it to the vendor's profile. A failed link
// is logged; the shop itself is already durable.
func (s *ShopService) Create(ctx context.Context, vendorID string, shop *domain.Shop) error {
	shop.Name = strings.TrimSpace(shop.Name)
	shop.Pincode = strings.TrimSpace(shop.Pincode)
	if shop.Name == "" || shop.Pincode == "" {
		return fmt.Errorf("%w: name and pincode are required", ErrInvalidInput)
	}
	shop.VendorID = vendorID

	if err := s.repo.CreateShop(ctx, shop); err != nil {
		return err
	}

	_, err := s.vendors.UpsertVendorProfile(ctx, vendorID, domain.ProfileUpdate{
		ShopID:   &shop.ID,
		ShopName: &shop.Name,
	})
	if err != nil {
		log.Printf("[catalog-svc] link shop %s to vendor %s: %v", shop.ID, vendorID, err)
	}
	return nil
}

var _ ShopServiceInterface = (*ShopService)(nil)

type ProductService struct {
	repo   ProductRepository
	shops  ShopRepository
	images ImageStore
}

func NewProductService(repo ProductRepository, shops ShopRepository, images ImageStore) *ProductService {
	return &ProductService{repo: repo, shops: shops, images: images}
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *ProductService) Create(ctx context.Context, vendorID string, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	shop, err := s.shops.GetShop(ctx, product.ShopID)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrShopNotFound
	}
	if err != nil {
		return err
	}
	if shop.VendorID != vendorID {
		return ErrForbidden
	}

	product.VendorID = vendorID
	return s.repo.CreateProduct(ctx, product)
}

// owned loads a product and checks that vendorID owns it.
func (s *ProductService) owned(ctx context.Context, vendorID, id string) (*domain.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.VendorID != vendorID {
		return nil, ErrForbidden
	}
	return existing, nil
}

func (s *ProductService) Update(ctx context.Context, vendorID string, product *domain.Product) error {
	existing, err := s.owned(ctx, vendorID, product.ID)
	if err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}

	product.ShopID = existing.ShopID
	product.VendorID = existing.VendorID
	product.ImageURL = existing.ImageURL
	product.CreatedAt = existing.CreatedAt
	return s.repo.UpdateProduct(ctx, product)
}

func (s *ProductService) Delete(ctx context.Context, vendorID, id string) error {
	if _, err := s.owned(ctx, vendorID, id); err != nil {
		return err
	}
	rows, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) SetImage(ctx context.Context, vendorID, id, filename, contentType string, content io.Reader) (string, error) {
	if !allowedImageTypes[contentType] {
		return "", ErrUnsupportedImage
	}
	if _, err := s.owned(ctx, vendorID, id); err != nil {
		return "", err
	}

	imageURL, err := s.images.Save("product_"+id, filename, content)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateProductImage(ctx, id, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}

var _ ProductServiceInterface = (*ProductService)(nil)
