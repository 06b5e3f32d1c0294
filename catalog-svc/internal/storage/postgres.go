package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sendr/catalog-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

const vendorColumns = `id, COALESCE(email, ''), password_hash, name, phone, shop_id, shop_name, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*domain.Vendor, error) {
	var v domain.Vendor
	err := row.Scan(&v.ID, &v.Email, &v.PasswordHash, &v.Name, &v.Phone, &v.ShopID, &v.ShopName, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	vendor.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO vendors (id, email, password_hash, name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		vendor.ID, vendor.Email, vendor.PasswordHash, vendor.Name, vendor.Phone,
	).Scan(&vendor.CreatedAt, &vendor.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	return scanVendor(r.DB.QueryRowContext(ctx, "SELECT "+vendorColumns+" FROM vendors WHERE id = $1", id))
}

func (r *PostgresRepository) GetVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	return scanVendor(r.DB.QueryRowContext(ctx, "SELECT "+vendorColumns+" FROM vendors WHERE email = $1", email))
}

// UpsertVendorProfile merges non-nil attributes into the vendor row, creating
// a profile-only row when the id is unknown.
func (r *PostgresRepository) UpsertVendorProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Vendor, error) {
	return scanVendor(r.DB.QueryRowContext(ctx, `
		INSERT INTO vendors (id, name, phone, shop_id, shop_name)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE($2, vendors.name),
			phone = COALESCE($3, vendors.phone),
			shop_id = COALESCE($4, vendors.shop_id),
			shop_name = COALESCE($5, vendors.shop_name),
			updated_at = now()
		RETURNING `+vendorColumns,
		id, update.Name, update.Phone, update.ShopID, update.ShopName))
}

const shopColumns = `id, vendor_id, name, address, pincode, category, image_url, created_at`

func scanShop(row rowScanner) (*domain.Shop, error) {
	var s domain.Shop
	err := row.Scan(&s.ID, &s.VendorID, &s.Name, &s.Address, &s.Pincode, &s.Category, &s.ImageURL, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) CreateShop(ctx context.Context, shop *domain.Shop) error {
	shop.ID = uuid.NewString()
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO shops (id, vendor_id, name, address, pincode, category, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		shop.ID, shop.VendorID, shop.Name, shop.Address, shop.Pincode, shop.Category, shop.ImageURL,
	).Scan(&shop.CreatedAt)
}

func (r *PostgresRepository) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	return scanShop(r.DB.QueryRowContext(ctx, "SELECT "+shopColumns+" FROM shops WHERE id = $1", id))
}

// ListShops returns every shop, or only those in pincode when it is set.
func (r *PostgresRepository) ListShops(ctx context.Context, pincode string) ([]domain.Shop, error) {
	query := "SELECT " + shopColumns + " FROM shops"
	var args []any
	if pincode != "" {
		query += " WHERE pincode = $1"
		args = append(args, pincode)
	}
	query += " ORDER BY name"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []domain.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, *shop)
	}
	return shops, rows.Err()
}

const productColumns = `id, shop_id, vendor_id, name, description, category, price, unit, quantity, available, image_url, created_at, updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.ShopID, &p.VendorID, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Unit, &p.Quantity, &p.Available, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO products (id, shop_id, vendor_id, name, description, category, price, unit, quantity, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		p.ID, p.ShopID, p.VendorID, p.Name, p.Description, p.Category, p.Price, p.Unit, p.Quantity, p.Available, p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return scanProduct(r.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
}

func (r *PostgresRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.ShopID != "" {
		add("shop_id = ?", filter.ShopID)
	}
	if filter.Category != "" {
		add("category = ?", filter.Category)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add("name ILIKE ?", "%"+q+"%")
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, category=$3, price=$4, unit=$5, quantity=$6, available=$7, updated_at=now()
		WHERE id=$8
		RETURNING updated_at`,
		p.Name, p.Description, p.Category, p.Price, p.Unit, p.Quantity, p.Available, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) UpdateProductImage(ctx context.Context, id, imageURL string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE products SET image_url=$1, updated_at=now() WHERE id=$2", imageURL, id)
	return err
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS vendors (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			shop_id TEXT NOT NULL DEFAULT '',
			shop_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS shops (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			pincode TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS shops_pincode_idx ON shops (pincode)",
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			shop_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
			unit TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			available BOOLEAN NOT NULL DEFAULT TRUE,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS products_shop_idx ON products (shop_id)",
	}

	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
