package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sendr/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderChangesChannel is the NOTIFY channel fed by the orders trigger.
const OrderChangesChannel = "order_changes"

const orderColumns = `id, COALESCE(order_id, ''), vendor_id, session_id, items, subtotal, delivery, total,
	status, payment_method, payment_status, status_history, created_at, updated_at`

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order   domain.Order
		items   []byte
		history []byte
	)
	if err := row.Scan(&order.ID, &order.OrderID, &order.VendorID, &order.SessionID, &items,
		&order.Subtotal, &order.Delivery, &order.Total, &order.Status, &order.PaymentMethod,
		&order.PaymentStatus, &history, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	if err := json.Unmarshal(history, &order.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode history of order %s: %w", order.ID, err)
	}
	if order.StatusHistory == nil {
		order.StatusHistory = []domain.StatusEntry{}
	}
	return &order, nil
}

// CreateOrder assigns a fresh id and inserts the order.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	if order.StatusHistory == nil {
		order.StatusHistory = []domain.StatusEntry{}
	}
	history, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return err
	}

	order.ID = uuid.NewString()
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO orders (id, vendor_id, session_id, items, subtotal, delivery, total,
			status, payment_method, payment_status, status_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, order.ID, order.VendorID, order.SessionID, items, order.Subtotal, order.Delivery, order.Total,
		order.Status, order.PaymentMethod, order.PaymentStatus, history).
		Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (r *PostgresRepository) SetOrderID(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET order_id = id WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return order, err
}

// ListOrders returns the newest orders first. An empty vendorID lists all.
func (r *PostgresRepository) ListOrders(ctx context.Context, vendorID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if vendorID != "" {
		query += ` WHERE vendor_id = $1`
		args = append(args, vendorID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// AppendStatus sets the status and appends one history entry stamped with
// the database clock, provided the current status is in allowedFrom.
func (r *PostgresRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry, allowedFrom []string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2,
			status_history = status_history || jsonb_build_array(
				jsonb_build_object('status', $2::text, 'by', $3::text, 'at', now())),
			updated_at = now()
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+orderColumns,
		id, entry.Status, entry.By, pq.Array(allowedFrom)))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrStatusConflict
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, shop_id, vendor_id, name, price, quantity, available
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.ShopID, &p.VendorID, &p.Name, &p.Price, &p.Quantity, &p.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_id TEXT,
			vendor_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			items JSONB NOT NULL DEFAULT '[]',
			subtotal NUMERIC(12, 2) NOT NULL,
			delivery NUMERIC(12, 2) NOT NULL,
			total NUMERIC(12, 2) NOT NULL,
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			status_history JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS orders_vendor_created_idx ON orders (vendor_id, created_at DESC)",
		`CREATE OR REPLACE FUNCTION notify_order_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('` + OrderChangesChannel + `', COALESCE(NEW.id, OLD.id));
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`,
		"DROP TRIGGER IF EXISTS orders_notify_change ON orders",
		`CREATE TRIGGER orders_notify_change
			AFTER INSERT OR UPDATE OR DELETE ON orders
			FOR EACH ROW EXECUTE FUNCTION notify_order_change()`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
