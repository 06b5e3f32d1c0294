package tests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sendr/order-svc/internal/domain"
	"sendr/order-svc/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "order_id", "vendor_id", "session_id", "items", "subtotal", "delivery", "total",
	"status", "payment_method", "payment_status", "status_history", "created_at", "updated_at",
}

func setupOrderRepo(t *testing.T) (*storage.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return storage.NewPostgresRepository(db), mock
}

func orderRow(rows *sqlmock.Rows, id, vendorID, status, history string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, id, vendorID, session, []byte(`[{"productId":"p1","name":"Milk","price":100,"qty":2}]`),
		200.0, 30.0, 230.0, status, "cod", "pending", []byte(history), now, now)
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	order := &domain.Order{
		VendorID:      "v1",
		SessionID:     session,
		Items:         []domain.OrderItem{{ProductID: "p1", Name: "Milk", Price: 100, Qty: 2}},
		Subtotal:      200,
		Delivery:      30,
		Total:         230,
		Status:        domain.StatusPlaced,
		PaymentMethod: "cod",
		PaymentStatus: "pending",
	}

	now := time.Now()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), "v1", session, sqlmock.AnyArg(), 200.0, 30.0, 230.0,
			"placed", "cod", "pending", []byte("[]")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.CreateOrder(context.Background(), order))
	assert.Len(t, order.ID, 36)
	assert.Equal(t, now, order.CreatedAt)
}

func TestOrderRepository_SetOrderID(t *testing.T) {
	repo, mock := setupOrderRepo(t)

	mock.ExpectExec("UPDATE orders SET order_id = id").
		WithArgs("o1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET order_id = id").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.SetOrderID(context.Background(), "o1"))
	assert.ErrorIs(t, repo.SetOrderID(context.Background(), "gone"), domain.ErrNotFound)
}

func TestOrderRepository_GetOrder(t *testing.T) {
	repo, mock := setupOrderRepo(t)

	history := `[{"status":"accepted","by":"vendor","at":"2024-05-01T10:00:00Z"}]`
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id = \\$1").
		WithArgs("o1").
		WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "o1", "v1", "accepted", history))
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	order, err := repo.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.OrderID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "vendor", order.StatusHistory[0].By)

	_, err = repo.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_ListOrders(t *testing.T) {
	repo, mock := setupOrderRepo(t)

	mock.ExpectQuery("FROM orders WHERE vendor_id = \\$1 ORDER BY created_at DESC").
		WithArgs("v1").
		WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "o1", "v1", "placed", "[]"))
	mock.ExpectQuery("FROM orders ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	orders, err := repo.ListOrders(context.Background(), "v1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = repo.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderRepository_AppendStatus(t *testing.T) {
	entry := domain.StatusEntry{Status: domain.StatusPacked, By: "vendor"}
	allowed := []string{domain.StatusAccepted}

	t.Run("appends to the existing history", func(t *testing.T) {
		repo, mock := setupOrderRepo(t)
		history := `[{"status":"accepted","by":"vendor","at":"2024-05-01T10:00:00Z"},` +
			`{"status":"packed","by":"vendor","at":"2024-05-01T10:05:00Z"}]`

		mock.ExpectQuery(`UPDATE orders\s+SET status = \$2,\s+status_history = status_history \|\| jsonb_build_array`).
			WithArgs("o1", "packed", "vendor", sqlmock.AnyArg()).
			WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "o1", "v1", "packed", history))

		order, err := repo.AppendStatus(context.Background(), "o1", entry, allowed)
		require.NoError(t, err)
		assert.Equal(t, "packed", order.Status)
		require.Len(t, order.StatusHistory, 2)
		assert.Equal(t, "accepted", order.StatusHistory[0].Status)
		assert.Equal(t, "packed", order.StatusHistory[1].Status)
	})

	t.Run("status precondition failed", func(t *testing.T) {
		repo, mock := setupOrderRepo(t)
		mock.ExpectQuery("UPDATE orders").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.AppendStatus(context.Background(), "o1", entry, allowed)
		assert.ErrorIs(t, err, domain.ErrStatusConflict)
	})

	t.Run("order missing", func(t *testing.T) {
		repo, mock := setupOrderRepo(t)
		mock.ExpectQuery("UPDATE orders").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.AppendStatus(context.Background(), "o1", entry, allowed)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderRepository_GetProduct(t *testing.T) {
	repo, mock := setupOrderRepo(t)

	mock.ExpectQuery("FROM products").WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "vendor_id", "name", "price", "quantity", "available"}).
			AddRow("p1", "s1", "v1", "Milk", 30.0, 4, true))
	mock.ExpectQuery("FROM products").WithArgs("p2").WillReturnError(sql.ErrNoRows)

	p, err := repo.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Quantity)
	assert.True(t, p.Available)

	_, err = repo.GetProduct(context.Background(), "p2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupOrderRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_vendor_created_idx").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("pg_notify\\('order_changes'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TRIGGER IF EXISTS orders_notify_change").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TRIGGER orders_notify_change").WillReturnError(errors.New("permission denied"))

	err := repo.EnsureSchema()
	assert.ErrorContains(t, err, "permission denied")
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func TestKafkaPublisher_PublishOrderEvent(t *testing.T) {
	writer := &recordingWriter{}
	publisher := storage.NewKafkaPublisher(writer)

	event := domain.OrderEvent{
		Type:     domain.EventOrderPlaced,
		OrderID:  "o1",
		VendorID: "v1",
		Total:    280,
		Items:    []domain.OrderEventItem{{ProductID: "p1", Qty: 2}},
	}
	require.NoError(t, publisher.PublishOrderEvent(context.Background(), event))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("o1"), writer.messages[0].Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, "order_placed", decoded["type"])
	assert.Equal(t, "v1", decoded["vendor_id"])
}
