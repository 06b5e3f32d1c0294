package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sendr/order-svc/internal/cart"
	"sendr/order-svc/internal/domain"
	"sendr/order-svc/internal/live"
	"sendr/order-svc/internal/service"
	"sendr/pkg/auth"
	"sendr/pkg/ratelimit"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// SessionHeader carries the customer's cart session id.
const SessionHeader = "X-Session-ID"

type CartStore interface {
	Load(ctx context.Context, session string) ([]domain.CartItem, error)
	Add(ctx context.Context, session string, item domain.CartItem) ([]domain.CartItem, error)
	SetQty(ctx context.Context, session string, index, qty int) ([]domain.CartItem, error)
	Remove(ctx context.Context, session string, index int) ([]domain.CartItem, error)
	Clear(ctx context.Context, session string) error
	Summary(ctx context.Context, session string) (domain.CartSummary, error)
	Subscribe(ctx context.Context, session string) (*redis.PubSub, error)
	SeenLocationModal(ctx context.Context, session string) (bool, error)
	MarkLocationModalSeen(ctx context.Context, session string) error
	SetLocation(ctx context.Context, session string, loc domain.Location) error
	Location(ctx context.Context, session string) (*domain.Location, error)
}

type LiveHub interface {
	WatchOrder(ctx context.Context, id string) (*live.Subscription[live.OrderSnapshot], error)
	WatchOrders(ctx context.Context, vendorID string) (*live.Subscription[live.ListSnapshot], error)
}

var (
	_ CartStore = (*cart.Store)(nil)
	_ LiveHub   = (*live.Hub)(nil)
)

type Handler struct {
	Cart     CartStore
	Checkout service.CheckoutServiceInterface
	Orders   service.OrderServiceInterface
	Hub      LiveHub
	Auth     *auth.Issuer
	Limiter  *ratelimit.Limiter
}

func NewHandler(cartStore CartStore, checkout service.CheckoutServiceInterface, orders service.OrderServiceInterface, hub LiveHub, issuer *auth.Issuer, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		Cart:     cartStore,
		Checkout: checkout,
		Orders:   orders,
		Hub:      hub,
		Auth:     issuer,
		Limiter:  limiter,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/summary", h.getCartSummary).Methods("GET")
	r.HandleFunc("/api/cart/live", h.cartLive).Methods("GET")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{index}", h.updateCartItem).Methods("PATCH")
	r.HandleFunc("/api/cart/items/{index}", h.removeCartItem).Methods("DELETE")

	r.HandleFunc("/api/session/location", h.getLocation).Methods("GET")
	r.HandleFunc("/api/session/location", h.putLocation).Methods("PUT")
	r.HandleFunc("/api/session/location-modal", h.getLocationModal).Methods("GET")
	r.HandleFunc("/api/session/location-modal", h.putLocationModal).Methods("PUT")

	r.Handle("/api/checkout", h.limited(h.checkout)).Methods("POST")

	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
	r.HandleFunc("/api/orders/{id}/live", h.orderLive).Methods("GET")

	vendor := r.PathPrefix("/api/vendor").Subrouter()
	vendor.Use(h.Auth.Middleware)
	vendor.HandleFunc("/orders", h.getVendorOrders).Methods("GET")
	vendor.HandleFunc("/orders/live", h.vendorOrdersLive).Methods("GET")
	vendor.HandleFunc("/orders/{id}/actions", h.applyOrderAction).Methods("POST")
}

func (h *Handler) limited(fn http.HandlerFunc) http.Handler {
	if h.Limiter == nil {
		return fn
	}
	return h.Limiter.Middleware(fn)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sessionID falls back to the query string for WebSocket handshakes.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("session")
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidSession), errors.Is(err, cart.ErrInvalidItem), errors.Is(err, cart.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrConcurrentUpdate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeCart(w http.ResponseWriter, items []domain.CartItem) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":   items,
		"summary": cart.Summarize(items),
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.Cart.Load(r.Context(), sessionID(r))
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeCart(w, items)
}

func (h *Handler) getCartSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Cart.Summary(r.Context(), sessionID(r))
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.Cart.Add(r.Context(), sessionID(r), item)
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeCart(w, items)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "Invalid item index", http.StatusBadRequest)
		return
	}
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.Cart.SetQty(r.Context(), sessionID(r), index, payload.Qty)
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeCart(w, items)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	items, err := h.Cart.Remove(r.Context(), sessionID(r), index)
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeCart(w, items)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context(), sessionID(r)); err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Cart.Location(r.Context(), sessionID(r))
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"location": loc})
}

func (h *Handler) putLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cart.SetLocation(r.Context(), sessionID(r), loc); err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getLocationModal(w http.ResponseWriter, r *http.Request) {
	seen, err := h.Cart.SeenLocationModal(r.Context(), sessionID(r))
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"seen": seen})
}

func (h *Handler) putLocationModal(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.MarkLocationModalSeen(r.Context(), sessionID(r)); err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	placement, err := h.Checkout.PlaceOrder(r.Context(), sessionID(r), payload.PaymentMethod, r.Header.Get("Origin"))
	if err != nil {
		var checkoutErr *service.CheckoutError
		switch {
		case errors.As(err, &checkoutErr):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrInvalidPaymentMethod), errors.Is(err, cart.ErrInvalidSession):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}
	writeJSON(w, http.StatusCreated, placement)
}

type orderView struct {
	*domain.Order
	Timeline []domain.StatusEntry `json:"timeline"`
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrOrderNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orderView{Order: order, Timeline: order.SortedHistory()})
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.TrackingQRCode(r.Context(), mux.Vars(r)["id"], r.Header.Get("Origin"))
	if errors.Is(err, service.ErrOrderNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) getVendorOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListForVendor(r.Context(), auth.VendorIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) applyOrderAction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Action  string `json:"action"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	order, err := h.Orders.ApplyAction(r.Context(), mux.Vars(r)["id"], auth.VendorIDFromContext(r.Context()), payload.Action, payload.Confirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownAction), errors.Is(err, service.ErrConfirmationRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrNotOrderVendor):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrActionInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}
	writeJSON(w, http.StatusOK, order)
}
