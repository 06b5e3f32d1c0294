package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"sendr/order-svc/internal/domain"
	"sendr/pkg/auth"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) orderLive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.Hub.WatchOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[order-svc] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	pump(ctx, cancel, conn, sub.C)
}

func (h *Handler) vendorOrdersLive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.Hub.WatchOrders(ctx, auth.VendorIDFromContext(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[order-svc] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	pump(ctx, cancel, conn, sub.C)
}

// cartLive streams the cart summary, recomputed from the canonical entry on
// every cart-updated notification.
func (h *Handler) cartLive(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	initial, err := h.Cart.Summary(ctx, session)
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	pubsub, err := h.Cart.Subscribe(ctx, session)
	if err != nil {
		http.Error(w, err.Error(), cartErrorStatus(err))
		return
	}
	defer pubsub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[order-svc] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	summaries := make(chan domain.CartSummary, 1)
	summaries <- initial
	go func() {
		notifications := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-notifications:
				if !ok {
					return
				}
				summary, err := h.Cart.Summary(ctx, session)
				if err != nil {
					log.Printf("[order-svc] cart summary for %s: %v", session, err)
					continue
				}
				select {
				case summaries <- summary:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	pump(ctx, cancel, conn, summaries)
}

// pump writes every value from updates as a JSON frame until the client
// goes away, ctx ends or updates closes.
func pump[T any](ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, updates <-chan T) {
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
