// Package live fans order changes out to subscribers as full snapshots.
package live

import (
	"context"
	"errors"
	"log"
	"sync"

	"sendr/order-svc/internal/domain"
)

type OrderSnapshot struct {
	Order *domain.Order `json:"order"`
	Found bool          `json:"found"`
}

type ListSnapshot struct {
	Orders []domain.Order `json:"orders"`
}

type Loader interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, vendorID string) ([]domain.Order, error)
}

type Hub struct {
	loader Loader

	mu        sync.Mutex
	seq       uint64
	orderSubs map[string]map[*Subscription[OrderSnapshot]]struct{}
	listSubs  map[*Subscription[ListSnapshot]]string
}

func NewHub(loader Loader) *Hub {
	return &Hub{
		loader:    loader,
		orderSubs: make(map[string]map[*Subscription[OrderSnapshot]]struct{}),
		listSubs:  make(map[*Subscription[ListSnapshot]]string),
	}
}

// ticket must be called with mu held.
func (h *Hub) ticket() uint64 {
	h.seq++
	return h.seq
}

// WatchOrder streams snapshots of one order, starting with the current one.
// A missing order is reported as a snapshot with Found false.
func (h *Hub) WatchOrder(ctx context.Context, id string) (*Subscription[OrderSnapshot], error) {
	sub := newSubscription[OrderSnapshot]()

	h.mu.Lock()
	if h.orderSubs[id] == nil {
		h.orderSubs[id] = make(map[*Subscription[OrderSnapshot]]struct{})
	}
	h.orderSubs[id][sub] = struct{}{}
	seq := h.ticket()
	h.mu.Unlock()

	sub.cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.orderSubs[id], sub)
		if len(h.orderSubs[id]) == 0 {
			delete(h.orderSubs, id)
		}
		close(sub.ch)
	}
	context.AfterFunc(ctx, sub.Cancel)

	snap, err := h.loadOrder(ctx, id)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	h.mu.Lock()
	if _, ok := h.orderSubs[id][sub]; ok {
		sub.offer(seq, snap)
	}
	h.mu.Unlock()
	return sub, nil
}

// WatchOrders streams the order list of one vendor, or of every vendor when
// vendorID is empty.
func (h *Hub) WatchOrders(ctx context.Context, vendorID string) (*Subscription[ListSnapshot], error) {
	sub := newSubscription[ListSnapshot]()

	h.mu.Lock()
	h.listSubs[sub] = vendorID
	seq := h.ticket()
	h.mu.Unlock()

	sub.cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listSubs, sub)
		close(sub.ch)
	}
	context.AfterFunc(ctx, sub.Cancel)

	orders, err := h.loader.ListOrders(ctx, vendorID)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	h.mu.Lock()
	if _, ok := h.listSubs[sub]; ok {
		sub.offer(seq, ListSnapshot{Orders: orders})
	}
	h.mu.Unlock()
	return sub, nil
}

func (h *Hub) loadOrder(ctx context.Context, id string) (OrderSnapshot, error) {
	order, err := h.loader.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return OrderSnapshot{Found: false}, nil
	}
	if err != nil {
		return OrderSnapshot{}, err
	}
	return OrderSnapshot{Order: order, Found: true}, nil
}

// Run refreshes subscribers for every order id received on changes until
// the channel closes or ctx ends. An empty id refreshes everything.
func (h *Hub) Run(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-changes:
			if !ok {
				return
			}
			if id == "" {
				h.RefreshAll(ctx)
				continue
			}
			h.OrderChanged(ctx, id)
		}
	}
}

// OrderChanged pushes a new snapshot of the order and of the lists that can
// contain it.
func (h *Hub) OrderChanged(ctx context.Context, id string) {
	h.mu.Lock()
	seq := h.ticket()
	h.mu.Unlock()

	snap, err := h.loadOrder(ctx, id)
	if err != nil {
		log.Printf("[order-svc] live: load order %s: %v", id, err)
		return
	}

	h.mu.Lock()
	for sub := range h.orderSubs[id] {
		sub.offer(seq, snap)
	}
	h.mu.Unlock()

	if snap.Found {
		h.refreshLists(ctx, func(vendorID string) bool {
			return vendorID == "" || vendorID == snap.Order.VendorID
		})
		return
	}
	h.refreshLists(ctx, func(string) bool { return true })
}

func (h *Hub) RefreshAll(ctx context.Context) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.orderSubs))
	for id := range h.orderSubs {
		ids = append(ids, id)
	}
	seq := h.ticket()
	h.mu.Unlock()

	for _, id := range ids {
		snap, err := h.loadOrder(ctx, id)
		if err != nil {
			log.Printf("[order-svc] live: load order %s: %v", id, err)
			continue
		}
		h.mu.Lock()
		for sub := range h.orderSubs[id] {
			sub.offer(seq, snap)
		}
		h.mu.Unlock()
	}
	h.refreshLists(ctx, func(string) bool { return true })
}

func (h *Hub) refreshLists(ctx context.Context, match func(vendorID string) bool) {
	h.mu.Lock()
	vendors := make(map[string]struct{})
	for _, vendorID := range h.listSubs {
		if match(vendorID) {
			vendors[vendorID] = struct{}{}
		}
	}
	seq := h.ticket()
	h.mu.Unlock()

	for vendorID := range vendors {
		orders, err := h.loader.ListOrders(ctx, vendorID)
		if err != nil {
			log.Printf("[order-svc] live: list orders for %q: %v", vendorID, err)
			continue
		}
		snap := ListSnapshot{Orders: orders}
		h.mu.Lock()
		for sub, v := range h.listSubs {
			if v == vendorID {
				sub.offer(seq, snap)
			}
		}
		h.mu.Unlock()
	}
}
