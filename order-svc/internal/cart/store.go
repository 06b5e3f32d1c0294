// Package cart keeps each customer session's cart in Redis, reconciling the
// legacy keys older storefront builds wrote into one versioned entry.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"sendr/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Store struct {
	client *redis.Client
	schema *jsonschema.Schema
}

// maxTxRetries bounds optimistic retries when concurrent writers touch the
// same canonical key.
const maxTxRetries = 1000

func NewStore(client *redis.Client) *Store {
	schema, err := entrySchemaOnce()
	if err != nil {
		panic(fmt.Sprintf("cart entry schema: %v", err))
	}
	return &Store{client: client, schema: schema}
}

// keyReader is satisfied by both the client and a WATCH transaction, so
// reconciliation can run on the transaction's connection.
type keyReader interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

type candidate struct {
	key    string
	parsed any
}

// Load returns the session's cart. When the canonical key does not hold a
// valid versioned entry the legacy keys are reconciled into one and the
// result is persisted under the canonical key. Legacy keys are kept until
// Clear.
func (s *Store) Load(ctx context.Context, session string) ([]domain.CartItem, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, storageKey(session, CanonicalKey)).Bytes()
	switch {
	case err == nil:
		if items, ok := decodeEntry(s.schema, raw); ok {
			return items, nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	return s.migrate(ctx, session)
}

func (s *Store) migrate(ctx context.Context, session string) ([]domain.CartItem, error) {
	return s.mutate(ctx, session, func(items []domain.CartItem) ([]domain.CartItem, error) {
		return items, nil
	})
}

// current reads the canonical entry inside a WATCH, reconciling the legacy
// keys when it is missing or invalid.
func (s *Store) current(ctx context.Context, tx *redis.Tx, session string) ([]domain.CartItem, error) {
	raw, err := tx.Get(ctx, storageKey(session, CanonicalKey)).Bytes()
	switch {
	case err == nil:
		if items, ok := decodeEntry(s.schema, raw); ok {
			return items, nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	candidates, err := s.readCandidates(ctx, tx, session)
	if err != nil {
		return nil, err
	}
	return NormalizeItems(pickCandidate(candidates)), nil
}

// readCandidates parses every known key and every other key whose name
// contains "cart". Unparseable values are skipped.
func (s *Store) readCandidates(ctx context.Context, rd keyReader, session string) ([]candidate, error) {
	extra, err := s.cartKeys(ctx, rd, session)
	if err != nil {
		return nil, err
	}

	locals := make([]string, 0, len(KnownKeys)+len(extra))
	locals = append(locals, KnownKeys...)
	for _, k := range extra {
		if !isKnownKey(k) {
			locals = append(locals, k)
		}
	}

	keys := make([]string, len(locals))
	for i, k := range locals {
		keys[i] = storageKey(session, k)
	}
	values, err := rd.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var found []candidate
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(str), &parsed); err != nil {
			continue
		}
		found = append(found, candidate{key: locals[i], parsed: parsed})
	}
	return found, nil
}

// pickCandidate chooses the first non-empty list: a bare array under the
// canonical key, then the v1 key, then any array or {items:[...]} value in
// enumeration order.
func pickCandidate(found []candidate) []any {
	for _, preferred := range []string{CanonicalKey, LegacyV1Key} {
		for _, c := range found {
			if c.key != preferred {
				continue
			}
			if arr, ok := c.parsed.([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	}

	for _, c := range found {
		if arr, ok := c.parsed.([]any); ok && len(arr) > 0 {
			return arr
		}
		if obj, ok := c.parsed.(map[string]any); ok {
			if arr, ok := obj["items"].([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	}
	return nil
}

// cartKeys lists the session's local key names containing "cart" in any
// case, sorted.
func (s *Store) cartKeys(ctx context.Context, rd keyReader, session string) ([]string, error) {
	prefix := namespace(session)
	var locals []string

	iter := rd.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		local := strings.TrimPrefix(iter.Val(), prefix)
		if cartKeyPattern.MatchString(local) {
			locals = append(locals, local)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Strings(locals)
	return locals, nil
}

func (s *Store) publish(ctx context.Context, session string, items []domain.CartItem) {
	if items == nil {
		items = []domain.CartItem{}
	}
	payload, _ := json.Marshal(map[string]any{"items": items})
	if err := s.client.Publish(ctx, UpdatesChannel(session), payload).Err(); err != nil {
		log.Printf("[cart] publish cart-updated for %s: %v", session, err)
	}
}

// mutate applies fn to the current cart under WATCH on the canonical key and
// retries when another writer commits first.
func (s *Store) mutate(ctx context.Context, session string, fn func([]domain.CartItem) ([]domain.CartItem, error)) ([]domain.CartItem, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	key := storageKey(session, CanonicalKey)

	var next []domain.CartItem
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		items, err := s.current(ctx, tx, session)
		if err != nil {
			return err
		}
		next, err = fn(items)
		if err != nil {
			return err
		}
		payload, err := encodeEntry(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if next == nil {
		next = []domain.CartItem{}
	}
	s.publish(ctx, session, next)
	return next, nil
}

func (s *Store) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrConcurrentUpdate
}

// Add appends item, or adds its quantity to the line with the same product id.
func (s *Store) Add(ctx context.Context, session string, item domain.CartItem) ([]domain.CartItem, error) {
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
		return nil, ErrInvalidItem
	}
	if item.Name == "" {
		item.Name = unknownProductName
	}
	if item.Qty < 1 {
		item.Qty = 1
	}

	return s.mutate(ctx, session, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if item.ProductID != nil {
			for i := range items {
				if items[i].ProductID != nil && *items[i].ProductID == *item.ProductID {
					items[i].Qty += item.Qty
					return items, nil
				}
			}
		}
		return append(items, item), nil
	})
}

// SetQty changes the quantity of the line at index. Quantities below one are
// clamped to one.
func (s *Store) SetQty(ctx context.Context, session string, index, qty int) ([]domain.CartItem, error) {
	if qty < 1 {
		qty = 1
	}
	return s.mutate(ctx, session, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if index < 0 || index >= len(items) {
			return nil, ErrItemNotFound
		}
		items[index].Qty = qty
		return items, nil
	})
}

func (s *Store) Remove(ctx context.Context, session string, index int) ([]domain.CartItem, error) {
	return s.mutate(ctx, session, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if index < 0 || index >= len(items) {
			return nil, ErrItemNotFound
		}
		return append(items[:index], items[index+1:]...), nil
	})
}

// Summary reads only the canonical key. A missing or invalid entry counts as
// an empty cart.
func (s *Store) Summary(ctx context.Context, session string) (domain.CartSummary, error) {
	if err := validateSession(session); err != nil {
		return domain.CartSummary{}, err
	}

	raw, err := s.client.Get(ctx, storageKey(session, CanonicalKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartSummary{}, nil
	}
	if err != nil {
		return domain.CartSummary{}, err
	}

	items, _ := decodeEntry(s.schema, raw)
	return Summarize(items), nil
}

func Summarize(items []domain.CartItem) domain.CartSummary {
	var sum domain.CartSummary
	for _, it := range items {
		sum.Count += it.Qty
		sum.Total += float64(it.Qty) * it.Price
	}
	return sum
}

// Clear deletes the canonical key, every known legacy key and every other
// key containing "cart", then stores and announces an empty cart.
func (s *Store) Clear(ctx context.Context, session string) error {
	return s.ClearOrdered(ctx, session, nil)
}

// ClearOrdered removes every cart key like Clear, but keeps the lines that
// were added after checkout read the cart: the ordered quantities are
// subtracted from the current canonical entry and the remainder is stored.
// A nil ordered list empties the cart.
func (s *Store) ClearOrdered(ctx context.Context, session string, ordered []domain.CartItem) error {
	if err := validateSession(session); err != nil {
		return err
	}

	canonical := storageKey(session, CanonicalKey)

	remaining := []domain.CartItem{}
	err := s.watch(ctx, canonical, func(tx *redis.Tx) error {
		extra, err := s.cartKeys(ctx, tx, session)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(KnownKeys)+len(extra))
		for _, k := range KnownKeys {
			keys = append(keys, storageKey(session, k))
		}
		for _, k := range extra {
			keys = append(keys, storageKey(session, k))
		}

		remaining = []domain.CartItem{}
		if ordered != nil {
			items, err := s.current(ctx, tx, session)
			if err != nil {
				return err
			}
			remaining = subtractOrdered(items, ordered)
		}
		payload, err := encodeEntry(remaining)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, keys...)
			pipe.Set(ctx, canonical, payload, 0)
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, session, remaining)
	return nil
}

// subtractOrdered takes each ordered quantity off the first line with the
// same product id and drops lines that reach zero.
func subtractOrdered(items, ordered []domain.CartItem) []domain.CartItem {
	taken := make(map[string]int, len(ordered))
	for _, o := range ordered {
		if o.ProductID != nil {
			taken[*o.ProductID] += o.Qty
		}
	}

	remaining := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			if n := taken[*it.ProductID]; n > 0 {
				used := min(n, it.Qty)
				taken[*it.ProductID] -= used
				it.Qty -= used
			}
		}
		if it.Qty > 0 {
			remaining = append(remaining, it)
		}
	}
	return remaining
}

// Subscribe listens for cart-updated notifications of one session.
func (s *Store) Subscribe(ctx context.Context, session string) (*redis.PubSub, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	pubsub := s.client.Subscribe(ctx, UpdatesChannel(session))
	// wait for the subscription confirmation so no update is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}

// MigrateAll reconciles every session that has cart keys but no valid
// versioned entry, returning how many sessions were migrated.
func (s *Store) MigrateAll(ctx context.Context) (int, error) {
	sessions := make(map[string]struct{})

	iter := s.client.Scan(ctx, 0, "sendr:*", 500).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), "sendr:")
		session, local, ok := strings.Cut(rest, ":")
		if !ok || validateSession(session) != nil || !cartKeyPattern.MatchString(local) {
			continue
		}
		sessions[session] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}

	ordered := make([]string, 0, len(sessions))
	for session := range sessions {
		ordered = append(ordered, session)
	}
	sort.Strings(ordered)

	migrated := 0
	for _, session := range ordered {
		raw, err := s.client.Get(ctx, storageKey(session, CanonicalKey)).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return migrated, err
		}
		if err == nil {
			if _, ok := decodeEntry(s.schema, raw); ok {
				continue
			}
		}
		if _, err := s.migrate(ctx, session); err != nil {
			return migrated, fmt.Errorf("migrate session %s: %w", session, err)
		}
		migrated++
	}
	return migrated, nil
}
