package cart

import (
	"math"
	"strconv"
	"strings"

	"sendr/order-svc/internal/domain"
)

const unknownProductName = "Unknown Product"

// maxQty bounds quantities so they fit every int size.
const maxQty = math.MaxInt32

// NormalizeItem converts one raw legacy entry into the canonical item shape.
// It reports false when the entry is not an object or its price or quantity
// cannot be read as a finite non-negative number.
func NormalizeItem(raw any) (domain.CartItem, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.CartItem{}, false
	}

	item := domain.CartItem{Name: unknownProductName, Qty: 1}

	if v := firstSet(obj, "productId", "id", "productID"); v != nil {
		if id, ok := scalarString(v); ok {
			item.ProductID = &id
		}
	}
	if v := firstSet(obj, "name", "title"); v != nil {
		if name, ok := scalarString(v); ok {
			item.Name = name
		}
	}

	if v := firstSet(obj, "price"); v != nil {
		price, ok := toNumber(v)
		if !ok {
			return domain.CartItem{}, false
		}
		item.Price = price
	}

	if v := firstSet(obj, "qty", "quantity"); v != nil {
		qty, ok := toNumber(v)
		if !ok || qty != math.Trunc(qty) || qty > maxQty {
			return domain.CartItem{}, false
		}
		// string zeros get past firstSet and count as unset
		if qty >= 1 {
			item.Qty = int(qty)
		}
	}

	if v, ok := firstSet(obj, "imageUrl", "image").(string); ok {
		item.ImageURL = v
	}
	if v, ok := firstSet(obj, "unit").(string); ok {
		item.Unit = v
	}
	return item, true
}

// NormalizeItems keeps the order of raw and drops entries NormalizeItem rejects.
func NormalizeItems(raw []any) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(raw))
	for _, r := range raw {
		if item, ok := NormalizeItem(r); ok {
			items = append(items, item)
		}
	}
	return items
}

// firstSet returns the first value under keys that is present and not empty,
// zero or false.
func firstSet(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			continue
		case bool:
			if !t {
				continue
			}
		case float64:
			if t == 0 || math.IsNaN(t) {
				continue
			}
		case string:
			if t == "" {
				continue
			}
		}
		return v
	}
	return nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case bool:
		n = 1
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, false
	}
	return n, true
}
