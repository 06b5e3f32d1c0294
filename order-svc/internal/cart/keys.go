package cart

import (
	"errors"
	"regexp"
)

const (
	// CanonicalKey holds the versioned cart entry once reconciled.
	CanonicalKey = "sendr_cart"
	LegacyV1Key  = "sendr_cart_v1"

	EntryVersion = 2

	seenLocationModalKey = "sendr:seen_location_modal"
	locationKey          = "sendr:location"
)

// KnownKeys lists the recognised cart keys in migration priority order.
var KnownKeys = []string{
	CanonicalKey,
	LegacyV1Key,
	"cart",
	"cart_items",
	"cartItems",
	"local_cart",
	"sendr_cart_for_payment",
}

var (
	ErrInvalidSession   = errors.New("invalid cart session")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrInvalidItem      = errors.New("invalid cart item")
	ErrInvalidLocation  = errors.New("location needs coordinates or a pincode")
	ErrConcurrentUpdate = errors.New("cart changed concurrently, try again")
)

var (
	sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	cartKeyPattern = regexp.MustCompile(`(?i)cart`)
)

func validateSession(session string) error {
	if !sessionPattern.MatchString(session) {
		return ErrInvalidSession
	}
	return nil
}

func namespace(session string) string {
	return "sendr:" + session + ":"
}

func storageKey(session, local string) string {
	return namespace(session) + local
}

// UpdatesChannel is the pub/sub channel carrying cart-updated notifications.
func UpdatesChannel(session string) string {
	return namespace(session) + "cart-updated"
}

func locationChannel(session string, byPincode bool) string {
	if byPincode {
		return namespace(session) + "pincode"
	}
	return namespace(session) + "location"
}

func isKnownKey(local string) bool {
	for _, k := range KnownKeys {
		if k == local {
			return true
		}
	}
	return false
}
