package service

import "sendr/order-svc/internal/domain"

// Actions lists the vendor actions in display order.
var Actions = []string{
	domain.StatusAccepted,
	domain.StatusRejected,
	domain.StatusPacked,
	domain.StatusOutForDelivery,
	domain.StatusDelivered,
}

// transitions maps each action to the statuses it may be applied from.
var transitions = map[string][]string{
	domain.StatusAccepted:       {domain.StatusPlaced},
	domain.StatusRejected:       {domain.StatusPlaced, domain.StatusAccepted, domain.StatusPacked},
	domain.StatusPacked:         {domain.StatusAccepted},
	domain.StatusOutForDelivery: {domain.StatusPacked},
	domain.StatusDelivered:      {domain.StatusOutForDelivery},
}

func AllowedFrom(action string) ([]string, bool) {
	from, ok := transitions[action]
	return from, ok
}

func CanApply(current, action string) bool {
	for _, s := range transitions[action] {
		if s == current {
			return true
		}
	}
	return false
}
