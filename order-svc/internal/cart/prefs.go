package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"sendr/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

func (s *Store) SeenLocationModal(ctx context.Context, session string) (bool, error) {
	if err := validateSession(session); err != nil {
		return false, err
	}
	v, err := s.client.Get(ctx, storageKey(session, seenLocationModalKey)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *Store) MarkLocationModalSeen(ctx context.Context, session string) error {
	if err := validateSession(session); err != nil {
		return err
	}
	return s.client.Set(ctx, storageKey(session, seenLocationModalKey), "1", 0).Err()
}

// SetLocation stores the session's last location and announces it on the
// location or pincode channel.
func (s *Store) SetLocation(ctx context.Context, session string, loc domain.Location) error {
	if err := validateSession(session); err != nil {
		return err
	}

	byPincode := loc.Pincode != ""
	if !byPincode && (loc.Lat == nil || loc.Lng == nil) {
		return ErrInvalidLocation
	}
	if byPincode {
		loc.Lat, loc.Lng = nil, nil
	}

	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, storageKey(session, locationKey), payload, 0).Err(); err != nil {
		return err
	}
	if err := s.client.Publish(ctx, locationChannel(session, byPincode), payload).Err(); err != nil {
		log.Printf("[cart] publish location for %s: %v", session, err)
	}
	return nil
}

// Location returns nil when the session never reported one.
func (s *Store) Location(ctx context.Context, session string) (*domain.Location, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, storageKey(session, locationKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc domain.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, nil
	}
	return &loc, nil
}
