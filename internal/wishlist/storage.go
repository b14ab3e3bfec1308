package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wishlist:"

// Storage keys within a session namespace. PaymentMethod is stored as a raw
// string; every other key holds JSON.
const (
	keyUserInfo        = "userInfo"
	keyShippingAddress = "shippingAddress"
	keyPaymentMethod   = "paymentMethod"
	keyWishlistItems   = "wishlistItems"
)

// Storage persists wishlist session state in Redis. Each session owns a
// namespace of four keys so partial writes never clobber unrelated state.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStorage creates a new Redis-backed wishlist storage.
func NewStorage(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Storage {
	return &Storage{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func sessionKey(sessionID, field string) string {
	return keyPrefix + sessionID + ":" + field
}

// Load hydrates a session's state from storage. Absent keys fall back to
// the initial-state defaults and malformed JSON is treated as absent, so a
// corrupt entry can never prevent a session from starting.
func (s *Storage) Load(ctx context.Context, sessionID string) (State, error) {
	state := NewState()

	var user UserInfo
	found, err := s.getJSON(ctx, sessionKey(sessionID, keyUserInfo), &user)
	if err != nil {
		return state, err
	}
	if found {
		state.UserInfo = &user
	}

	var address ShippingAddress
	found, err = s.getJSON(ctx, sessionKey(sessionID, keyShippingAddress), &address)
	if err != nil {
		return state, err
	}
	if found {
		state.Wishlist.ShippingAddress = address
	}

	method, err := s.client.Get(ctx, sessionKey(sessionID, keyPaymentMethod)).Result()
	if err != nil && err != redis.Nil {
		return state, fmt.Errorf("redis get payment method: %w", err)
	}
	if err == nil {
		state.Wishlist.PaymentMethod = method
	}

	var items []Item
	found, err = s.getJSON(ctx, sessionKey(sessionID, keyWishlistItems), &items)
	if err != nil {
		return state, err
	}
	if found && items != nil {
		state.Wishlist.Items = items
	}

	return state, nil
}

// SaveUserInfo persists the session identity.
func (s *Storage) SaveUserInfo(ctx context.Context, sessionID string, user *UserInfo) error {
	return s.setJSON(ctx, sessionKey(sessionID, keyUserInfo), user)
}

// SaveShippingAddress persists the shipping address.
func (s *Storage) SaveShippingAddress(ctx context.Context, sessionID string, address ShippingAddress) error {
	return s.setJSON(ctx, sessionKey(sessionID, keyShippingAddress), address)
}

// SavePaymentMethod persists the payment method as a raw string.
func (s *Storage) SavePaymentMethod(ctx context.Context, sessionID, method string) error {
	if err := s.client.Set(ctx, sessionKey(sessionID, keyPaymentMethod), method, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set payment method: %w", err)
	}
	return nil
}

// SaveItems persists the wishlist item list.
func (s *Storage) SaveItems(ctx context.Context, sessionID string, items []Item) error {
	return s.setJSON(ctx, sessionKey(sessionID, keyWishlistItems), items)
}

// Clear removes the session's entire namespace.
func (s *Storage) Clear(ctx context.Context, sessionID string) error {
	keys := []string{
		sessionKey(sessionID, keyUserInfo),
		sessionKey(sessionID, keyShippingAddress),
		sessionKey(sessionID, keyPaymentMethod),
		sessionKey(sessionID, keyWishlistItems),
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

// getJSON reads and unmarshals a JSON value. It reports whether a usable
// value was found; an unparseable entry is logged and treated as absent.
func (s *Storage) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding malformed stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false, nil
	}

	return true, nil
}

func (s *Storage) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
