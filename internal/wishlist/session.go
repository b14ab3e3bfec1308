package wishlist

import (
	"context"
	"fmt"
	"log/slog"
)

// Session hosts the reducer for one client session. Transitions run through
// the pure Reduce function; the session then persists whichever slice of
// state the action touched. One session is single-threaded by construction,
// matching one browser client.
type Session struct {
	id      string
	state   State
	storage *Storage
	logger  *slog.Logger
}

// NewSession hydrates a session from storage. A fresh session starts from
// the initial state.
func NewSession(ctx context.Context, id string, storage *Storage, logger *slog.Logger) (*Session, error) {
	state, err := storage.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("hydrate session %s: %w", id, err)
	}

	return &Session{
		id:      id,
		state:   state,
		storage: storage,
		logger:  logger,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Dispatch applies an action and persists the affected state. The transition
// always takes effect in memory; a persistence failure is returned so the
// caller can surface it, with the new state already applied.
func (s *Session) Dispatch(ctx context.Context, action Action) (State, error) {
	next := Reduce(s.state, action)
	s.state = next

	var err error
	switch action.(type) {
	case AddItem, RemoveItem, ClearWishlist:
		err = s.storage.SaveItems(ctx, s.id, next.Wishlist.Items)

	case SignIn:
		err = s.storage.SaveUserInfo(ctx, s.id, next.UserInfo)

	case SignOut:
		err = s.storage.Clear(ctx, s.id)

	case SaveShippingAddress, SaveShippingAddressLocation:
		err = s.storage.SaveShippingAddress(ctx, s.id, next.Wishlist.ShippingAddress)

	case SavePaymentMethod:
		err = s.storage.SavePaymentMethod(ctx, s.id, next.Wishlist.PaymentMethod)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist session state",
			slog.String("session_id", s.id),
			slog.String("action", fmt.Sprintf("%T", action)),
			slog.String("error", err.Error()),
		)
		return next, err
	}

	return next, nil
}
