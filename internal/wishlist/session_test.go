package wishlist

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSession(t *testing.T) *Session {
	t.Helper()
	storage, _ := setupTestStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := NewSession(context.Background(), "sess-1", storage, logger)
	require.NoError(t, err)
	return session
}

func TestSession_Dispatch_PersistsItems(t *testing.T) {
	session := setupTestSession(t)
	ctx := context.Background()

	state, err := session.Dispatch(ctx, AddItem{Item: sampleItem("tut-1", 2)})
	require.NoError(t, err)
	require.Len(t, state.Wishlist.Items, 1)

	// A fresh session over the same storage sees the persisted items.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rehydrated, err := NewSession(ctx, "sess-1", session.storage, logger)
	require.NoError(t, err)
	require.Len(t, rehydrated.State().Wishlist.Items, 1)
	assert.Equal(t, "tut-1", rehydrated.State().Wishlist.Items[0].TutorialID)
}

func TestSession_Dispatch_PersistsCheckoutDetails(t *testing.T) {
	session := setupTestSession(t)
	ctx := context.Background()

	_, err := session.Dispatch(ctx, SignIn{User: UserInfo{ID: "user-1", Name: "alice"}})
	require.NoError(t, err)
	_, err = session.Dispatch(ctx, SaveShippingAddress{Address: sampleAddress()})
	require.NoError(t, err)
	_, err = session.Dispatch(ctx, SavePaymentMethod{Method: "PayPal"})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rehydrated, err := NewSession(ctx, "sess-1", session.storage, logger)
	require.NoError(t, err)

	state := rehydrated.State()
	require.NotNil(t, state.UserInfo)
	assert.Equal(t, "alice", state.UserInfo.Name)
	assert.Equal(t, sampleAddress(), state.Wishlist.ShippingAddress)
	assert.Equal(t, "PayPal", state.Wishlist.PaymentMethod)
}

func TestSession_Dispatch_LocationMergePersistsWholeAddress(t *testing.T) {
	session := setupTestSession(t)
	ctx := context.Background()

	_, err := session.Dispatch(ctx, SaveShippingAddress{Address: sampleAddress()})
	require.NoError(t, err)

	loc := Location{Lat: 44.5, Lng: 18.7}
	_, err = session.Dispatch(ctx, SaveShippingAddressLocation{Location: loc})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rehydrated, err := NewSession(ctx, "sess-1", session.storage, logger)
	require.NoError(t, err)

	address := rehydrated.State().Wishlist.ShippingAddress
	assert.Equal(t, loc, address.Location)
	assert.Equal(t, "Amira Hodzic", address.FullName)
}

func TestSession_Dispatch_SignOutClearsStorage(t *testing.T) {
	session := setupTestSession(t)
	ctx := context.Background()

	_, err := session.Dispatch(ctx, SignIn{User: UserInfo{ID: "user-1"}})
	require.NoError(t, err)
	_, err = session.Dispatch(ctx, AddItem{Item: sampleItem("tut-1", 1)})
	require.NoError(t, err)
	_, err = session.Dispatch(ctx, SavePaymentMethod{Method: "PayPal"})
	require.NoError(t, err)

	state, err := session.Dispatch(ctx, SignOut{})
	require.NoError(t, err)
	assert.Nil(t, state.UserInfo)
	assert.Empty(t, state.Wishlist.Items)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rehydrated, err := NewSession(ctx, "sess-1", session.storage, logger)
	require.NoError(t, err)
	assert.Nil(t, rehydrated.State().UserInfo)
	assert.Empty(t, rehydrated.State().Wishlist.Items)
	assert.Empty(t, rehydrated.State().Wishlist.PaymentMethod)
}

func TestSession_Dispatch_FullBoxIsInMemoryOnly(t *testing.T) {
	session := setupTestSession(t)
	ctx := context.Background()

	state, err := session.Dispatch(ctx, SetFullBoxOn{})
	require.NoError(t, err)
	assert.True(t, state.FullBox)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rehydrated, err := NewSession(ctx, "sess-1", session.storage, logger)
	require.NoError(t, err)
	assert.False(t, rehydrated.State().FullBox)
}

func TestSession_Dispatch_PersistFailureStillAppliesState(t *testing.T) {
	storage, mr := setupTestStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := NewSession(context.Background(), "sess-1", storage, logger)
	require.NoError(t, err)

	mr.Close()

	state, err := session.Dispatch(context.Background(), AddItem{Item: sampleItem("tut-1", 1)})
	require.Error(t, err)
	require.Len(t, state.Wishlist.Items, 1)
	assert.Equal(t, state, session.State())
}
