package wishlist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorage(client, 24*time.Hour, logger), mr
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestStorage_Load_FreshSession(t *testing.T) {
	storage, _ := setupTestStorage(t)

	state, err := storage.Load(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Nil(t, state.UserInfo)
	assert.Equal(t, []Item{}, state.Wishlist.Items)
	assert.Equal(t, ShippingAddress{}, state.Wishlist.ShippingAddress)
	assert.Empty(t, state.Wishlist.PaymentMethod)
	assert.False(t, state.FullBox)
}

func TestStorage_Load_Hydrates(t *testing.T) {
	storage, mr := setupTestStorage(t)

	user := UserInfo{ID: "user-1", Name: "alice", Email: "alice@example.com"}
	userJSON, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, mr.Set("wishlist:sess-1:userInfo", string(userJSON)))

	address := sampleAddress()
	addrJSON, err := json.Marshal(address)
	require.NoError(t, err)
	require.NoError(t, mr.Set("wishlist:sess-1:shippingAddress", string(addrJSON)))

	// Payment method is stored as a raw string, not JSON.
	require.NoError(t, mr.Set("wishlist:sess-1:paymentMethod", "PayPal"))

	items := []Item{sampleItem("tut-1", 2)}
	itemsJSON, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, mr.Set("wishlist:sess-1:wishlistItems", string(itemsJSON)))

	state, err := storage.Load(context.Background(), "sess-1")
	require.NoError(t, err)

	require.NotNil(t, state.UserInfo)
	assert.Equal(t, user, *state.UserInfo)
	assert.Equal(t, address, state.Wishlist.ShippingAddress)
	assert.Equal(t, "PayPal", state.Wishlist.PaymentMethod)
	assert.Equal(t, items, state.Wishlist.Items)
}

func TestStorage_Load_MalformedJSONTreatedAsAbsent(t *testing.T) {
	storage, mr := setupTestStorage(t)

	require.NoError(t, mr.Set("wishlist:sess-1:userInfo", "{{not-valid-json"))
	require.NoError(t, mr.Set("wishlist:sess-1:wishlistItems", "[broken"))

	state, err := storage.Load(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Nil(t, state.UserInfo)
	assert.Equal(t, []Item{}, state.Wishlist.Items)
}

func TestStorage_Load_SessionsAreIsolated(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SavePaymentMethod(ctx, "sess-1", "PayPal"))

	state, err := storage.Load(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, state.Wishlist.PaymentMethod)
}

// ---------------------------------------------------------------------------
// Save and Clear
// ---------------------------------------------------------------------------

func TestStorage_SaveItems_Roundtrip(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	items := []Item{sampleItem("tut-1", 2), sampleItem("tut-2", 1)}
	require.NoError(t, storage.SaveItems(ctx, "sess-1", items))

	assert.True(t, mr.Exists("wishlist:sess-1:wishlistItems"))

	state, err := storage.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, items, state.Wishlist.Items)
}

func TestStorage_SaveUserInfo_Roundtrip(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	user := &UserInfo{ID: "user-1", Name: "alice", Token: "token-abc"}
	require.NoError(t, storage.SaveUserInfo(ctx, "sess-1", user))

	state, err := storage.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, state.UserInfo)
	assert.Equal(t, *user, *state.UserInfo)
}

func TestStorage_SavePaymentMethod_StoresRawString(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SavePaymentMethod(ctx, "sess-1", "Stripe"))

	raw, err := mr.Get("wishlist:sess-1:paymentMethod")
	require.NoError(t, err)
	assert.Equal(t, "Stripe", raw)
}

func TestStorage_Clear_RemovesNamespace(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveUserInfo(ctx, "sess-1", &UserInfo{ID: "user-1"}))
	require.NoError(t, storage.SaveShippingAddress(ctx, "sess-1", sampleAddress()))
	require.NoError(t, storage.SavePaymentMethod(ctx, "sess-1", "PayPal"))
	require.NoError(t, storage.SaveItems(ctx, "sess-1", []Item{sampleItem("tut-1", 1)}))

	require.NoError(t, storage.Clear(ctx, "sess-1"))

	assert.False(t, mr.Exists("wishlist:sess-1:userInfo"))
	assert.False(t, mr.Exists("wishlist:sess-1:shippingAddress"))
	assert.False(t, mr.Exists("wishlist:sess-1:paymentMethod"))
	assert.False(t, mr.Exists("wishlist:sess-1:wishlistItems"))
}

func TestStorage_EntriesExpire(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveItems(ctx, "sess-1", []Item{sampleItem("tut-1", 1)}))

	mr.FastForward(25 * time.Hour)

	state, err := storage.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []Item{}, state.Wishlist.Items)
}
