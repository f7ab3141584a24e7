package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
)

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) { n.successes = append(n.successes, message) }
func (n *recordingNotifier) Error(message string)   { n.errors = append(n.errors, message) }

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func newCartFixture() (*services.CartService, *storage.InMemoryStore) {
	store := storage.NewInMemoryStore()
	return services.NewCartService(store, logger.NewLogger()), store
}

func TestValidateStockWithinAllPools(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", intPtr(5))
	store.SetActivityStock("act-1", intPtr(4))
	store.SetSlotCapacity("slot-1", intPtr(3))

	err := svc.ValidateStock(context.Background(), "pass-1", strPtr("act-1"), strPtr("slot-1"), 3)
	assert.NoError(t, err)
}

func TestValidateStockPerPoolErrors(t *testing.T) {
	tests := []struct {
		name     string
		pass     *int
		activity *int
		slot     *int
		quantity int
		expected error
	}{
		{"pass pool short", intPtr(2), intPtr(10), intPtr(10), 3, services.ErrPassSoldOut},
		{"activity pool short", intPtr(10), intPtr(2), intPtr(10), 3, services.ErrActivityFull},
		{"slot pool short", intPtr(10), intPtr(10), intPtr(2), 3, services.ErrSlotFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newCartFixture()
			store.SetPassStock("pass-1", tt.pass)
			store.SetActivityStock("act-1", tt.activity)
			store.SetSlotCapacity("slot-1", tt.slot)

			err := svc.ValidateStock(context.Background(), "pass-1", strPtr("act-1"), strPtr("slot-1"), tt.quantity)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestValidateStockUnlimitedPool(t *testing.T) {
	svc, store := newCartFixture()
	// nil remaining means unlimited
	store.SetPassStock("pass-1", nil)

	err := svc.ValidateStock(context.Background(), "pass-1", nil, nil, 1000)
	assert.NoError(t, err)
}

func TestValidateStockSkipsAbsentPools(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", intPtr(10))
	// An exhausted slot must not matter when the request has no slot.
	store.SetSlotCapacity("slot-1", intPtr(0))

	err := svc.ValidateStock(context.Background(), "pass-1", nil, nil, 5)
	assert.NoError(t, err)
}

func TestAddToCartRejectsInvalidQuantity(t *testing.T) {
	svc, _ := newCartFixture()
	notifier := &recordingNotifier{}

	err := svc.AddToCart(context.Background(), models.AddToCartRequest{
		SessionID: "sess-1",
		PassID:    "pass-1",
		Quantity:  0,
	}, notifier)

	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	assert.Len(t, notifier.errors, 1)
	assert.Empty(t, notifier.successes)
}

func TestAddToCartMergesSameLine(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", intPtr(10))

	req := models.AddToCartRequest{
		SessionID:  "sess-1",
		PassID:     "pass-1",
		TimeSlotID: strPtr("slot-1"),
		Quantity:   2,
	}

	require.NoError(t, svc.AddToCart(context.Background(), req, &recordingNotifier{}))
	req.Quantity = 3
	require.NoError(t, svc.AddToCart(context.Background(), req, &recordingNotifier{}))

	items, err := store.ListCartItems(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddToCartDifferentSlotsStaySeparate(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", intPtr(10))

	base := models.AddToCartRequest{
		SessionID: "sess-1",
		PassID:    "pass-1",
		Quantity:  1,
	}

	withSlot := base
	withSlot.TimeSlotID = strPtr("slot-1")

	require.NoError(t, svc.AddToCart(context.Background(), base, &recordingNotifier{}))
	require.NoError(t, svc.AddToCart(context.Background(), withSlot, &recordingNotifier{}))

	items, err := store.ListCartItems(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddToCartNotifiesPoolError(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", intPtr(1))
	notifier := &recordingNotifier{}

	err := svc.AddToCart(context.Background(), models.AddToCartRequest{
		SessionID: "sess-1",
		PassID:    "pass-1",
		Quantity:  2,
	}, notifier)

	assert.ErrorIs(t, err, services.ErrPassSoldOut)
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, services.ErrPassSoldOut.Error(), notifier.errors[0])

	items, _ := store.ListCartItems(context.Background(), "sess-1")
	assert.Empty(t, items)
}

func TestClearCartOnlyTargetSession(t *testing.T) {
	svc, store := newCartFixture()
	store.SetPassStock("pass-1", nil)

	require.NoError(t, svc.AddToCart(context.Background(), models.AddToCartRequest{
		SessionID: "sess-1", PassID: "pass-1", Quantity: 1,
	}, &recordingNotifier{}))
	require.NoError(t, svc.AddToCart(context.Background(), models.AddToCartRequest{
		SessionID: "sess-2", PassID: "pass-1", Quantity: 1,
	}, &recordingNotifier{}))

	require.NoError(t, svc.ClearCart(context.Background(), "sess-1"))

	cleared, _ := store.ListCartItems(context.Background(), "sess-1")
	kept, _ := store.ListCartItems(context.Background(), "sess-2")
	assert.Empty(t, cleared)
	assert.Len(t, kept, 1)
}
