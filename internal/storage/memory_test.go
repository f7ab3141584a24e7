package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"park-ticketing/internal/models"
	"park-ticketing/internal/storage"
)

func slot(s string) *string { return &s }

func item(id, session, pass string, slotID *string) *models.CartItem {
	return &models.CartItem{
		ID:            id,
		SessionID:     session,
		PassID:        pass,
		TimeSlotID:    slotID,
		Quantity:      1,
		ReservedUntil: time.Now().Add(30 * time.Minute),
		CreatedAt:     time.Now(),
	}
}

func TestFindCartItemSlotMatching(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()

	require.NoError(t, store.InsertCartItem(ctx, item("a", "sess", "pass", nil)))
	require.NoError(t, store.InsertCartItem(ctx, item("b", "sess", "pass", slot("slot-1"))))

	// nil slot matches only the slotless line
	found, err := store.FindCartItem(ctx, "sess", "pass", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", found.ID)

	found, err = store.FindCartItem(ctx, "sess", "pass", slot("slot-1"))
	require.NoError(t, err)
	assert.Equal(t, "b", found.ID)

	_, err = store.FindCartItem(ctx, "sess", "pass", slot("slot-2"))
	assert.ErrorIs(t, err, storage.ErrCartItemNotFound)
}

func TestRemoveExpiredCartItems(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()

	expired := item("old", "sess", "pass", nil)
	expired.ReservedUntil = time.Now().Add(-time.Minute)
	require.NoError(t, store.InsertCartItem(ctx, expired))
	require.NoError(t, store.InsertCartItem(ctx, item("fresh", "sess", "pass-2", nil)))

	require.NoError(t, store.RemoveExpiredCartItems(ctx))

	items, err := store.ListCartItems(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
}

func TestInsertStripeSessionIdempotencyMarker(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()

	require.NoError(t, store.InsertStripeSession(ctx, "cs_1"))
	assert.ErrorIs(t, store.InsertStripeSession(ctx, "cs_1"), storage.ErrSessionAlreadyProcessed)
	assert.NoError(t, store.InsertStripeSession(ctx, "cs_2"))
}

func TestRemoveCartItemScopedToSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()

	require.NoError(t, store.InsertCartItem(ctx, item("a", "sess-1", "pass", nil)))

	// Another session cannot remove the line.
	assert.ErrorIs(t, store.RemoveCartItem(ctx, "sess-2", "a"), storage.ErrCartItemNotFound)
	assert.NoError(t, store.RemoveCartItem(ctx, "sess-1", "a"))
}

func TestGetReservationByIDAndEmail(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()

	reservation := &models.Reservation{
		ID:          "res-1",
		ClientEmail: "owner@example.com",
		PassID:      "pass-1",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.SaveReservation(ctx, reservation))

	found, err := store.GetReservationByIDAndEmail(ctx, "res-1", "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "res-1", found.ID)

	_, err = store.GetReservationByIDAndEmail(ctx, "res-1", "other@example.com")
	assert.ErrorIs(t, err, storage.ErrReservationNotFound)
}
