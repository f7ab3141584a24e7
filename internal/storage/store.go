package storage

import (
	"context"
	"errors"

	"park-ticketing/internal/models"
)

var (
	ErrCartItemNotFound        = errors.New("cart item not found")
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrSessionAlreadyProcessed = errors.New("stripe session already processed")
)

// Store is the data-access capability every service receives by injection.
// Stock arithmetic belongs to database functions owned by the platform; the
// remaining-* lookups only relay their advisory answers (nil = unlimited).
type Store interface {
	// Stock lookups
	PassRemainingStock(ctx context.Context, passID string) (*int, error)
	ActivityRemainingStock(ctx context.Context, eventActivityID string) (*int, error)
	SlotRemainingCapacity(ctx context.Context, timeSlotID string) (*int, error)

	// Cart operations
	FindCartItem(ctx context.Context, sessionID, passID string, timeSlotID *string) (*models.CartItem, error)
	InsertCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, sessionID, itemID string) error
	ListCartItems(ctx context.Context, sessionID string) ([]*models.CartItem, error)
	ClearCart(ctx context.Context, sessionID string) error
	RemoveExpiredCartItems(ctx context.Context) error

	// Webhook / reservation operations
	InsertStripeSession(ctx context.Context, sessionID string) error
	SaveReservation(ctx context.Context, reservation *models.Reservation) error
	SaveReservationActivity(ctx context.Context, link *models.ReservationActivity) error
	GetReservationByIDAndEmail(ctx context.Context, id, email string) (*models.Reservation, error)
	GetLatestReservationByEmail(ctx context.Context, email string) (*models.Reservation, error)

	Close() error
	HealthCheck() error
}
