package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
	"park-ticketing/internal/storage"
	"park-ticketing/internal/utils"
)

var (
	ErrStoreNotConfigured = errors.New("data store not configured")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrPassSoldOut        = errors.New("stock insuffisant pour ce pass")
	ErrActivityFull       = errors.New("plus de places disponibles pour cette activité")
	ErrSlotFull           = errors.New("ce créneau est complet")
)

// User-facing notification strings (the storefront is French).
const (
	noticeAddedToCart  = "Ajouté au panier !"
	noticeGenericError = "Une erreur est survenue"
)

// Notifier surfaces the outcome of a cart mutation to the user. The HTTP
// handler injects one per request.
type Notifier interface {
	Success(message string)
	Error(message string)
}

const cartReservationWindow = 30 * time.Minute

type CartService struct {
	store storage.Store
	log   *logger.Logger
}

func NewCartService(store storage.Store, log *logger.Logger) *CartService {
	return &CartService{
		store: store,
		log:   log,
	}
}

// ValidateStock checks the requested quantity against each applicable
// capacity pool. A pool whose identifier is absent is skipped; a nil
// remaining value means the pool is unlimited. Advisory only: the database's
// insert procedure remains the authority on the actual decrement.
func (s *CartService) ValidateStock(ctx context.Context, passID string, eventActivityID, timeSlotID *string, quantity int) error {
	remaining, err := s.store.PassRemainingStock(ctx, passID)
	if err != nil {
		return fmt.Errorf("pass stock lookup failed: %w", err)
	}
	if remaining != nil && *remaining < quantity {
		return ErrPassSoldOut
	}

	if eventActivityID != nil {
		remaining, err := s.store.ActivityRemainingStock(ctx, *eventActivityID)
		if err != nil {
			return fmt.Errorf("activity stock lookup failed: %w", err)
		}
		if remaining != nil && *remaining < quantity {
			return ErrActivityFull
		}
	}

	if timeSlotID != nil {
		remaining, err := s.store.SlotRemainingCapacity(ctx, *timeSlotID)
		if err != nil {
			return fmt.Errorf("slot capacity lookup failed: %w", err)
		}
		if remaining != nil && *remaining < quantity {
			return ErrSlotFull
		}
	}

	return nil
}

// AddToCart validates the request, sweeps expired lines, then merges into an
// existing (session, pass, slot) line or inserts a new one. Every outcome is
// reported through the notifier; remote failures surface as the generic
// error notification.
func (s *CartService) AddToCart(ctx context.Context, req models.AddToCartRequest, notifier Notifier) error {
	if req.Quantity < 1 {
		notifier.Error(noticeGenericError)
		return ErrInvalidQuantity
	}
	if s.store == nil {
		notifier.Error(noticeGenericError)
		return ErrStoreNotConfigured
	}

	if err := s.ValidateStock(ctx, req.PassID, req.EventActivityID, req.TimeSlotID, req.Quantity); err != nil {
		if errors.Is(err, ErrPassSoldOut) || errors.Is(err, ErrActivityFull) || errors.Is(err, ErrSlotFull) {
			s.log.LogCart("REJECTED", req.SessionID, fmt.Sprintf("Stock check failed for pass %s: %v", req.PassID, err))
			notifier.Error(err.Error())
			return err
		}
		s.log.Error("CART", fmt.Sprintf("Stock lookup failed for session %s, pass %s: %v", req.SessionID, req.PassID, err))
		notifier.Error(noticeGenericError)
		return err
	}

	// Best-effort sweep of expired soft locks before touching the cart.
	if err := s.store.RemoveExpiredCartItems(ctx); err != nil {
		s.log.Warn("CART", "Expired cart sweep failed: "+err.Error())
	}

	existing, err := s.store.FindCartItem(ctx, req.SessionID, req.PassID, req.TimeSlotID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + req.Quantity
		if err := s.store.UpdateCartItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			s.log.Error("CART", fmt.Sprintf("Failed to merge cart line %s for session %s: %v", existing.ID, req.SessionID, err))
			notifier.Error(noticeGenericError)
			return err
		}
		s.log.LogCart("MERGE", req.SessionID, fmt.Sprintf("Pass %s quantity now %d", req.PassID, newQuantity))

	case errors.Is(err, storage.ErrCartItemNotFound):
		item := &models.CartItem{
			ID:              utils.GenerateUUID(),
			SessionID:       req.SessionID,
			PassID:          req.PassID,
			EventActivityID: req.EventActivityID,
			TimeSlotID:      req.TimeSlotID,
			Quantity:        req.Quantity,
			ReservedUntil:   time.Now().Add(cartReservationWindow),
			CreatedAt:       time.Now(),
		}
		if err := s.store.InsertCartItem(ctx, item); err != nil {
			s.log.Error("CART", fmt.Sprintf("Failed to insert cart line for session %s, pass %s: %v", req.SessionID, req.PassID, err))
			notifier.Error(noticeGenericError)
			return err
		}
		s.log.LogCart("ADD", req.SessionID, fmt.Sprintf("Pass %s x%d added", req.PassID, req.Quantity))

	default:
		s.log.Error("CART", fmt.Sprintf("Cart lookup failed for session %s: %v", req.SessionID, err))
		notifier.Error(noticeGenericError)
		return err
	}

	notifier.Success(noticeAddedToCart)
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, itemID string) error {
	if err := s.store.RemoveCartItem(ctx, sessionID, itemID); err != nil {
		if !errors.Is(err, storage.ErrCartItemNotFound) {
			s.log.Error("CART", fmt.Sprintf("Failed to remove item %s for session %s: %v", itemID, sessionID, err))
		}
		return err
	}
	s.log.LogCart("REMOVE", sessionID, "Item "+itemID+" removed")
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.store.ClearCart(ctx, sessionID); err != nil {
		s.log.Error("CART", fmt.Sprintf("Failed to clear cart for session %s: %v", sessionID, err))
		return err
	}
	s.log.LogCart("CLEAR", sessionID, "Cart cleared")
	return nil
}

func (s *CartService) ListCart(ctx context.Context, sessionID string) ([]*models.CartItem, error) {
	return s.store.ListCartItems(ctx, sessionID)
}
