package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"park-ticketing/internal/models"
)

// InMemoryStore backs tests and local development without a database. Stock
// pools are set explicitly; an unset pool behaves as unlimited, matching the
// NULL answer of the real stock functions.
type InMemoryStore struct {
	mutex sync.RWMutex

	passStock     map[string]*int
	activityStock map[string]*int
	slotCapacity  map[string]*int

	cartItems             map[string]*models.CartItem
	stripeSessions        map[string]bool
	reservations          map[string]*models.Reservation
	reservationActivities map[string]*models.ReservationActivity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		passStock:             make(map[string]*int),
		activityStock:         make(map[string]*int),
		slotCapacity:          make(map[string]*int),
		cartItems:             make(map[string]*models.CartItem),
		stripeSessions:        make(map[string]bool),
		reservations:          make(map[string]*models.Reservation),
		reservationActivities: make(map[string]*models.ReservationActivity),
	}
}

func (s *InMemoryStore) SetPassStock(passID string, remaining *int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.passStock[passID] = remaining
}

func (s *InMemoryStore) SetActivityStock(eventActivityID string, remaining *int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.activityStock[eventActivityID] = remaining
}

func (s *InMemoryStore) SetSlotCapacity(timeSlotID string, remaining *int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.slotCapacity[timeSlotID] = remaining
}

func (s *InMemoryStore) PassRemainingStock(ctx context.Context, passID string) (*int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.passStock[passID], nil
}

func (s *InMemoryStore) ActivityRemainingStock(ctx context.Context, eventActivityID string) (*int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.activityStock[eventActivityID], nil
}

func (s *InMemoryStore) SlotRemainingCapacity(ctx context.Context, timeSlotID string) (*int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.slotCapacity[timeSlotID], nil
}

func (s *InMemoryStore) FindCartItem(ctx context.Context, sessionID, passID string, timeSlotID *string) (*models.CartItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, item := range s.cartItems {
		if item.SessionID != sessionID || item.PassID != passID {
			continue
		}
		if !sameSlot(item.TimeSlotID, timeSlotID) {
			continue
		}
		return item, nil
	}
	return nil, ErrCartItemNotFound
}

func sameSlot(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *InMemoryStore) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cartItems[item.ID] = item
	return nil
}

func (s *InMemoryStore) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item, exists := s.cartItems[itemID]
	if !exists {
		return ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (s *InMemoryStore) RemoveCartItem(ctx context.Context, sessionID, itemID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item, exists := s.cartItems[itemID]
	if !exists || item.SessionID != sessionID {
		return ErrCartItemNotFound
	}
	delete(s.cartItems, itemID)
	return nil
}

func (s *InMemoryStore) ListCartItems(ctx context.Context, sessionID string) ([]*models.CartItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var items []*models.CartItem
	for _, item := range s.cartItems {
		if item.SessionID == sessionID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *InMemoryStore) ClearCart(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, item := range s.cartItems {
		if item.SessionID == sessionID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *InMemoryStore) RemoveExpiredCartItems(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for id, item := range s.cartItems {
		if item.ReservedUntil.Before(now) {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *InMemoryStore) InsertStripeSession(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stripeSessions[sessionID] {
		return ErrSessionAlreadyProcessed
	}
	s.stripeSessions[sessionID] = true
	return nil
}

func (s *InMemoryStore) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reservations[reservation.ID] = reservation
	return nil
}

func (s *InMemoryStore) SaveReservationActivity(ctx context.Context, link *models.ReservationActivity) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reservationActivities[link.ID] = link
	return nil
}

func (s *InMemoryStore) GetReservationByIDAndEmail(ctx context.Context, id, email string) (*models.Reservation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	reservation, exists := s.reservations[id]
	if !exists || reservation.ClientEmail != email {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func (s *InMemoryStore) GetLatestReservationByEmail(ctx context.Context, email string) (*models.Reservation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var latest *models.Reservation
	for _, reservation := range s.reservations {
		if reservation.ClientEmail != email {
			continue
		}
		if latest == nil || reservation.CreatedAt.After(latest.CreatedAt) {
			latest = reservation
		}
	}
	if latest == nil {
		return nil, ErrReservationNotFound
	}
	return latest, nil
}

// CountReservations reports how many reservations exist; used by tests.
func (s *InMemoryStore) CountReservations() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.reservations)
}

// CountReservationActivities reports how many activity links exist; used by tests.
func (s *InMemoryStore) CountReservationActivities() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.reservationActivities)
}

func (s *InMemoryStore) Close() error       { return nil }
func (s *InMemoryStore) HealthCheck() error { return nil }
