package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"park-ticketing/internal/config"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
)

// pgUniqueViolation is the SQLSTATE for a unique-constraint failure.
const pgUniqueViolation = "23505"

type PostgresStore struct {
	db  *bun.DB
	log *logger.Logger
}

func NewPostgresStore(cfg config.DatabaseConfig, log *logger.Logger) (*PostgresStore, error) {
	log.LogDatabase("CONNECT", "postgres", fmt.Sprintf("Connecting to Postgres at %s:%s", cfg.Host, cfg.Port))

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN())))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping Postgres: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  bun.NewDB(sqldb, pgdialect.New()),
		log: log,
	}

	log.LogDatabase("SUCCESS", "postgres", "Postgres connection established")
	return store, nil
}

// remainingFromFunction calls one of the platform's stock functions. A NULL
// result means the pool is unlimited.
func (s *PostgresStore) remainingFromFunction(ctx context.Context, fn, id string) (*int, error) {
	var remaining sql.NullInt64
	query := fmt.Sprintf("SELECT %s(?)", fn)
	if err := s.db.NewRaw(query, id).Scan(ctx, &remaining); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Stock function %s failed for %s: %s", fn, id, err.Error()))
		return nil, fmt.Errorf("stock lookup failed: %w", err)
	}
	if !remaining.Valid {
		return nil, nil
	}
	n := int(remaining.Int64)
	return &n, nil
}

func (s *PostgresStore) PassRemainingStock(ctx context.Context, passID string) (*int, error) {
	return s.remainingFromFunction(ctx, "get_pass_remaining_stock", passID)
}

func (s *PostgresStore) ActivityRemainingStock(ctx context.Context, eventActivityID string) (*int, error) {
	return s.remainingFromFunction(ctx, "get_activity_remaining_stock", eventActivityID)
}

func (s *PostgresStore) SlotRemainingCapacity(ctx context.Context, timeSlotID string) (*int, error) {
	return s.remainingFromFunction(ctx, "get_slot_remaining_capacity", timeSlotID)
}

func (s *PostgresStore) FindCartItem(ctx context.Context, sessionID, passID string, timeSlotID *string) (*models.CartItem, error) {
	item := new(models.CartItem)
	q := s.db.NewSelect().
		Model(item).
		Where("session_id = ?", sessionID).
		Where("pass_id = ?", passID)

	// Absent slot matches "no slot", not wildcard.
	if timeSlotID == nil {
		q = q.Where("time_slot_id IS NULL")
	} else {
		q = q.Where("time_slot_id = ?", *timeSlotID)
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to find cart item for session %s: %s", sessionID, err.Error()))
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	s.log.LogDatabase("INSERT", "postgres", fmt.Sprintf("Inserting cart item for session %s", item.SessionID))

	if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to insert cart item for session %s: %s", item.SessionID, err.Error()))
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	s.log.LogDatabase("UPDATE", "postgres", fmt.Sprintf("Updating cart item %s quantity to %d", itemID, quantity))

	res, err := s.db.NewUpdate().
		Model((*models.CartItem)(nil)).
		Set("quantity = ?", quantity).
		Where("id = ?", itemID).
		Exec(ctx)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update cart item %s: %s", itemID, err.Error()))
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *PostgresStore) RemoveCartItem(ctx context.Context, sessionID, itemID string) error {
	s.log.LogDatabase("DELETE", "postgres", fmt.Sprintf("Removing cart item %s for session %s", itemID, sessionID))

	res, err := s.db.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("id = ?", itemID).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to remove cart item %s: %s", itemID, err.Error()))
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *PostgresStore) ListCartItems(ctx context.Context, sessionID string) ([]*models.CartItem, error) {
	var items []*models.CartItem
	err := s.db.NewSelect().
		Model(&items).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list cart items for session %s: %s", sessionID, err.Error()))
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ClearCart(ctx context.Context, sessionID string) error {
	s.log.LogDatabase("DELETE", "postgres", fmt.Sprintf("Clearing cart for session %s", sessionID))

	if _, err := s.db.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to clear cart for session %s: %s", sessionID, err.Error()))
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveExpiredCartItems(ctx context.Context) error {
	res, err := s.db.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("reserved_until < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove expired cart items: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.LogDatabase("SWEEP", "postgres", fmt.Sprintf("Removed %d expired cart items", n))
	}
	return nil
}

func (s *PostgresStore) InsertStripeSession(ctx context.Context, sessionID string) error {
	marker := &models.StripeSession{
		ID:          sessionID,
		ProcessedAt: time.Now(),
	}

	if _, err := s.db.NewInsert().Model(marker).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
			return ErrSessionAlreadyProcessed
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to insert stripe session %s: %s", sessionID, err.Error()))
		return fmt.Errorf("failed to insert stripe session: %w", err)
	}

	s.log.LogDatabase("INSERT", "postgres", fmt.Sprintf("Stripe session %s marked as processed", sessionID))
	return nil
}

func (s *PostgresStore) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	s.log.LogDatabase("INSERT", "postgres", fmt.Sprintf("Saving reservation %s", reservation.ReservationNumber))

	if _, err := s.db.NewInsert().Model(reservation).Exec(ctx); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save reservation %s: %s", reservation.ID, err.Error()))
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveReservationActivity(ctx context.Context, link *models.ReservationActivity) error {
	if _, err := s.db.NewInsert().Model(link).Exec(ctx); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to link activity for reservation %s: %s", link.ReservationID, err.Error()))
		return fmt.Errorf("failed to save reservation activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReservationByIDAndEmail(ctx context.Context, id, email string) (*models.Reservation, error) {
	reservation := new(models.Reservation)
	err := s.db.NewSelect().
		Model(reservation).
		Where("id = ?", id).
		Where("client_email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.LogDatabase("NOT_FOUND", "postgres", fmt.Sprintf("Reservation %s not found for given email", id))
			return nil, ErrReservationNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get reservation %s: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (s *PostgresStore) GetLatestReservationByEmail(ctx context.Context, email string) (*models.Reservation, error) {
	reservation := new(models.Reservation)
	err := s.db.NewSelect().
		Model(reservation).
		Where("client_email = ?", email).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get latest reservation for email: %s", err.Error()))
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (s *PostgresStore) Close() error {
	s.log.LogDatabase("CLOSE", "postgres", "Closing Postgres connection")
	return s.db.Close()
}

func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}
