package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
	StatusFailed  PaymentStatus = "failed"
)

// Reservation is a confirmed, paid purchase unit. One row is created per unit
// of quantity during webhook processing; rows are immutable afterwards.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID                string        `json:"id" bun:"id,pk"`
	ReservationNumber string        `json:"reservationNumber" bun:"reservation_number"`
	ClientEmail       string        `json:"clientEmail" bun:"client_email"`
	PassID            string        `json:"passId" bun:"pass_id"`
	EventActivityID   *string       `json:"eventActivityId,omitempty" bun:"event_activity_id"`
	TimeSlotID        *string       `json:"timeSlotId,omitempty" bun:"time_slot_id"`
	PaymentStatus     PaymentStatus `json:"paymentStatus" bun:"payment_status"`
	CreatedAt         time.Time     `json:"createdAt" bun:"created_at"`
}

// ReservationActivity links a reservation to its chosen activity and slot.
type ReservationActivity struct {
	bun.BaseModel `bun:"table:reservation_activities"`

	ID              string  `json:"id" bun:"id,pk"`
	ReservationID   string  `json:"reservationId" bun:"reservation_id"`
	EventActivityID string  `json:"eventActivityId" bun:"event_activity_id"`
	TimeSlotID      *string `json:"timeSlotId,omitempty" bun:"time_slot_id"`
}

// StripeSession is the idempotency marker: the session id is the primary key,
// so a second insert for the same id fails with a unique violation and the
// webhook treats the event as already processed.
type StripeSession struct {
	bun.BaseModel `bun:"table:stripe_sessions"`

	ID          string    `json:"id" bun:"id,pk"`
	ProcessedAt time.Time `json:"processedAt" bun:"processed_at"`
}
