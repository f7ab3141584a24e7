package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CartItem is a session-scoped pending selection. reserved_until acts as a
// cooperative soft lock: expired lines are swept opportunistically before
// each stock check, never by a scheduler.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID              string    `json:"id" bun:"id,pk"`
	SessionID       string    `json:"sessionId" bun:"session_id"`
	PassID          string    `json:"passId" bun:"pass_id"`
	EventActivityID *string   `json:"eventActivityId,omitempty" bun:"event_activity_id"`
	TimeSlotID      *string   `json:"timeSlotId,omitempty" bun:"time_slot_id"`
	Quantity        int       `json:"quantity" bun:"quantity"`
	ReservedUntil   time.Time `json:"reservedUntil" bun:"reserved_until"`
	CreatedAt       time.Time `json:"createdAt" bun:"created_at"`
}

type AddToCartRequest struct {
	SessionID       string  `json:"sessionId" binding:"required"`
	PassID          string  `json:"passId" binding:"required"`
	EventActivityID *string `json:"eventActivityId,omitempty"`
	TimeSlotID      *string `json:"timeSlotId,omitempty"`
	Quantity        int     `json:"quantity"`
}
