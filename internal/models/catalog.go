package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Catalog tables are read-only here: the storefront browses them and the cart
// validates against them, but their stock bookkeeping lives in database
// functions owned by the platform.

type Pass struct {
	bun.BaseModel `bun:"table:passes"`

	ID           string  `json:"id" bun:"id,pk"`
	EventID      string  `json:"eventId" bun:"event_id"`
	Name         string  `json:"name" bun:"name"`
	Description  string  `json:"description" bun:"description"`
	Price        float64 `json:"price" bun:"price"`
	InitialStock *int    `json:"initialStock" bun:"initial_stock"`
}

type EventActivity struct {
	bun.BaseModel `bun:"table:event_activities"`

	ID               string `json:"id" bun:"id,pk"`
	EventID          string `json:"eventId" bun:"event_id"`
	ActivityID       string `json:"activityId" bun:"activity_id"`
	StockLimit       *int   `json:"stockLimit" bun:"stock_limit"`
	RequiresTimeSlot bool   `json:"requiresTimeSlot" bun:"requires_time_slot"`
}

type TimeSlot struct {
	bun.BaseModel `bun:"table:time_slots"`

	ID              string    `json:"id" bun:"id,pk"`
	EventActivityID string    `json:"eventActivityId" bun:"event_activity_id"`
	SlotTime        time.Time `json:"slotTime" bun:"slot_time"`
	Capacity        int       `json:"capacity" bun:"capacity"`
}
