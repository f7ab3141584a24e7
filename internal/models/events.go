package models

import "time"

// ReservationEvent is published to Kafka after webhook processing so
// downstream consumers (back-office dashboards, the communication service)
// can react without polling the database.
type ReservationEvent struct {
	Type        string       `json:"type"`
	SessionID   string       `json:"session_id,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// ValidationEvent is emitted each time a reservation QR code is scanned at a
// park entrance; the consumer feeds the live validation counter.
type ValidationEvent struct {
	ReservationNumber string    `json:"reservation_number"`
	Source            string    `json:"source"`
	ScannedAt         time.Time `json:"scanned_at"`
}
