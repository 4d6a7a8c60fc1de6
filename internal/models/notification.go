package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	NotificationBookingRequest   = "booking_request"
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationPayout           = "payout"
)

type Notification struct {
	ID        gocql.UUID `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      string     `json:"kind"` // booking_request, booking_confirmed, booking_cancelled, payout
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}
