package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID        gocql.UUID `json:"id"`
	ListingID gocql.UUID `json:"listing_id"`
	GuestID   string     `json:"guest_id"`
	HostID    string     `json:"host_id"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Nights    int       `json:"nights"`

	// Snapshot des frais au moment de la réservation (en cents)
	Currency        string `json:"currency"`
	BasePriceCents  int64  `json:"base_price_cents"`
	GuestFeeCents   int64  `json:"guest_fee_cents"`
	TaxOnFeeCents   int64  `json:"tax_on_fee_cents"`
	ChargeCents     int64  `json:"charge_cents"` // débité au guest
	HostPayoutCents int64  `json:"host_payout_cents"`

	Status            string     `json:"status"` // pending, confirmed, cancelled, completed
	PaymentIntentID   string     `json:"payment_intent_id,omitempty"`
	RefundAmountCents int64      `json:"refund_amount_cents"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy       string     `json:"cancelled_by,omitempty"`
	ExpiresAt         time.Time  `json:"expires_at"` // une PENDING non payée expire
	CreatedAt         time.Time  `json:"created_at"`
}
