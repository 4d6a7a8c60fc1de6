package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	DepositStatusPending  = "pending"
	DepositStatusHeld     = "held"
	DepositStatusCaptured = "captured"
	DepositStatusReleased = "released"
	DepositStatusExpired  = "expired"
)

// SecurityDeposit est une caution : autorisation Stripe sans capture
// (capture_method=manual), capturée partiellement ou totalement si l'hôte
// réclame, relâchée sinon.
type SecurityDeposit struct {
	ID                  gocql.UUID `json:"id"`
	BookingID           gocql.UUID `json:"booking_id"`
	AmountCents         int64      `json:"amount_cents"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"` // pending, held, captured, released, expired
	PaymentIntentID     string     `json:"payment_intent_id"`
	CapturedAmountCents int64      `json:"captured_amount_cents"`
	CaptureReason       string     `json:"capture_reason,omitempty"`
	DamagePhotos        []string   `json:"damage_photos,omitempty"`
	ExpiresAt           time.Time  `json:"expires_at"` // limite de hold Stripe (7 jours)
	CapturedAt          *time.Time `json:"captured_at,omitempty"`
	ReleasedAt          *time.Time `json:"released_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
