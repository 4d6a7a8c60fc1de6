package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	WalletEntryCredit = "credit"
	WalletEntryDebit  = "debit"
)

type Wallet struct {
	UserID       string    `json:"user_id"`
	BalanceCents int64     `json:"balance_cents"`
	Currency     string    `json:"currency"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WalletEntry est une ligne du grand livre hôte. Reference sert de clé
// d'idempotence (ex: "credit:<payment_intent_id>") — jamais deux lignes
// avec la même référence.
type WalletEntry struct {
	ID          gocql.UUID `json:"id"`
	UserID      string     `json:"user_id"`
	BookingID   gocql.UUID `json:"booking_id"`
	Type        string     `json:"type"` // credit, debit
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Reference   string     `json:"reference"`
	CreatedAt   time.Time  `json:"created_at"`
}
