package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Listing struct {
	ID           gocql.UUID `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Kind         string     `json:"kind"` // apartment, office, studio, parking
	PriceCents   int64      `json:"price_cents"` // prix par nuit
	Currency     string     `json:"currency"`    // EUR | CAD
	Country      string     `json:"country"`
	Province     string     `json:"province,omitempty"` // AB, BC, ON, QC, NB, NS, NL, PE
	City         string     `json:"city"`
	Status       string     `json:"status"` // draft, published, suspended
	Photos       []string   `json:"photos"`
	DepositCents int64      `json:"deposit_cents"` // caution demandée par l'hôte (0 = pas de caution)
	CreatedAt    time.Time  `json:"created_at"`
}
