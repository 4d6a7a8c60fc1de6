package models

import "time"

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	Name            string    `json:"name"`
	Role            string    `json:"role"` // guest, host, admin
	Provider        string    `json:"provider"`
	StripeAccountID string    `json:"stripe_account_id,omitempty"` // compte Express pour les payouts
	CreatedAt       time.Time `json:"created_at"`
}
