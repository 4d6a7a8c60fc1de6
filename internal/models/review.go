package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Review struct {
	ID        gocql.UUID `json:"id"`
	ListingID gocql.UUID `json:"listing_id"`
	BookingID gocql.UUID `json:"booking_id"`
	AuthorID  string     `json:"author_id"`
	Rating    int        `json:"rating"` // 1..5
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}
