package models

import (
	"time"

	"github.com/gocql/gocql"
)

type FavoriteItem struct {
	UserID    string     `json:"user_id"`
	ListingID gocql.UUID `json:"listing_id"`
	AddedAt   time.Time  `json:"added_at"`
}

type Favorites struct {
	UserID string    `json:"user_id"`
	Items  []Listing `json:"items"`
}
