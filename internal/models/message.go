package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Conversation relie un guest et un hôte autour d'une réservation.
type Conversation struct {
	ID        gocql.UUID `json:"id"`
	BookingID gocql.UUID `json:"booking_id"`
	GuestID   string     `json:"guest_id"`
	HostID    string     `json:"host_id"`
	CreatedAt time.Time  `json:"created_at"`
}

type Message struct {
	ID             gocql.UUID `json:"id"` // timeuuid, ordonne les messages
	ConversationID gocql.UUID `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"created_at"`
}
