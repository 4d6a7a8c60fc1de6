package payement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lokroom_back_end/internal/models"
)

func TestRefundClosesBooking(t *testing.T) {
	// Remboursement intégral sur une réservation confirmée : annulation
	assert.True(t, refundClosesBooking(models.BookingStatusConfirmed, 33000, 33000))

	// Un remboursement partiel laisse la réservation confirmée
	assert.False(t, refundClosesBooking(models.BookingStatusConfirmed, 33000, 10000))

	// Rejouer l'événement sur une réservation déjà annulée est sans effet
	assert.False(t, refundClosesBooking(models.BookingStatusCancelled, 33000, 33000))

	// Montant débité nul : rien à clôturer
	assert.False(t, refundClosesBooking(models.BookingStatusConfirmed, 0, 0))
}
