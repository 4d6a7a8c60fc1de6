package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lokroom_back_end/internal/models"
)

func TestNotificationTitleByKind(t *testing.T) {
	assert.Equal(t, "📩 Nouvelle demande de réservation", notificationTitle(models.NotificationBookingRequest))
	assert.Equal(t, "✅ Réservation confirmée", notificationTitle(models.NotificationBookingConfirmed))
	assert.Equal(t, "❌ Réservation annulée", notificationTitle(models.NotificationBookingCancelled))
	assert.Equal(t, "💰 Paiement reçu", notificationTitle(models.NotificationPayout))

	// Genre inconnu : titre générique, jamais vide
	assert.Equal(t, "📋 Notification Lok'Room", notificationTitle("autre"))
}
