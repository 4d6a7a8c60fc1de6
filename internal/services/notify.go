package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// Notify écrit une notification in-app pour l'utilisateur et réveille ses
// WebSockets inbox via Redis pub/sub. Les erreurs sont loguées, jamais
// remontées : une notification perdue ne doit pas faire échouer l'opération
// qui la déclenche.
func Notify(userID, kind, body string) {
	notification := models.Notification{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		Kind:      kind,
		Title:     notificationTitle(kind),
		Body:      body,
		Read:      false,
		CreatedAt: time.Now(),
	}

	session, err := database.GetUsersSession()
	if err != nil {
		log.Printf("❌ Erreur connexion base de données (notification): %v", err)
		return
	}

	err = session.Query(`
		INSERT INTO notifications_by_user (user_id, notification_id, kind, title, body, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, notification.UserID, notification.ID, notification.Kind, notification.Title,
		notification.Body, notification.Read, notification.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement notification: %v", err)
		return
	}

	if payload, err := json.Marshal(notification); err == nil {
		database.Redis.Publish(context.Background(), "inbox:"+userID, string(payload))
	}

	log.Printf("🔔 Notification %s envoyée à %s", kind, userID)
}

func notificationTitle(kind string) string {
	switch kind {
	case models.NotificationBookingRequest:
		return "📩 Nouvelle demande de réservation"
	case models.NotificationBookingConfirmed:
		return "✅ Réservation confirmée"
	case models.NotificationBookingCancelled:
		return "❌ Réservation annulée"
	case models.NotificationPayout:
		return "💰 Paiement reçu"
	default:
		return "📋 Notification Lok'Room"
	}
}
