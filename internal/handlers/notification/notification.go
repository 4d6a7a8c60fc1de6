package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// ListNotifications retourne les notifications de l'utilisateur connecté,
// les plus récentes d'abord (clustering TIMEUUID descendant)
// GET /api/notifications?limit=50&unread=true
func ListNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	unreadOnly := c.Query("unread") == "true"

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT notification_id, kind, title, body, read, created_at
		FROM notifications_by_user WHERE user_id = ? LIMIT ?
	`, userID, limit).Iter()

	notifications := []models.Notification{}
	unreadCount := 0
	var n models.Notification
	n.UserID = userID
	for iter.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt) {
		if !n.Read {
			unreadCount++
		}
		if unreadOnly && n.Read {
			continue
		}
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread":        unreadCount,
	})
}

// MarkNotificationRead marque une notification comme lue
// POST /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("user_id")

	notificationID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de notification invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// La clé de partition garantit qu'on ne touche que ses propres lignes
	err = session.Query(`
		UPDATE notifications_by_user SET read = true WHERE user_id = ? AND notification_id = ?
	`, userID, notificationID).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marquée comme lue"})
}

// MarkAllNotificationsRead marque toutes les notifications comme lues
// PATCH /api/notifications
func MarkAllNotificationsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT notification_id, read FROM notifications_by_user WHERE user_id = ?
	`, userID).Iter()

	var notificationID gocql.UUID
	var read bool
	updated := 0
	for iter.Scan(&notificationID, &read) {
		if read {
			continue
		}
		if err := session.Query(`
			UPDATE notifications_by_user SET read = true WHERE user_id = ? AND notification_id = ?
		`, userID, notificationID).Exec(); err == nil {
			updated++
		}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marquées comme lues", "updated": updated})
}
