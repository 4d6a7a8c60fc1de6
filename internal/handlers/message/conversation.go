package message

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// StartConversation ouvre (ou retrouve) la conversation liée à une réservation
// POST /api/bookings/:id/conversation
func StartConversation(c *gin.Context) {
	userID := c.GetString("user_id")

	bookingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de réservation invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var guestID, hostID string
	if err := session.Query("SELECT guest_id, host_id FROM bookings WHERE booking_id = ?", bookingID).
		Scan(&guestID, &hostID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if userID != guestID && userID != hostID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	conversationID := gocql.TimeUUID()

	// Une seule conversation par réservation (LWT) : si elle existe déjà, on la retourne
	var existingBookingID, existingID gocql.UUID
	applied, err := session.Query(`
		INSERT INTO conversations_by_booking (booking_id, conversation_id) VALUES (?, ?) IF NOT EXISTS
	`, bookingID, conversationID).ScanCAS(&existingBookingID, &existingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création conversation"})
		return
	}
	if !applied {
		c.JSON(http.StatusOK, gin.H{"conversation_id": existingID.String(), "existing": true})
		return
	}

	now := time.Now()
	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO conversations (conversation_id, booking_id, guest_id, host_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, conversationID, bookingID, guestID, hostID, now)
	batch.Query("INSERT INTO conversations_by_user (user_id, conversation_id, created_at) VALUES (?, ?, ?)",
		guestID, conversationID, now)
	batch.Query("INSERT INTO conversations_by_user (user_id, conversation_id, created_at) VALUES (?, ?, ?)",
		hostID, conversationID, now)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur création conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création conversation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"conversation_id": conversationID.String(), "existing": false})
}

// ListConversations retourne les conversations de l'utilisateur connecté
func ListConversations(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query("SELECT conversation_id FROM conversations_by_user WHERE user_id = ?", userID).Iter()

	conversations := []models.Conversation{}
	var conversationID gocql.UUID
	for iter.Scan(&conversationID) {
		var conv models.Conversation
		conv.ID = conversationID
		err := session.Query(`
			SELECT booking_id, guest_id, host_id, created_at FROM conversations WHERE conversation_id = ?
		`, conversationID).Scan(&conv.BookingID, &conv.GuestID, &conv.HostID, &conv.CreatedAt)
		if err != nil {
			continue
		}
		conversations = append(conversations, conv)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
}

// loadConversation vérifie que l'utilisateur est participant
func loadConversation(conversationID gocql.UUID, userID string) (*models.Conversation, int, string) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, http.StatusInternalServerError, "Erreur connexion base de données"
	}

	var conv models.Conversation
	conv.ID = conversationID
	err = session.Query(`
		SELECT booking_id, guest_id, host_id, created_at FROM conversations WHERE conversation_id = ?
	`, conversationID).Scan(&conv.BookingID, &conv.GuestID, &conv.HostID, &conv.CreatedAt)
	if err != nil {
		return nil, http.StatusNotFound, "Conversation introuvable"
	}

	if userID != conv.GuestID && userID != conv.HostID {
		return nil, http.StatusForbidden, "Accès refusé"
	}

	return &conv, 0, ""
}

// ListMessages retourne l'historique d'une conversation
// GET /api/conversations/:id/messages
func ListMessages(c *gin.Context) {
	userID := c.GetString("user_id")

	conversationID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de conversation invalide"})
		return
	}

	if _, status, msg := loadConversation(conversationID, userID); status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	session, _ := database.GetBookingsSession()
	iter := session.Query(`
		SELECT message_id, sender_id, body, created_at
		FROM messages WHERE conversation_id = ?
	`, conversationID).Iter()

	messages := []models.Message{}
	var m models.Message
	m.ConversationID = conversationID
	for iter.Scan(&m.ID, &m.SenderID, &m.Body, &m.CreatedAt) {
		messages = append(messages, m)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// SendMessage envoie un message et notifie l'autre participant via Redis pub/sub
// POST /api/conversations/:id/messages { "body": "..." }
func SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	conversationID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de conversation invalide"})
		return
	}

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=4000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message vide"})
		return
	}

	conv, status, errMsg := loadConversation(conversationID, userID)
	if status != 0 {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	message := models.Message{
		ID:             gocql.TimeUUID(),
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           req.Body,
		CreatedAt:      time.Now(),
	}

	session, _ := database.GetBookingsSession()
	err = session.Query(`
		INSERT INTO messages (conversation_id, message_id, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, message.ConversationID, message.ID, message.SenderID, message.Body, message.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi message"})
		return
	}

	// Diffuser aux WebSockets abonnés à cette conversation
	payload, _ := json.Marshal(message)
	ctx := context.Background()
	database.Redis.Publish(ctx, "conversation:"+conversationID.String(), string(payload))

	recipient := conv.HostID
	if userID == conv.HostID {
		recipient = conv.GuestID
	}
	database.Redis.Publish(ctx, "inbox:"+recipient, "new_message")

	c.JSON(http.StatusCreated, gin.H{"message": message})
}
