package booking

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/pricing"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

// roleFor détermine le rôle d'annulation de l'utilisateur sur la réservation
func roleFor(userID string, b *models.Booking) pricing.CancellationRole {
	if userID == b.HostID {
		return pricing.RoleHost
	}
	return pricing.RoleGuest
}

// decisionFor évalue la politique d'annulation sur une réservation
func decisionFor(userID string, b *models.Booking, now time.Time) pricing.CancellationDecision {
	return pricing.EvaluateCancellationPolicy(pricing.CancellationInput{
		Role:            roleFor(userID, b),
		Now:             now,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		TotalPriceCents: b.ChargeCents,
		ServiceFeeCents: b.GuestFeeCents + b.TaxOnFeeCents,
		Currency:        pricing.Currency(b.Currency),
	})
}

// CancellationPreview montre ce qu'une annulation donnerait maintenant,
// sans rien annuler
func CancellationPreview(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	b, err := loadBookingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if !canAccessBooking(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}

	decision := decisionFor(c.GetString("user_id"), b, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"booking_id": b.ID.String(),
		"decision":   decision,
	})
}

// CancelPendingBooking annule une réservation PENDING (pas encore payée).
// Aucun remboursement à faire : rien n'a été débité.
func CancelPendingBooking(c *gin.Context) {
	userID := c.GetString("user_id")

	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	b, err := loadBookingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if !canAccessBooking(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}

	if b.Status != models.BookingStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seule une réservation en attente peut être annulée ici. Utilisez le remboursement pour une réservation confirmée"})
		return
	}

	if err := markCancelled(b, userID, 0); err != nil {
		log.Printf("❌ Erreur annulation réservation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation réservation"})
		return
	}

	log.Printf("✅ Réservation PENDING annulée: %s par %s", b.ID, userID)
	utils.LogAction(c, utils.ACTION_BOOKING_CANCEL, utils.RESOURCE_BOOKING, b.ID.String(), nil, nil)

	go services.Notify(counterpartyOf(userID, b), models.NotificationBookingCancelled,
		"La demande de réservation a été annulée avant paiement.")

	c.JSON(http.StatusOK, gin.H{"message": "Réservation annulée"})
}

// RefundBooking annule une réservation CONFIRMED et rembourse le guest selon
// la politique d'annulation
func RefundBooking(c *gin.Context) {
	userID := c.GetString("user_id")

	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	b, err := loadBookingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if !canAccessBooking(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}

	if b.Status != models.BookingStatusConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seule une réservation confirmée peut être remboursée"})
		return
	}

	decision := decisionFor(userID, b, time.Now())

	if !decision.Allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       decision.Message,
			"reason_code": decision.ReasonCode,
		})
		return
	}

	// Jamais rembourser plus que ce qui reste remboursable
	refundableCents := b.ChargeCents - b.RefundAmountCents
	amountCents := decision.RefundAmountCents
	if amountCents > refundableCents {
		amountCents = refundableCents
	}

	if amountCents > 0 {
		if b.PaymentIntentID == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Paiement introuvable pour cette réservation"})
			return
		}

		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(b.PaymentIntentID),
			Amount:        stripe.Int64(amountCents),
			Metadata: map[string]string{
				"booking_id":   b.ID.String(),
				"reason_code":  decision.ReasonCode,
				"cancelled_by": userID,
			},
		}

		if _, err := refund.New(params); err != nil {
			log.Printf("❌ Erreur remboursement Stripe: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur remboursement Stripe"})
			return
		}

		log.Printf("💳 Remboursement Stripe lancé: %.2f %s pour %s (%s)",
			float64(amountCents)/100, b.Currency, b.ID, decision.ReasonCode)
	}

	if err := markCancelled(b, userID, amountCents); err != nil {
		log.Printf("❌ Erreur mise à jour réservation après remboursement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour réservation"})
		return
	}

	utils.LogAction(c, utils.ACTION_BOOKING_REFUND, utils.RESOURCE_BOOKING, b.ID.String(),
		gin.H{"status": models.BookingStatusConfirmed},
		gin.H{"status": models.BookingStatusCancelled, "refund_amount_cents": amountCents, "reason_code": decision.ReasonCode})

	go services.Notify(counterpartyOf(userID, b), models.NotificationBookingCancelled,
		"La réservation a été annulée.")

	// Notifier le guest (asynchrone) : c'est lui qui est remboursé, même
	// quand c'est l'hôte qui annule
	email, needsLookup := cancellationRecipient(userID, c.GetString("email"), b)
	if needsLookup {
		email = guestEmailFor(b.GuestID)
	}
	if email != "" {
		go func() {
			cancelled := *b
			cancelled.Status = models.BookingStatusCancelled
			if err := utils.SendBookingStatusEmail(cancelled, email, models.BookingStatusCancelled); err != nil {
				log.Printf("❌ Erreur envoi email annulation: %v", err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Réservation annulée et remboursement lancé",
		"decision": decision,
		"refunded_amount_cents": amountCents,
	})
}

// counterpartyOf retourne l'autre participant de la réservation
func counterpartyOf(userID string, b *models.Booking) string {
	if userID == b.HostID {
		return b.GuestID
	}
	return b.HostID
}

// cancellationRecipient détermine le destinataire de l'email d'annulation.
// Si l'acteur est le guest, son email du contexte suffit ; sinon (annulation
// hôte) il faut résoudre l'email du guest en base.
func cancellationRecipient(actorID, actorEmail string, b *models.Booking) (string, bool) {
	if actorID == b.GuestID {
		return actorEmail, false
	}
	return "", true
}

// guestEmailFor résout l'email d'un guest depuis la table users
func guestEmailFor(guestID string) string {
	uid, err := gocql.ParseUUID(guestID)
	if err != nil {
		return ""
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return ""
	}

	var email string
	if err := session.Query("SELECT email FROM users WHERE user_id = ?", uid).Scan(&email); err != nil {
		return ""
	}
	return email
}

// markCancelled passe la réservation en CANCELLED dans toutes les tables
func markCancelled(b *models.Booking, cancelledBy string, refundAmountCents int64) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	now := time.Now()
	totalRefunded := b.RefundAmountCents + refundAmountCents

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		UPDATE bookings SET status = ?, cancelled_at = ?, cancelled_by = ?, refund_amount_cents = ?
		WHERE booking_id = ?
	`, models.BookingStatusCancelled, now, cancelledBy, totalRefunded, b.ID)
	batch.Query(`
		UPDATE bookings_by_listing SET status = ?
		WHERE listing_id = ? AND booking_id = ?
	`, models.BookingStatusCancelled, b.ListingID, b.ID)

	return session.ExecuteBatch(batch)
}
