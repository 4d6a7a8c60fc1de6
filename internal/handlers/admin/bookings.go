package admin

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
	"lokroom_back_end/internal/utils"
)

// ListListingBookings retourne toutes les réservations d'une annonce
// GET /api/admin/listings/:id/bookings
func ListListingBookings(c *gin.Context) {
	listingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'annonce invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT booking_id, guest_id, start_date, end_date, status
		FROM bookings_by_listing WHERE listing_id = ?
	`, listingID).Iter()

	type row struct {
		BookingID string    `json:"booking_id"`
		GuestID   string    `json:"guest_id"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		Status    string    `json:"status"`
	}

	bookings := []row{}
	var (
		bookingID gocql.UUID
		r         row
	)
	for iter.Scan(&bookingID, &r.GuestID, &r.StartDate, &r.EndDate, &r.Status) {
		r.BookingID = bookingID.String()
		bookings = append(bookings, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ForceCancelBooking annule une réservation avec remboursement intégral,
// sans appliquer la politique d'annulation (litiges, fraude, urgence)
// POST /api/admin/bookings/:id/force-cancel
func ForceCancelBooking(c *gin.Context) {
	adminID := c.GetString("user_id")

	bookingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var (
		listingID         gocql.UUID
		status            string
		chargeCents       int64
		refundAmountCents int64
		paymentIntentID   string
	)
	err = session.Query(`
		SELECT listing_id, status, charge_cents, refund_amount_cents, payment_intent_id
		FROM bookings WHERE booking_id = ?
	`, bookingID).Scan(&listingID, &status, &chargeCents, &refundAmountCents, &paymentIntentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if status == models.BookingStatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Réservation déjà annulée"})
		return
	}

	// Remboursement intégral de ce qui reste remboursable
	refundableCents := chargeCents - refundAmountCents
	if status == models.BookingStatusConfirmed && refundableCents > 0 && paymentIntentID != "" {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(paymentIntentID),
			Amount:        stripe.Int64(refundableCents),
			Metadata: map[string]string{
				"booking_id":   bookingID.String(),
				"reason_code":  "admin_force_cancel",
				"cancelled_by": adminID,
			},
		}
		if _, err := refund.New(params); err != nil {
			log.Printf("❌ Erreur remboursement Stripe (force-cancel): %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur remboursement Stripe"})
			return
		}
	} else {
		refundableCents = 0
	}

	now := time.Now()
	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		UPDATE bookings SET status = ?, cancelled_at = ?, cancelled_by = ?, refund_amount_cents = ?
		WHERE booking_id = ?
	`, models.BookingStatusCancelled, now, adminID, refundAmountCents+refundableCents, bookingID)
	batch.Query(`
		UPDATE bookings_by_listing SET status = ?
		WHERE listing_id = ? AND booking_id = ?
	`, models.BookingStatusCancelled, listingID, bookingID)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur annulation forcée: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation réservation"})
		return
	}

	utils.LogAction(c, utils.ACTION_BOOKING_CANCEL, utils.RESOURCE_BOOKING, bookingID.String(),
		gin.H{"status": status},
		gin.H{"status": models.BookingStatusCancelled, "refund_amount_cents": refundableCents, "forced": true})

	log.Printf("⚠️ Annulation forcée: %s par admin %s (remboursé %.2f)", bookingID, adminID, float64(refundableCents)/100)
	c.JSON(http.StatusOK, gin.H{
		"message":               "Réservation annulée par un administrateur",
		"refunded_amount_cents": refundableCents,
	})
}
