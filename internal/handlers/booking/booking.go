package booking

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// loadBookingByID charge une réservation complète depuis ScyllaDB
func loadBookingByID(id gocql.UUID) (*models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	var b models.Booking
	b.ID = id

	var cancelledAt *time.Time

	err = session.Query(`
		SELECT listing_id, guest_id, host_id, start_date, end_date, nights, currency,
			base_price_cents, guest_fee_cents, tax_on_fee_cents, charge_cents, host_payout_cents,
			status, payment_intent_id, refund_amount_cents, cancelled_at, cancelled_by, expires_at, created_at
		FROM bookings WHERE booking_id = ?
	`, id).Scan(
		&b.ListingID, &b.GuestID, &b.HostID, &b.StartDate, &b.EndDate, &b.Nights, &b.Currency,
		&b.BasePriceCents, &b.GuestFeeCents, &b.TaxOnFeeCents, &b.ChargeCents, &b.HostPayoutCents,
		&b.Status, &b.PaymentIntentID, &b.RefundAmountCents, &cancelledAt, &b.CancelledBy, &b.ExpiresAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}

	b.CancelledAt = cancelledAt
	return &b, nil
}

// canAccessBooking vérifie que l'utilisateur est le guest, l'hôte ou un admin
func canAccessBooking(c *gin.Context, b *models.Booking) bool {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	return userID == b.GuestID || userID == b.HostID || role == "admin"
}

// GetBooking retourne une réservation (guest, hôte ou admin uniquement)
func GetBooking(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListMyBookings retourne les réservations du guest connecté
func ListMyBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT booking_id FROM bookings_by_guest WHERE guest_id = ?
	`, userID).Iter()

	bookings := []models.Booking{}
	var bookingID gocql.UUID
	for iter.Scan(&bookingID) {
		b, err := loadBookingByID(bookingID)
		if err != nil {
			log.Printf("⚠️ Réservation %s introuvable dans la table principale: %v", bookingID, err)
			continue
		}
		bookings = append(bookings, *b)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ListHostBookings retourne les réservations reçues par l'hôte connecté
func ListHostBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT booking_id FROM bookings_by_host WHERE host_id = ?
	`, userID).Iter()

	bookings := []models.Booking{}
	var bookingID gocql.UUID
	for iter.Scan(&bookingID) {
		b, err := loadBookingByID(bookingID)
		if err != nil {
			continue
		}
		bookings = append(bookings, *b)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
