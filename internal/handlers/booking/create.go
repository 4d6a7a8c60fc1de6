package booking

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

// pendingExpirationHours lit la durée de vie d'une réservation PENDING non payée
func pendingExpirationHours() int {
	raw := os.Getenv("BOOKING_PENDING_EXPIRATION_HOURS")
	if raw == "" {
		return 24
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 24
	}
	return v
}

// CreateBooking crée une réservation PENDING (payée ensuite via Stripe)
func CreateBooking(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ListingID string `json:"listing_id" binding:"required"`
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	start, end, nights, ok := parseBookingDates(req.StartDate, req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates invalides (minimum 1 nuit)"})
		return
	}

	listing, err := cache.GetListingFromCache(req.ListingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if listing.Status != "published" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette annonce n'est pas disponible à la réservation"})
		return
	}

	if listing.OwnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vous ne pouvez pas réserver votre propre espace"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()

	// Vérifier les conflits de dates (PENDING non expirées + CONFIRMED)
	iter := session.Query(`
		SELECT booking_id, guest_id, start_date, end_date, status, expires_at
		FROM bookings_by_listing WHERE listing_id = ?
	`, listing.ID).Iter()

	var (
		existingID                   gocql.UUID
		existingGuest, existingState string
		existingStart, existingEnd   time.Time
		existingExpires              time.Time
	)

	var reusableID *gocql.UUID

	for iter.Scan(&existingID, &existingGuest, &existingStart, &existingEnd, &existingState, &existingExpires) {
		if existingState != models.BookingStatusPending && existingState != models.BookingStatusConfirmed {
			continue
		}
		// une PENDING expirée ne bloque plus le créneau
		if existingState == models.BookingStatusPending && now.After(existingExpires) {
			continue
		}

		overlaps := existingStart.Before(end) && start.Before(existingEnd)
		if !overlaps {
			continue
		}

		// Idempotence : même guest, mêmes dates, toujours PENDING → on renvoie l'existante
		if existingState == models.BookingStatusPending && existingGuest == userID &&
			existingStart.Equal(start) && existingEnd.Equal(end) {
			id := existingID
			reusableID = &id
			continue
		}

		iter.Close()
		c.JSON(http.StatusConflict, gin.H{"error": "Ces dates ne sont plus disponibles"})
		return
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture réservations existantes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	if reusableID != nil {
		log.Printf("🔁 Réservation PENDING déjà existante réutilisée: %s", reusableID.String())
		c.JSON(http.StatusOK, gin.H{
			"message":    "Réservation en attente déjà existante",
			"booking_id": reusableID.String(),
		})
		return
	}

	// Snapshot des frais au moment de la réservation
	breakdown := buildBreakdownForListing(listing, nights)

	bookingID := gocql.TimeUUID()
	expiresAt := now.Add(time.Duration(pendingExpirationHours()) * time.Hour)

	booking := models.Booking{
		ID:              bookingID,
		ListingID:       listing.ID,
		GuestID:         userID,
		HostID:          listing.OwnerID,
		StartDate:       start,
		EndDate:         end,
		Nights:          nights,
		Currency:        listing.Currency,
		BasePriceCents:  breakdown.BasePriceCents,
		GuestFeeCents:   breakdown.Fees.GuestFeeCents,
		TaxOnFeeCents:   breakdown.Fees.TaxOnGuestFeeCents,
		ChargeCents:     breakdown.TotalCents,
		HostPayoutCents: breakdown.HostPayoutCents,
		Status:          models.BookingStatusPending,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO bookings (booking_id, listing_id, guest_id, host_id, start_date, end_date, nights,
			currency, base_price_cents, guest_fee_cents, tax_on_fee_cents, charge_cents, host_payout_cents,
			status, payment_intent_id, refund_amount_cents, cancelled_at, cancelled_by, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, booking.ID, booking.ListingID, booking.GuestID, booking.HostID, booking.StartDate, booking.EndDate,
		booking.Nights, booking.Currency, booking.BasePriceCents, booking.GuestFeeCents, booking.TaxOnFeeCents,
		booking.ChargeCents, booking.HostPayoutCents, booking.Status, "", int64(0), nil, "", booking.ExpiresAt, booking.CreatedAt)
	batch.Query(`
		INSERT INTO bookings_by_listing (listing_id, booking_id, guest_id, start_date, end_date, status, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, booking.ListingID, booking.ID, booking.GuestID, booking.StartDate, booking.EndDate, booking.Status, booking.ExpiresAt)
	batch.Query(`
		INSERT INTO bookings_by_guest (guest_id, booking_id, created_at)
		VALUES (?, ?, ?)
	`, booking.GuestID, booking.ID, booking.CreatedAt)
	batch.Query(`
		INSERT INTO bookings_by_host (host_id, booking_id, created_at)
		VALUES (?, ?, ?)
	`, booking.HostID, booking.ID, booking.CreatedAt)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur création réservation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création réservation"})
		return
	}

	log.Printf("✅ Réservation créée: %s (%s, %d nuits, %.2f %s)",
		bookingID, listing.Title, nights, float64(booking.ChargeCents)/100, booking.Currency)

	// Prévenir l'hôte qu'une demande arrive sur son espace
	go services.Notify(booking.HostID, models.NotificationBookingRequest,
		fmt.Sprintf("%s : %d nuit(s) du %s au %s", listing.Title, nights,
			start.Format("02/01/2006"), end.Format("02/01/2006")))

	// Notifier le guest par email (asynchrone)
	email := c.GetString("email")
	if email != "" {
		go func() {
			if err := utils.SendBookingStatusEmail(booking, email, models.BookingStatusPending); err != nil {
				log.Printf("❌ Erreur envoi email réservation: %v", err)
			}
		}()
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Réservation créée, en attente de paiement",
		"booking":   booking,
		"breakdown": breakdown,
	})
}
