package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// GetPlatformStats agrège les volumes de la plateforme : réservations par
// statut, volume encaissé, frais, payouts. Lecture complète, réservé au
// back-office.
// GET /api/admin/stats
func GetPlatformStats(c *gin.Context) {
	bookingsSession, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := bookingsSession.Query(`
		SELECT status, currency, charge_cents, guest_fee_cents, tax_on_fee_cents, host_payout_cents, refund_amount_cents
		FROM bookings
	`).Iter()

	type currencyTotals struct {
		GrossCents    int64 `json:"gross_cents"`
		FeesCents     int64 `json:"fees_cents"`
		TaxesCents    int64 `json:"taxes_cents"`
		PayoutsCents  int64 `json:"payouts_cents"`
		RefundedCents int64 `json:"refunded_cents"`
	}

	byStatus := map[string]int{}
	byCurrency := map[string]*currencyTotals{}

	var (
		status      string
		currency    string
		charge      int64
		guestFee    int64
		taxOnFee    int64
		hostPayout  int64
		refunded    int64
		totalCount  int
	)
	for iter.Scan(&status, &currency, &charge, &guestFee, &taxOnFee, &hostPayout, &refunded) {
		totalCount++
		byStatus[status]++

		t := byCurrency[currency]
		if t == nil {
			t = &currencyTotals{}
			byCurrency[currency] = t
		}

		// Seules les réservations payées comptent dans le volume
		if status == models.BookingStatusConfirmed || status == models.BookingStatusCompleted {
			t.GrossCents += charge
			t.FeesCents += guestFee
			t.TaxesCents += taxOnFee
			t.PayoutsCents += hostPayout
		}
		t.RefundedCents += refunded
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur agrégation stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	listingsSession, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var publishedListings int
	if err := listingsSession.Query("SELECT COUNT(*) FROM listings WHERE status = ? ALLOW FILTERING", "published").
		Scan(&publishedListings); err != nil {
		publishedListings = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings_total":     totalCount,
		"bookings_by_status": byStatus,
		"by_currency":        byCurrency,
		"published_listings": publishedListings,
	})
}
