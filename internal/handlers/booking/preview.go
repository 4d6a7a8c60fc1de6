package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/pricing"
)

// parseBookingDates parse les dates (YYYY-MM-DD) et retourne le nombre de nuits
func parseBookingDates(startStr, endStr string) (time.Time, time.Time, int, bool) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, 0, false
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, 0, false
	}

	nights := int(end.Sub(start).Hours() / 24)
	if nights < 1 {
		return time.Time{}, time.Time{}, 0, false
	}
	return start, end, nights, true
}

// buildBreakdownForListing résout le barème et construit le détail de prix
func buildBreakdownForListing(listing *models.Listing, nights int) pricing.PriceBreakdown {
	currency := pricing.Currency(listing.Currency)
	region := pricing.InferRegion(currency, listing.Country, listing.Province)

	basePriceCents := listing.PriceCents * int64(nights)
	schedule := pricing.ResolveFeeSchedule(pricing.FeeInput{
		PriceCents: basePriceCents,
		Currency:   currency,
		Region:     region,
	})

	return pricing.BuildBreakdown(pricing.BreakdownInput{
		Nights:             nights,
		PricePerNightCents: listing.PriceCents,
		Currency:           currency,
		Schedule:           schedule,
	})
}

// PreviewBooking calcule le détail de prix d'une réservation sans la créer
func PreviewBooking(c *gin.Context) {
	var req struct {
		ListingID string `json:"listing_id" binding:"required"`
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	_, _, nights, ok := parseBookingDates(req.StartDate, req.EndDate)
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

	breakdown := buildBreakdownForListing(listing, nights)

	c.JSON(http.StatusOK, gin.H{
		"listing_id": req.ListingID,
		"breakdown":  breakdown,
	})
}
