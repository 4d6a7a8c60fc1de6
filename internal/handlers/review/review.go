package review

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

const DefaultReviewWindowDays = 14

// reviewWindowDays : fenêtre pendant laquelle un guest peut laisser un avis
// après la fin du séjour (REVIEW_WINDOW_DAYS, 14 jours par défaut)
func reviewWindowDays() int {
	if v := os.Getenv("REVIEW_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultReviewWindowDays
}

// CreateReview permet au guest de noter un espace après son séjour
// POST /api/bookings/:id/review { "rating": 5, "comment": "..." }
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	bookingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de réservation invalide"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note entre 1 et 5 requise"})
		return
	}

	bookingsSession, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var (
		listingID gocql.UUID
		guestID   string
		status    string
		endDate   time.Time
	)
	err = bookingsSession.Query(`
		SELECT listing_id, guest_id, status, end_date FROM bookings WHERE booking_id = ?
	`, bookingID).Scan(&listingID, &guestID, &status, &endDate)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if guestID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seul le guest de la réservation peut laisser un avis"})
		return
	}

	now := time.Now()

	// Séjour terminé : statut completed, ou confirmé avec date de fin passée
	completed := status == models.BookingStatusCompleted ||
		(status == models.BookingStatusConfirmed && now.After(endDate))
	if !completed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vous ne pouvez laisser un avis qu'après la fin du séjour"})
		return
	}

	if now.After(endDate.Add(time.Duration(reviewWindowDays()) * 24 * time.Hour)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("La période d'avis de %d jours est écoulée", reviewWindowDays())})
		return
	}

	listingsSession, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	reviewID := gocql.TimeUUID()

	// Un seul avis par réservation (LWT)
	var existingBookingID, existingReviewID gocql.UUID
	applied, err := listingsSession.Query(`
		INSERT INTO reviews_by_booking (booking_id, review_id) VALUES (?, ?) IF NOT EXISTS
	`, bookingID, reviewID).ScanCAS(&existingBookingID, &existingReviewID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement avis"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà laissé un avis pour cette réservation"})
		return
	}

	review := models.Review{
		ID:        reviewID,
		ListingID: listingID,
		BookingID: bookingID,
		AuthorID:  userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
	}

	err = listingsSession.Query(`
		INSERT INTO reviews_by_listing (listing_id, review_id, booking_id, author_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, review.ListingID, review.ID, review.BookingID, review.AuthorID, review.Rating, review.Comment, review.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement avis"})
		return
	}

	// Agrégats de note dans Redis (évite de recompter à chaque lecture)
	ctx := context.Background()
	database.Redis.IncrBy(ctx, "rating:sum:"+listingID.String(), int64(req.Rating))
	database.Redis.Incr(ctx, "rating:count:"+listingID.String())

	log.Printf("✅ Avis créé: %s (note %d) pour l'annonce %s", review.ID, review.Rating, listingID)
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// ListListingReviews retourne les avis d'une annonce avec la note moyenne
// GET /api/listings/:id/reviews
func ListListingReviews(c *gin.Context) {
	listingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'annonce invalide"})
		return
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT review_id, booking_id, author_id, rating, comment, created_at
		FROM reviews_by_listing WHERE listing_id = ?
	`, listingID).Iter()

	reviews := []models.Review{}
	var r models.Review
	r.ListingID = listingID
	for iter.Scan(&r.ID, &r.BookingID, &r.AuthorID, &r.Rating, &r.Comment, &r.CreatedAt) {
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
		"average": averageRating(listingID.String(), reviews),
	})
}

// averageRating lit les agrégats Redis, recalcule depuis les avis en cas de miss
func averageRating(listingID string, reviews []models.Review) float64 {
	ctx := context.Background()

	sum, errSum := database.Redis.Get(ctx, "rating:sum:"+listingID).Int64()
	count, errCount := database.Redis.Get(ctx, "rating:count:"+listingID).Int64()
	if errSum == nil && errCount == nil && count > 0 {
		return float64(sum) / float64(count)
	}

	if len(reviews) == 0 {
		return 0
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))

	// Réamorcer le cache
	database.Redis.Set(ctx, "rating:sum:"+listingID, total, 0)
	database.Redis.Set(ctx, "rating:count:"+listingID, len(reviews), 0)

	return avg
}
