package user

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// GetFavorites retourne les annonces favorites de l'utilisateur (cache Redis
// d'abord, ScyllaDB sinon)
// GET /api/favorites
func GetFavorites(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx := context.Background()
	cacheKey := "favorites:" + userID

	if cached, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var favorites models.Favorites
		if json.Unmarshal([]byte(cached), &favorites) == nil {
			c.JSON(http.StatusOK, favorites)
			return
		}
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query("SELECT listing_id FROM favorites WHERE user_id = ?", userID).Iter()

	var listingIDs []gocql.UUID
	var listingID gocql.UUID
	for iter.Scan(&listingID) {
		listingIDs = append(listingIDs, listingID)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture favoris"})
		return
	}

	items := []models.Listing{}
	for _, id := range listingIDs {
		l, err := cache.GetListingFromCache(id.String())
		if err != nil {
			continue // annonce supprimée entre-temps
		}
		items = append(items, *l)
	}

	favorites := models.Favorites{UserID: userID, Items: items}

	if data, err := json.Marshal(favorites); err == nil {
		database.Redis.Set(ctx, cacheKey, data, 10*time.Minute)
	}

	c.JSON(http.StatusOK, favorites)
}

// AddToFavorites ajoute une annonce aux favoris
// POST /api/favorites { "listing_id": "..." }
func AddToFavorites(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ListingID string `json:"listing_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	listingID, err := gocql.ParseUUID(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'annonce invalide"})
		return
	}

	listing, err := cache.GetListingFromCache(req.ListingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}
	if listing.Status != "published" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette annonce n'est pas publiée"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`
		INSERT INTO favorites (user_id, listing_id, added_at) VALUES (?, ?, ?)
	`, userID, listingID, time.Now()).Exec()
	if err != nil {
		log.Printf("❌ Erreur ajout favori: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout aux favoris"})
		return
	}

	database.Redis.Del(context.Background(), "favorites:"+userID)

	log.Printf("⭐ Annonce %s ajoutée aux favoris de %s", req.ListingID, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Annonce ajoutée aux favoris", "listing_id": req.ListingID})
}

// RemoveFromFavorites retire une annonce des favoris
// DELETE /api/favorites/:listingId
func RemoveFromFavorites(c *gin.Context) {
	userID := c.GetString("user_id")

	listingID, err := gocql.ParseUUID(c.Param("listingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'annonce invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query("DELETE FROM favorites WHERE user_id = ? AND listing_id = ?",
		userID, listingID).Exec()
	if err != nil {
		log.Printf("❌ Erreur suppression favori: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression des favoris"})
		return
	}

	database.Redis.Del(context.Background(), "favorites:"+userID)

	log.Printf("🗑️ Annonce %s retirée des favoris de %s", listingID, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Annonce retirée des favoris"})
}
