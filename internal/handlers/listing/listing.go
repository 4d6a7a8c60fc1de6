package listing

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

var validKinds = map[string]bool{
	"apartment": true,
	"office":    true,
	"studio":    true,
	"parking":   true,
}

// CreateListing crée une annonce (brouillon, publiée ensuite)
func CreateListing(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Title        string `json:"title" binding:"required,min=5,max=120"`
		Description  string `json:"description" binding:"max=5000"`
		Kind         string `json:"kind" binding:"required"`
		PriceCents   int64  `json:"price_cents" binding:"required,min=100"`
		Currency     string `json:"currency" binding:"required"`
		Country      string `json:"country" binding:"required"`
		Province     string `json:"province"`
		City         string `json:"city" binding:"required"`
		DepositCents int64  `json:"deposit_cents" binding:"min=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if !validKinds[req.Kind] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type d'espace invalide (apartment, office, studio, parking)"})
		return
	}

	if req.Currency != "EUR" && req.Currency != "CAD" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Devise non supportée (EUR ou CAD)"})
		return
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	listing := models.Listing{
		ID:           gocql.TimeUUID(),
		OwnerID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		Kind:         req.Kind,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		Country:      req.Country,
		Province:     req.Province,
		City:         req.City,
		Status:       "draft",
		Photos:       []string{},
		DepositCents: req.DepositCents,
		CreatedAt:    time.Now(),
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO listings (listing_id, owner_id, title, description, kind, price_cents, currency,
			country, province, city, status, photos, deposit_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, listing.ID, listing.OwnerID, listing.Title, listing.Description, listing.Kind, listing.PriceCents,
		listing.Currency, listing.Country, listing.Province, listing.City, listing.Status,
		listing.Photos, listing.DepositCents, listing.CreatedAt)
	batch.Query(`
		INSERT INTO listings_by_owner (owner_id, listing_id, created_at) VALUES (?, ?, ?)
	`, listing.OwnerID, listing.ID, listing.CreatedAt)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur création annonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création annonce"})
		return
	}

	utils.LogAction(c, utils.ACTION_LISTING_CREATE, utils.RESOURCE_LISTING, listing.ID.String(), nil, listing)

	log.Printf("✅ Annonce créée: %s (%s)", listing.ID, listing.Title)
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListing retourne une annonce (cache Redis d'abord)
func GetListing(c *gin.Context) {
	listing, err := cache.GetListingFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// ListMyListings retourne les annonces de l'hôte connecté
func ListMyListings(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query("SELECT listing_id FROM listings_by_owner WHERE owner_id = ?", userID).Iter()

	listings := []models.Listing{}
	var listingID gocql.UUID
	for iter.Scan(&listingID) {
		l, err := cache.GetListingFromCache(listingID.String())
		if err != nil {
			continue
		}
		listings = append(listings, *l)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture annonces"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// UpdateListing modifie une annonce (propriétaire uniquement)
func UpdateListing(c *gin.Context) {
	userID := c.GetString("user_id")

	listing, err := cache.GetListingFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if listing.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette annonce ne vous appartient pas"})
		return
	}

	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		PriceCents   *int64  `json:"price_cents"`
		DepositCents *int64  `json:"deposit_cents"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prix minimum : 1€ la nuit"})
			return
		}
		listing.PriceCents = *req.PriceCents
	}
	if req.DepositCents != nil {
		if *req.DepositCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Caution invalide"})
			return
		}
		listing.DepositCents = *req.DepositCents
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`
		UPDATE listings SET title = ?, description = ?, price_cents = ?, deposit_cents = ?
		WHERE listing_id = ?
	`, listing.Title, listing.Description, listing.PriceCents, listing.DepositCents, listing.ID).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour annonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour annonce"})
		return
	}

	cache.InvalidateListingCache(listing.ID.String())

	// Réindexer si l'annonce est publiée
	if listing.Status == "published" {
		go services.IndexListing(*listing)
	}

	utils.LogAction(c, utils.ACTION_LISTING_UPDATE, utils.RESOURCE_LISTING, listing.ID.String(), nil, nil)

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// PublishListing publie une annonce et l'indexe dans Elasticsearch
func PublishListing(c *gin.Context) {
	userID := c.GetString("user_id")

	listing, err := cache.GetListingFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if listing.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette annonce ne vous appartient pas"})
		return
	}

	if len(listing.Photos) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ajoutez au moins une photo avant de publier"})
		return
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE listings SET status = ? WHERE listing_id = ?", "published", listing.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur publication annonce"})
		return
	}

	cache.InvalidateListingCache(listing.ID.String())

	listing.Status = "published"
	go services.IndexListing(*listing)

	utils.LogAction(c, utils.ACTION_LISTING_PUBLISH, utils.RESOURCE_LISTING, listing.ID.String(), nil, nil)

	log.Printf("✅ Annonce publiée: %s (%s)", listing.ID, listing.Title)
	c.JSON(http.StatusOK, gin.H{"message": "Annonce publiée", "listing": listing})
}

// UnpublishListing repasse une annonce en brouillon et la retire de l'index
func UnpublishListing(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	listing, err := cache.GetListingFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if listing.OwnerID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette annonce ne vous appartient pas"})
		return
	}

	if listing.Status != "published" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette annonce n'est pas publiée"})
		return
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE listings SET status = ? WHERE listing_id = ?", "draft", listing.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur dépublication annonce"})
		return
	}

	cache.InvalidateListingCache(listing.ID.String())
	go services.RemoveListingFromIndex(listing.ID.String())

	utils.LogAction(c, utils.ACTION_LISTING_UPDATE, utils.RESOURCE_LISTING, listing.ID.String(),
		gin.H{"status": "published"}, gin.H{"status": "draft"})

	c.JSON(http.StatusOK, gin.H{"message": "Annonce dépubliée"})
}

// DeleteListing retire une annonce (propriétaire ou admin)
func DeleteListing(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	listing, err := cache.GetListingFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if listing.OwnerID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette annonce ne vous appartient pas"})
		return
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query("DELETE FROM listings WHERE listing_id = ?", listing.ID)
	batch.Query("DELETE FROM listings_by_owner WHERE owner_id = ? AND listing_id = ?", listing.OwnerID, listing.ID)

	if err := session.ExecuteBatch(batch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression annonce"})
		return
	}

	cache.InvalidateListingCache(listing.ID.String())
	go services.RemoveListingFromIndex(listing.ID.String())

	utils.LogAction(c, utils.ACTION_LISTING_DELETE, utils.RESOURCE_LISTING, listing.ID.String(), listing, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Annonce supprimée"})
}
