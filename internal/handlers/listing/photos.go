package listing

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/services"
)

// UploadListingPhotos ajoute des photos à une annonce (propriétaire uniquement)
func UploadListingPhotos(c *gin.Context) {
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

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire invalide"})
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune photo fournie"})
		return
	}

	if len(listing.Photos)+len(files) > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 20 photos par annonce"})
		return
	}

	urls := listing.Photos
	for _, file := range files {
		url, err := services.UploadListingPhoto(listing.ID.String(), file)
		if err != nil {
			log.Printf("❌ Erreur upload photo: %v", err)
			continue
		}
		urls = append(urls, url)
	}

	session, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE listings SET photos = ? WHERE listing_id = ?", urls, listing.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement photos"})
		return
	}

	cache.InvalidateListingCache(listing.ID.String())

	c.JSON(http.StatusOK, gin.H{"photos": urls, "count": len(urls)})
}

// GetListingPhotoURL retourne une URL signée temporaire pour une photo
// GET /api/listings/:id/photos/signed?path=...
func GetListingPhotoURL(c *gin.Context) {
	objectPath := c.Query("path")
	if objectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre path requis"})
		return
	}

	url, err := services.GenerateSignedURL(c.Request.Context(), objectPath, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": 900})
}
