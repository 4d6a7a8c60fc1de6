package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/utils"
)

// AuditPriceChanges middleware pour auditer les changements de prix d'une annonce
func AuditPriceChanges() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Capturer le body de la requête
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}

		// Restaurer le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		// Parser le JSON pour vérifier s'il y a un changement de prix
		var requestData map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &requestData); err != nil {
			c.Next()
			return
		}

		// Vérifier si le prix est modifié
		if price, exists := requestData["price_cents"]; exists {
			listingID := c.Param("id")

			// Récupérer l'ancien prix avant la modification
			oldPrice, err := getListingPrice(listingID)
			if err != nil {
				log.Printf("⚠️ Erreur récupération ancien prix: %v", err)
			}

			// Stocker les infos pour l'audit post-traitement
			c.Set("audit_price_change", true)
			c.Set("audit_listing_id", listingID)
			c.Set("audit_old_price", oldPrice)
			c.Set("audit_new_price", price)
		}

		c.Next()

		// Après traitement, enregistrer l'audit si nécessaire
		if shouldAudit, exists := c.Get("audit_price_change"); exists && shouldAudit.(bool) {
			listingID, _ := c.Get("audit_listing_id")
			oldPrice, _ := c.Get("audit_old_price")
			newPrice, _ := c.Get("audit_new_price")

			// Vérifier que la requête a réussi (status 2xx)
			if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
				oldValue := map[string]interface{}{"price_cents": oldPrice}
				newValue := map[string]interface{}{"price_cents": newPrice}

				utils.LogAction(c, utils.ACTION_LISTING_PRICE_CHANGE, utils.RESOURCE_LISTING,
					listingID.(string), oldValue, newValue)

				log.Printf("💰 Changement de prix audité: annonce %s (%v → %v)",
					listingID, oldPrice, newPrice)
			}
		}
	}
}

// AuditCriticalActions middleware pour auditer toutes les actions critiques
func AuditCriticalActions(action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Capturer les données avant traitement
		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("user_id")
		}
		if resourceID == "" {
			resourceID = c.Param("booking_id")
		}

		c.Next()

		// Auditer après traitement si succès
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			utils.LogAction(c, action, resource, resourceID, nil, nil)
		} else {
			utils.LogFailedAction(c, action, resource, resourceID, "Action échouée")
		}
	}
}

// getListingPrice récupère le prix actuel d'une annonce
func getListingPrice(listingID string) (int64, error) {
	id, err := gocql.ParseUUID(listingID)
	if err != nil {
		return 0, err
	}

	session, err := database.GetListingsSession()
	if err != nil {
		return 0, err
	}

	var priceCents int64
	if err := session.Query("SELECT price_cents FROM listings WHERE listing_id = ?", id).Scan(&priceCents); err != nil {
		return 0, err
	}
	return priceCents, nil
}
