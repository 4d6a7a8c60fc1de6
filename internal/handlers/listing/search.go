package listing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/services"
)

// SearchListings recherche des annonces publiées via Elasticsearch
// GET /api/listings/search?q=...&city=...&kind=...
func SearchListings(c *gin.Context) {
	query := c.Query("q")
	city := c.Query("city")
	kind := c.Query("kind")

	if query == "" && city == "" && kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Au moins un critère de recherche est requis"})
		return
	}

	results, err := services.SearchListings(query, city, kind)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []interface{}{}, "count": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
