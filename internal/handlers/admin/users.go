package admin

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/utils"
)

// BanUser suspend un compte (bloque login et appels API)
// POST /api/admin/users/:user_id/ban
func BanUser(c *gin.Context) {
	userID := c.Param("user_id")

	if userID == c.GetString("user_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vous ne pouvez pas suspendre votre propre compte"})
		return
	}

	if err := cache.BanUser(userID); err != nil {
		log.Printf("❌ Erreur suspension utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suspension du compte"})
		return
	}

	// Invalider les caches pour que la suspension prenne effet immédiatement
	cache.InvalidateUserCache(userID)
	_ = cache.DeleteRefreshToken(userID)

	utils.LogAction(c, utils.ACTION_USER_BAN, utils.RESOURCE_USER, userID, nil, nil)

	log.Printf("⚠️ Utilisateur suspendu: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Compte suspendu"})
}

// UnbanUser lève la suspension d'un compte
// POST /api/admin/users/:user_id/unban
func UnbanUser(c *gin.Context) {
	userID := c.Param("user_id")

	if err := cache.UnbanUser(userID); err != nil {
		log.Printf("❌ Erreur levée de suspension: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur levée de suspension"})
		return
	}

	utils.LogAction(c, utils.ACTION_USER_UNBAN, utils.RESOURCE_USER, userID, nil, nil)

	log.Printf("✅ Suspension levée: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Suspension levée"})
}

// SetUserRole change le rôle d'un utilisateur (guest, host, admin)
// PATCH /api/admin/users/:user_id/role { "role": "host" }
func SetUserRole(c *gin.Context) {
	userID := c.Param("user_id")

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle requis"})
		return
	}

	if req.Role != "guest" && req.Role != "host" && req.Role != "admin" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide (guest, host, admin)"})
		return
	}

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	if err := session.Query("UPDATE users SET role = ?, updated_at = ? WHERE user_id = ?",
		req.Role, time.Now(), uid).Exec(); err != nil {
		log.Printf("❌ Erreur changement de rôle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement de rôle"})
		return
	}

	cache.InvalidateUserCache(userID)

	utils.LogAction(c, utils.ACTION_USER_UPDATE, utils.RESOURCE_USER, userID,
		gin.H{"role": user.Role}, gin.H{"role": req.Role})

	log.Printf("✅ Rôle de %s changé: %s → %s", userID, user.Role, req.Role)
	c.JSON(http.StatusOK, gin.H{"message": "Rôle mis à jour", "role": req.Role})
}
