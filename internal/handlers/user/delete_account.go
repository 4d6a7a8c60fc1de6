package user

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

// DeleteAccount supprime définitivement un compte et toutes ses données :
// favoris, notifications, annonces (avec désindexation et photos MinIO),
// caches Redis, puis l'utilisateur lui-même. Refusé tant qu'une réservation
// active (PENDING ou CONFIRMED) existe, côté guest comme côté hôte.
// DELETE /api/auth/account
func DeleteAccount(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Password        string `json:"password"`        // confirme l'identité (comptes locaux)
		ConfirmDeletion bool   `json:"confirmDeletion"` // confirmation explicite
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if !input.ConfirmDeletion {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vous devez confirmer la suppression"})
		return
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	user, err := loadUser(uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Vérifier le mot de passe pour les comptes locaux
	if user.Provider == "local" {
		if input.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mot de passe requis pour confirmer la suppression"})
			return
		}
		valid, err := utils.VerifyPassword(input.Password, user.Password)
		if err != nil || !valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
			return
		}
	}

	// Aucune suppression tant que des réservations actives existent
	if hasActiveBookings(userID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Impossible de supprimer le compte : des réservations en cours existent. Annulez-les d'abord"})
		return
	}

	log.Printf("🗑️ Début de la suppression du compte: %s (%s)", user.Email, userID)

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := context.Background()

	// 1. Caches et tokens Redis
	_ = cache.DeleteRefreshToken(userID)
	cache.InvalidateAuthCache(user.Email)
	cache.InvalidateUserCache(userID)
	database.Redis.Del(ctx, "favorites:"+userID, "oauth_redirect:"+userID)

	// 2. Favoris et notifications (keyspace USERS)
	if err := usersSession.Query("DELETE FROM favorites WHERE user_id = ?", userID).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression favoris: %v", err)
	}
	if err := usersSession.Query("DELETE FROM notifications_by_user WHERE user_id = ?", userID).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression notifications: %v", err)
	}

	// 3. Annonces (keyspace LISTINGS) : désindexation, photos MinIO, lignes
	deleteOwnedListings(ctx, userID)

	// 4. L'utilisateur et son index email (keyspace USERS)
	if err := usersSession.Query("DELETE FROM users_by_email WHERE email = ?", user.Email).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression users_by_email: %v", err)
	}
	if err := usersSession.Query("DELETE FROM users WHERE user_id = ?", uid).Exec(); err != nil {
		log.Printf("❌ Erreur suppression utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du compte"})
		return
	}

	utils.LogAction(c, utils.ACTION_USER_DELETE, utils.RESOURCE_USER, userID,
		gin.H{"email": user.Email}, nil)

	log.Printf("✅ Utilisateur %s (%s) complètement supprimé", user.Email, userID)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Votre compte et toutes vos données ont été supprimés définitivement",
		"deleted_at": time.Now().Format(time.RFC3339),
	})
}

// hasActiveBookings vérifie s'il reste une réservation PENDING ou CONFIRMED
// où l'utilisateur est guest ou hôte
func hasActiveBookings(userID string) bool {
	session, err := database.GetBookingsSession()
	if err != nil {
		return true // dans le doute, on refuse la suppression
	}

	for _, table := range []string{"bookings_by_guest", "bookings_by_host"} {
		column := "guest_id"
		if table == "bookings_by_host" {
			column = "host_id"
		}

		iter := session.Query("SELECT booking_id FROM "+table+" WHERE "+column+" = ?", userID).Iter()

		var bookingID gocql.UUID
		active := false
		for iter.Scan(&bookingID) {
			var status string
			if err := session.Query("SELECT status FROM bookings WHERE booking_id = ?", bookingID).Scan(&status); err != nil {
				continue
			}
			if status == models.BookingStatusPending || status == models.BookingStatusConfirmed {
				active = true
				break
			}
		}
		iter.Close()

		if active {
			return true
		}
	}
	return false
}

// deleteOwnedListings supprime toutes les annonces de l'utilisateur, leurs
// photos MinIO et leurs entrées Elasticsearch
func deleteOwnedListings(ctx context.Context, userID string) {
	session, err := database.GetListingsSession()
	if err != nil {
		log.Printf("⚠️ Erreur session listings: %v", err)
		return
	}

	iter := session.Query("SELECT listing_id FROM listings_by_owner WHERE owner_id = ?", userID).Iter()

	var listingIDs []gocql.UUID
	var listingID gocql.UUID
	for iter.Scan(&listingID) {
		listingIDs = append(listingIDs, listingID)
	}
	iter.Close()

	bucket := os.Getenv("MINIO_BUCKET")

	for _, id := range listingIDs {
		idStr := id.String()

		services.RemoveListingFromIndex(idStr)
		cache.InvalidateListingCache(idStr)

		// Photos du bucket, préfixées par l'annonce
		if database.MinIO != nil {
			objects := database.MinIO.ListObjects(ctx, bucket, minio.ListObjectsOptions{
				Prefix:    "listings/" + idStr + "/",
				Recursive: true,
			})
			for object := range objects {
				if object.Err != nil {
					log.Printf("⚠️ Erreur listage MinIO: %v", object.Err)
					continue
				}
				if err := database.MinIO.RemoveObject(ctx, bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
					log.Printf("⚠️ Erreur suppression photo %s: %v", object.Key, err)
				}
			}
		}

		batch := session.NewBatch(gocql.LoggedBatch)
		batch.Query("DELETE FROM listings WHERE listing_id = ?", id)
		batch.Query("DELETE FROM listings_by_owner WHERE owner_id = ? AND listing_id = ?", userID, id)
		if err := session.ExecuteBatch(batch); err != nil {
			log.Printf("⚠️ Erreur suppression annonce %s: %v", idStr, err)
		}
	}

	if len(listingIDs) > 0 {
		log.Printf("✅ %d annonce(s) supprimée(s)", len(listingIDs))
	}
}
