package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/utils"
)

// ================== AUTH OAUTH (WEB) ==================

// generateRandomState génère un state CSRF pour le flux OAuth
func generateRandomState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return gocql.TimeUUID().String()
	}
	return hex.EncodeToString(b)
}

// BeginAuth démarre le flux OAuth web (Google / Facebook)
// GET /api/auth/:provider?redirect=...
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" && provider != "facebook" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	state := generateRandomState()

	// Mémoriser l'URL de redirection du front pendant 10 minutes
	redirect := c.Query("redirect")
	if redirect != "" {
		ctx := context.Background()
		database.Redis.Set(ctx, "oauth_redirect:"+state, redirect, 10*time.Minute)
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux OAuth web et redirige vers le front avec un JWT
// GET /api/auth/:provider/callback
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth %s: %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	user, err := findOrCreateOAuthUser(provider, gothUser)
	if err != nil {
		log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	handleOAuthUser(c, user, c.Query("state"))
}

// findOrCreateOAuthUser retrouve un utilisateur par email ou le crée
func findOrCreateOAuthUser(provider string, gothUser goth.User) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(gothUser.Email))

	var userID gocql.UUID
	err = lookupUserIDByEmail(email, &userID)
	if err == nil {
		// Compte existant : fusion du provider si le compte était local
		user, err := loadUser(userID)
		if err != nil {
			return nil, err
		}
		if user.Provider == "local" {
			if err := session.Query("UPDATE users SET provider = ?, updated_at = ? WHERE user_id = ?",
				provider, time.Now(), userID).Exec(); err == nil {
				user.Provider = provider
				cache.InvalidateUserCache(user.ID)
				log.Printf("🔁 Compte local fusionné avec %s: %s", provider, email)
			}
		}
		return user, nil
	}

	// Nouveau compte
	name := gothUser.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	userID = gocql.TimeUUID()
	now := time.Now()

	user := models.User{
		ID:        userID.String(),
		Email:     email,
		Name:      name,
		Role:      "guest",
		Provider:  provider,
		CreatedAt: now,
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO users (user_id, email, password, name, role, provider, stripe_account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, user.Email, "", user.Name, user.Role, user.Provider, "", now, now)
	batch.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)", user.Email, userID)

	if err := session.ExecuteBatch(batch); err != nil {
		return nil, err
	}

	go func() {
		if err := utils.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("❌ Erreur envoi email bienvenue: %v", err)
		}
	}()

	log.Printf("✅ Utilisateur OAuth créé: %s (%s via %s)", user.ID, user.Email, provider)
	return &user, nil
}

// handleOAuthUser génère le JWT et redirige vers le front (ou l'app mobile)
func handleOAuthUser(c *gin.Context, user *models.User, state string) {
	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil,
		gin.H{"provider": user.Provider})

	// Redirection mémorisée au début du flux ?
	redirect := ""
	if state != "" {
		ctx := context.Background()
		key := "oauth_redirect:" + state
		if val, err := database.Redis.Get(ctx, key).Result(); err == nil {
			redirect = val
			database.Redis.Del(ctx, key)
		}
	}

	if redirect == "" {
		redirect = os.Getenv("FRONTEND_URL")
		if redirect == "" {
			redirect = "http://localhost:3000"
		}
		redirect += "/auth/callback"
	}

	if !isAllowedRedirect(redirect) {
		log.Printf("⚠️ Redirection OAuth refusée: %s", redirect)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirection non autorisée"})
		return
	}

	sep := "?"
	if strings.Contains(redirect, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirect+sep+"token="+url.QueryEscape(token))
}

// isAllowedRedirect vérifie que la redirection cible le front ou l'app mobile
func isAllowedRedirect(redirect string) bool {
	// Deep link mobile
	if strings.HasPrefix(redirect, "lokroom://auth/callback") {
		return true
	}

	allowed := []string{
		"http://localhost:3000",
		"https://lokroom.com",
		"https://www.lokroom.com",
	}
	if frontURL := os.Getenv("FRONTEND_URL"); frontURL != "" {
		allowed = append(allowed, frontURL)
	}

	for _, prefix := range allowed {
		if strings.HasPrefix(redirect, prefix) {
			return true
		}
	}
	return false
}
