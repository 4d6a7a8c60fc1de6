package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,min=2,max=80"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris ?
	var existingID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now()

	user := models.User{
		ID:        userID.String(),
		Email:     email,
		Password:  hashedPassword,
		Name:      input.Name,
		Role:      "guest",
		Provider:  "local",
		CreatedAt: now,
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO users (user_id, email, password, name, role, provider, stripe_account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, user.Email, user.Password, user.Name, user.Role, user.Provider, "", now, now)
	batch.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)", user.Email, userID)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	// Email de bienvenue (asynchrone)
	go func() {
		if err := utils.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("❌ Erreur envoi email bienvenue: %v", err)
		}
	}()

	log.Printf("✅ Utilisateur créé: %s (%s)", user.ID, user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var userID gocql.UUID
	if err := lookupUserIDByEmail(email, &userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if cache.IsUserBanned(userID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce compte a été suspendu"})
		return
	}

	user, err := loadUser(userID)
	if err != nil || user.Provider != "local" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	// Fast-path : vérification déjà en cache (évite de refaire Argon2)
	if ok, _ := cache.GetPasswordHashFromCache(email, input.Password); !ok {
		valid, err := utils.VerifyPassword(input.Password, user.Password)
		if err != nil || !valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
			return
		}
		cache.SetPasswordHashInCache(email, input.Password)
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	_ = cache.DeleteRefreshToken(userID)
	if email != "" {
		cache.InvalidateAuthCache(email)
	}

	utils.LogAction(c, utils.ACTION_LOGOUT, utils.RESOURCE_AUTH, userID, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":            user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"role":              user.Role,
		"provider":          user.Provider,
		"stripe_account_id": user.StripeAccountID,
	})
}

// BecomeHost passe un guest en hôte (nécessaire pour publier des annonces)
func BecomeHost(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if user.Role == "host" || user.Role == "admin" {
		c.JSON(http.StatusOK, gin.H{"message": "Vous êtes déjà hôte", "role": user.Role})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	uid, _ := gocql.ParseUUID(userID)
	if err := session.Query("UPDATE users SET role = ?, updated_at = ? WHERE user_id = ?", "host", time.Now(), uid).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du rôle"})
		return
	}

	cache.InvalidateUserCache(userID)
	utils.LogAction(c, utils.ACTION_USER_UPDATE, utils.RESOURCE_USER, userID,
		gin.H{"role": user.Role}, gin.H{"role": "host"})

	user.Role = "host"
	token, _ := utils.GenerateJWT(*user)

	log.Printf("✅ Utilisateur %s est maintenant hôte", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Vous êtes maintenant hôte", "role": "host", "token": token})
}

// lookupUserIDByEmail passe par le prepared statement quand il est disponible
func lookupUserIDByEmail(email string, userID *gocql.UUID) error {
	if q := database.GetPreparedGetUserByEmail(); q != nil {
		return q.Bind(email).Scan(userID)
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(userID)
}

// loadUser charge un utilisateur complet (avec mot de passe) depuis ScyllaDB
func loadUser(userID gocql.UUID) (*models.User, error) {
	var u models.User
	u.ID = userID.String()

	if q := database.GetPreparedGetUserByID(); q != nil {
		err := q.Bind(userID).Scan(&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider, &u.StripeAccountID, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	err = session.Query(`
		SELECT email, password, name, role, provider, stripe_account_id, created_at
		FROM users WHERE user_id = ?
	`, userID).Scan(&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider, &u.StripeAccountID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
