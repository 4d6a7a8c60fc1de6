package user

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"

	"lokroom_back_end/internal/auth"
	"lokroom_back_end/internal/config"
	"lokroom_back_end/internal/utils"
)

// ================== AUTH OAUTH (MOBILE) ==================

// GoogleMobileLogin vérifie un id_token Google obtenu par l'app mobile
// POST /api/auth/google/mobile { "id_token": "..." }
func GoogleMobileLogin(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token requis"})
		return
	}

	// Validation du token auprès de Google
	resp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(req.IDToken))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}

	var tokenInfo struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Sub           string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}

	// Le token doit avoir été émis pour un de nos client IDs
	validAuds := []string{
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_WEB_CLIENT_ID"),
		os.Getenv("GOOGLE_IOS_CLIENT_ID"),
		os.Getenv("GOOGLE_ANDROID_CLIENT_ID"),
	}
	audOK := false
	for _, aud := range validAuds {
		if aud != "" && tokenInfo.Aud == aud {
			audOK = true
			break
		}
	}
	if !audOK {
		log.Printf("⚠️ Token Google avec aud inconnu: %s", tokenInfo.Aud)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google non destiné à cette application"})
		return
	}

	if tokenInfo.Email == "" || tokenInfo.EmailVerified != "true" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email Google non vérifié"})
		return
	}

	user, err := findOrCreateOAuthUser("google", goth.User{
		Email:  tokenInfo.Email,
		Name:   tokenInfo.Name,
		UserID: tokenInfo.Sub,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil,
		gin.H{"provider": "google", "mobile": true})

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// GoogleMobileExchange échange un code d'autorisation contre un token
// (flux PKCE côté app, l'échange se fait côté API)
// POST /api/auth/google/exchange { "code": "..." }
func GoogleMobileExchange(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code requis"})
		return
	}

	provider := &auth.OAuthProvider{Name: "google", Config: config.GoogleOAuthConfig}

	oauthToken, err := provider.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		log.Printf("❌ Erreur échange code Google: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code d'autorisation invalide"})
		return
	}

	idToken, ok := oauthToken.Extra("id_token").(string)
	if !ok || idToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "id_token absent de la réponse Google"})
		return
	}

	resp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken))
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}
	defer resp.Body.Close()

	var tokenInfo struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Sub   string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil || tokenInfo.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}

	user, err := findOrCreateOAuthUser("google", goth.User{
		Email:  tokenInfo.Email,
		Name:   tokenInfo.Name,
		UserID: tokenInfo.Sub,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID, "email": user.Email, "role": user.Role})
}

// FacebookMobileLogin vérifie un access_token Facebook obtenu par l'app mobile
// POST /api/auth/facebook/mobile { "access_token": "..." }
func FacebookMobileLogin(c *gin.Context) {
	var req struct {
		AccessToken string `json:"access_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token requis"})
		return
	}

	resp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + url.QueryEscape(req.AccessToken))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Facebook invalide"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Facebook invalide"})
		return
	}

	var fbUser struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fbUser); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Réponse Facebook invalide"})
		return
	}

	if fbUser.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Votre compte Facebook n'a pas d'email associé"})
		return
	}

	user, err := findOrCreateOAuthUser("facebook", goth.User{
		Email:  fbUser.Email,
		Name:   fbUser.Name,
		UserID: fbUser.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil,
		gin.H{"provider": "facebook", "mobile": true})

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}
