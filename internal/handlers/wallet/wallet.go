package wallet

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/account"
	"github.com/stripe/stripe-go/v83/accountlink"
	"github.com/stripe/stripe-go/v83/loginlink"

	"lokroom_back_end/internal/cache"
	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/utils"
)

// GetWallet retourne le solde du wallet de l'hôte connecté
func GetWallet(c *gin.Context) {
	userID := c.GetString("user_id")

	var (
		balance   int64
		currency  string
		updatedAt time.Time
	)

	var err error
	if q := database.GetPreparedGetWalletByUser(); q != nil {
		err = q.Bind(userID).Scan(&balance, &currency, &updatedAt)
	} else {
		session, serr := database.GetBookingsSession()
		if serr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}
		err = session.Query("SELECT balance_cents, currency, updated_at FROM wallets WHERE user_id = ?", userID).
			Scan(&balance, &currency, &updatedAt)
	}
	if err == gocql.ErrNotFound {
		// Pas encore de wallet : solde zéro
		c.JSON(http.StatusOK, gin.H{"wallet": models.Wallet{UserID: userID, BalanceCents: 0, Currency: "EUR"}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": models.Wallet{
		UserID:       userID,
		BalanceCents: balance,
		Currency:     currency,
		UpdatedAt:    updatedAt,
	}})
}

// ListWalletEntries retourne le grand livre de l'hôte connecté
func ListWalletEntries(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT entry_id, booking_id, type, amount_cents, currency, reference, created_at
		FROM wallet_entries WHERE user_id = ?
	`, userID).Iter()

	entries := []models.WalletEntry{}
	var e models.WalletEntry
	e.UserID = userID
	for iter.Scan(&e.ID, &e.BookingID, &e.Type, &e.AmountCents, &e.Currency, &e.Reference, &e.CreatedAt) {
		entries = append(entries, e)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture grand livre"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// GetPayoutLink retourne un lien Stripe Express pour que l'hôte gère ses
// virements. Crée le compte Express au premier appel.
func GetPayoutLink(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Premier appel : créer le compte Express et lancer l'onboarding
	if user.StripeAccountID == "" {
		acctParams := &stripe.AccountParams{
			Type:  stripe.String(string(stripe.AccountTypeExpress)),
			Email: stripe.String(email),
			Metadata: map[string]string{
				"user_id": userID,
			},
		}

		acct, err := account.New(acctParams)
		if err != nil {
			log.Println("❌ Erreur création compte Express:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte de versement"})
			return
		}

		session, err := database.GetUsersSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		uid, _ := gocql.ParseUUID(userID)
		if err := session.Query("UPDATE users SET stripe_account_id = ? WHERE user_id = ?", acct.ID, uid).Exec(); err != nil {
			log.Printf("❌ Erreur enregistrement stripe_account_id: %v", err)
		}
		cache.InvalidateUserCache(userID)

		frontURL := os.Getenv("FRONTEND_URL")
		if frontURL == "" {
			frontURL = "http://localhost:3000"
		}

		linkParams := &stripe.AccountLinkParams{
			Account:    stripe.String(acct.ID),
			RefreshURL: stripe.String(frontURL + "/host/wallet"),
			ReturnURL:  stripe.String(frontURL + "/host/wallet"),
			Type:       stripe.String("account_onboarding"),
		}

		link, err := accountlink.New(linkParams)
		if err != nil {
			log.Println("❌ Erreur création lien onboarding:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création lien"})
			return
		}

		utils.LogAction(c, utils.ACTION_WALLET_PAYOUT, utils.RESOURCE_WALLET, userID, nil,
			gin.H{"stripe_account_id": acct.ID, "onboarding": true})

		c.JSON(http.StatusOK, gin.H{"url": link.URL, "onboarding": true})
		return
	}

	// Compte déjà créé : lien vers le dashboard Express
	link, err := loginlink.New(&stripe.LoginLinkParams{
		Account: stripe.String(user.StripeAccountID),
	})
	if err != nil {
		log.Println("❌ Erreur création lien Express:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création lien"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": link.URL, "onboarding": false})
}
