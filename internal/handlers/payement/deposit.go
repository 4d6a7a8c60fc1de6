package payement

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

// holdDays lit la durée de hold Stripe (limite : 7 jours pour une
// autorisation sans capture)
func holdDays() int {
	raw := os.Getenv("STRIPE_HOLD_DAYS")
	if raw == "" {
		return 7
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > 7 {
		return 7
	}
	return v
}

// HoldDeposit pose une empreinte bancaire (autorisation sans capture) pour la
// caution demandée par l'hôte
func HoldDeposit(c *gin.Context) {
	userID := c.GetString("user_id")

	bookingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	b, err := loadBooking(bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if b.GuestID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}

	if b.Status != models.BookingStatusConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La caution ne peut être posée que sur une réservation confirmée"})
		return
	}

	// Montant de la caution défini par l'annonce
	listingsSession, err := database.GetListingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var depositCents int64
	if err := listingsSession.Query("SELECT deposit_cents FROM listings WHERE listing_id = ?", b.ListingID).Scan(&depositCents); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}

	if depositCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune caution demandée pour cet espace"})
		return
	}

	currency := "eur"
	if b.Currency == "CAD" {
		currency = "cad"
	}

	// capture_method=manual : l'argent est bloqué mais pas débité
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(depositCents),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id": b.ID.String(),
			"kind":       "security_deposit",
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe (caution):", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	depositID := gocql.TimeUUID()
	now := time.Now()
	expiresAt := now.Add(time.Duration(holdDays()) * 24 * time.Hour)

	err = session.Query(`
		INSERT INTO deposits (deposit_id, booking_id, amount_cents, currency, status, payment_intent_id,
			captured_amount_cents, capture_reason, damage_photos, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, depositID, b.ID, depositCents, b.Currency, models.DepositStatusHeld, intent.ID,
		int64(0), "", []string{}, expiresAt, now).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement caution: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement caution"})
		return
	}

	utils.LogAction(c, utils.ACTION_DEPOSIT_HOLD, utils.RESOURCE_DEPOSIT, depositID.String(), nil,
		gin.H{"amount_cents": depositCents, "booking_id": b.ID.String()})

	log.Printf("💳 Caution posée: %.2f %s sur %s (expire le %s)",
		float64(depositCents)/100, b.Currency, b.ID, expiresAt.Format("02/01/2006"))

	c.JSON(http.StatusCreated, gin.H{
		"deposit_id":   depositID.String(),
		"clientSecret": intent.ClientSecret,
		"expires_at":   expiresAt,
	})
}

// loadDeposit charge une caution et la réservation associée
func loadDeposit(depositID gocql.UUID) (*models.SecurityDeposit, *models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, nil, err
	}

	var d models.SecurityDeposit
	d.ID = depositID

	err = session.Query(`
		SELECT booking_id, amount_cents, currency, status, payment_intent_id,
			captured_amount_cents, capture_reason, damage_photos, expires_at, created_at
		FROM deposits WHERE deposit_id = ?
	`, depositID).Scan(&d.BookingID, &d.AmountCents, &d.Currency, &d.Status, &d.PaymentIntentID,
		&d.CapturedAmountCents, &d.CaptureReason, &d.DamagePhotos, &d.ExpiresAt, &d.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	b, err := loadBooking(d.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return &d, b, nil
}

// CaptureDeposit capture tout ou partie de la caution (hôte uniquement)
func CaptureDeposit(c *gin.Context) {
	userID := c.GetString("user_id")

	depositID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID caution invalide"})
		return
	}

	var req struct {
		AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
		Reason      string `json:"reason" binding:"required,min=10,max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	d, b, err := loadDeposit(depositID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Caution introuvable"})
		return
	}

	if b.HostID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seul l'hôte peut réclamer la caution"})
		return
	}

	if d.Status != models.DepositStatusHeld {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette caution n'est plus capturable"})
		return
	}

	if time.Now().After(d.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "L'autorisation a expiré, la caution ne peut plus être capturée"})
		return
	}

	if req.AmountCents > d.AmountCents {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le montant dépasse la caution posée"})
		return
	}

	captureParams := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(req.AmountCents),
	}

	if _, err := paymentintent.Capture(d.PaymentIntentID, captureParams); err != nil {
		log.Println("❌ Erreur capture Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur capture Stripe"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	err = session.Query(`
		UPDATE deposits SET status = ?, captured_amount_cents = ?, capture_reason = ?, captured_at = ?
		WHERE deposit_id = ?
	`, models.DepositStatusCaptured, req.AmountCents, req.Reason, now, d.ID).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour caution: %v", err)
	}

	// Créditer le montant capturé sur le wallet hôte
	captured := *b
	captured.HostPayoutCents = req.AmountCents
	if err := creditHostWallet(&captured, "deposit_capture:"+d.PaymentIntentID); err != nil {
		log.Println("❌ Erreur crédit wallet (caution):", err)
	}

	utils.LogAction(c, utils.ACTION_DEPOSIT_CAPTURE, utils.RESOURCE_DEPOSIT, d.ID.String(), nil,
		gin.H{"amount_cents": req.AmountCents, "reason": req.Reason})

	log.Printf("💳 Caution capturée: %.2f %s sur %s", float64(req.AmountCents)/100, d.Currency, d.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":               "Caution capturée",
		"captured_amount_cents": req.AmountCents,
	})
}

// ReleaseDeposit relâche la caution sans rien capturer
func ReleaseDeposit(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	depositID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID caution invalide"})
		return
	}

	d, b, err := loadDeposit(depositID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Caution introuvable"})
		return
	}

	if b.HostID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seul l'hôte peut relâcher la caution"})
		return
	}

	if d.Status != models.DepositStatusHeld {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette caution n'est plus active"})
		return
	}

	if _, err := paymentintent.Cancel(d.PaymentIntentID, nil); err != nil {
		log.Println("❌ Erreur annulation autorisation Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation autorisation"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	err = session.Query(`
		UPDATE deposits SET status = ?, released_at = ? WHERE deposit_id = ?
	`, models.DepositStatusReleased, now, d.ID).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour caution: %v", err)
	}

	utils.LogAction(c, utils.ACTION_DEPOSIT_RELEASE, utils.RESOURCE_DEPOSIT, d.ID.String(), nil, nil)

	log.Printf("✅ Caution relâchée: %s", d.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Caution relâchée"})
}

// ExpireDeposits balaie les cautions dont l'autorisation a dépassé la limite
// Stripe et les marque expirées. Appelé par un cron externe.
// POST /api/admin/deposits/expire
func ExpireDeposits(c *gin.Context) {
	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	iter := session.Query("SELECT deposit_id, status, payment_intent_id, expires_at FROM deposits").Iter()

	expired := 0
	var (
		depositID       gocql.UUID
		status          string
		paymentIntentID string
		expiresAt       time.Time
	)
	for iter.Scan(&depositID, &status, &paymentIntentID, &expiresAt) {
		if status != models.DepositStatusHeld || now.Before(expiresAt) {
			continue
		}

		// L'autorisation est probablement déjà tombée côté Stripe ; l'annulation
		// explicite est un filet de sécurité, son échec n'est pas bloquant
		if _, err := paymentintent.Cancel(paymentIntentID, nil); err != nil {
			log.Printf("⚠️ Annulation autorisation expirée %s: %v", depositID, err)
		}

		if err := session.Query("UPDATE deposits SET status = ? WHERE deposit_id = ?",
			models.DepositStatusExpired, depositID).Exec(); err != nil {
			log.Printf("❌ Erreur expiration caution %s: %v", depositID, err)
			continue
		}
		expired++
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture cautions"})
		return
	}

	if expired > 0 {
		log.Printf("🪣 %d caution(s) expirée(s)", expired)
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

// UploadDamagePhotos ajoute des photos de dégâts à une caution (hôte)
func UploadDamagePhotos(c *gin.Context) {
	userID := c.GetString("user_id")

	depositID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID caution invalide"})
		return
	}

	d, b, err := loadDeposit(depositID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Caution introuvable"})
		return
	}

	if b.HostID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seul l'hôte peut ajouter des photos de dégâts"})
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

	urls := d.DamagePhotos
	for _, file := range files {
		url, err := services.UploadDamagePhoto(d.ID.String(), file)
		if err != nil {
			log.Printf("❌ Erreur upload photo dégâts: %v", err)
			continue
		}
		urls = append(urls, url)
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE deposits SET damage_photos = ? WHERE deposit_id = ?", urls, d.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": urls, "count": len(urls)})
}
