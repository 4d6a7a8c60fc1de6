package payement

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
	"lokroom_back_end/internal/utils"
)

// ✅ Crée un PaymentIntent Stripe pour payer une réservation PENDING
func PayBooking(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié ou e-mail manquant"})
		return
	}

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

	if b.Status != models.BookingStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette réservation n'est pas en attente de paiement"})
		return
	}

	if time.Now().After(b.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette réservation a expiré, veuillez la recréer"})
		return
	}

	currency := "eur"
	if b.Currency == "CAD" {
		currency = "cad"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(b.ChargeCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id": b.ID.String(),
			"user_id":    userID,
			"email":      email,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f %s) pour %s",
		intent.ID, float64(b.ChargeCents)/100, b.Currency, email)

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
	})
}

// ✅ Webhook Stripe
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

// ✅ Traitement de l'événement Stripe
func handleStripeEvent(event stripe.Event) {
	switch event.Type {
	case "payment_intent.succeeded":
		handlePaymentSucceeded(event)
	case "charge.refunded":
		handleChargeRefunded(event)
	default:
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
	}
}

// handlePaymentSucceeded confirme la réservation, crédite le wallet hôte et
// envoie le reçu. Idempotent : rejouer l'événement est sans effet.
func handlePaymentSucceeded(event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}
	log.Printf("🧠 PaymentIntent reçu : %s", pi.ID)

	bookingIDStr := pi.Metadata["booking_id"]
	userEmail := pi.Metadata["email"]

	if bookingIDStr == "" {
		log.Println("⚠️ Métadonnées incomplètes (booking_id manquant)")
		return
	}

	bookingID, err := gocql.ParseUUID(bookingIDStr)
	if err != nil {
		log.Println("❌ booking_id invalide dans les métadonnées:", bookingIDStr)
		return
	}

	b, err := loadBooking(bookingID)
	if err != nil {
		log.Printf("❌ Réservation introuvable pour le paiement %s: %v", pi.ID, err)
		return
	}

	// Idempotence : déjà confirmée → on ignore
	if b.Status == models.BookingStatusConfirmed {
		log.Println("🔁 Réservation déjà confirmée, on ignore.")
		return
	}
	if b.Status != models.BookingStatusPending {
		log.Printf("⚠️ Paiement reçu pour une réservation %s (statut %s), ignoré", b.ID, b.Status)
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		log.Println("❌ Erreur connexion base de données:", err)
		return
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		UPDATE bookings SET status = ?, payment_intent_id = ? WHERE booking_id = ?
	`, models.BookingStatusConfirmed, pi.ID, b.ID)
	batch.Query(`
		UPDATE bookings_by_listing SET status = ? WHERE listing_id = ? AND booking_id = ?
	`, models.BookingStatusConfirmed, b.ListingID, b.ID)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Println("❌ Erreur confirmation réservation:", err)
		return
	}

	log.Printf("✅ Réservation confirmée: %s", b.ID)

	// Créditer le wallet hôte, clé d'idempotence = credit:<payment_intent_id>
	reference := "credit:" + pi.ID
	if err := creditHostWallet(b, reference); err != nil {
		log.Println("❌ Erreur crédit wallet hôte:", err)
	}

	b.Status = models.BookingStatusConfirmed
	b.PaymentIntentID = pi.ID

	// Notifications in-app guest + hôte
	go func() {
		title := listingTitleFor(b.ListingID)
		services.Notify(b.GuestID, models.NotificationBookingConfirmed,
			"Votre réservation « "+title+" » est confirmée.")
		services.Notify(b.HostID, models.NotificationBookingConfirmed,
			"La réservation de votre espace « "+title+" » est confirmée.")
	}()

	// Générer le reçu PDF et envoyer l'e-mail de confirmation
	if userEmail != "" {
		go func() {
			listingTitle := listingTitleFor(b.ListingID)
			html := utils.GenerateBookingConfirmationHTML(*b, listingTitle)

			pdf, err := utils.GenerateReceiptPDF(*b)
			if err != nil {
				log.Println("❌ Erreur génération PDF :", err)
				pdf = nil
			}

			if err := utils.SendConfirmationEmail(userEmail, "Confirmation de votre réservation Lok'Room", html, pdf); err != nil {
				log.Println("❌ Erreur envoi e-mail confirmation :", err)
			} else {
				log.Println("📧 E-mail de confirmation envoyé à", userEmail)
			}
		}()
	}
}

// handleChargeRefunded enregistre le remboursement côté wallet hôte.
// Le montant débité est la part payout du remboursement, jamais plus que ce
// que l'hôte a reçu.
func handleChargeRefunded(event stripe.Event) {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		log.Println("❌ Erreur décodage Charge:", err)
		return
	}

	if ch.PaymentIntent == nil {
		log.Println("⚠️ Charge sans PaymentIntent, ignorée")
		return
	}

	bookingIDStr := ch.Metadata["booking_id"]
	if bookingIDStr == "" {
		// métadonnées posées sur le PaymentIntent, pas sur la charge
		pi, err := paymentintent.Get(ch.PaymentIntent.ID, nil)
		if err != nil {
			log.Println("❌ Impossible de récupérer le PaymentIntent:", err)
			return
		}
		bookingIDStr = pi.Metadata["booking_id"]
	}

	if bookingIDStr == "" {
		log.Println("⚠️ Remboursement sans booking_id, ignoré")
		return
	}

	bookingID, err := gocql.ParseUUID(bookingIDStr)
	if err != nil {
		log.Println("❌ booking_id invalide:", bookingIDStr)
		return
	}

	b, err := loadBooking(bookingID)
	if err != nil {
		log.Printf("❌ Réservation introuvable pour le remboursement: %v", err)
		return
	}

	// Débiter le wallet hôte du payout perdu, clé = debit:<charge_id>
	reference := "debit:" + ch.ID
	if err := debitHostWallet(b, ch.AmountRefunded, reference); err != nil {
		log.Println("❌ Erreur débit wallet hôte:", err)
	}

	// Synchroniser la réservation avec Stripe : AmountRefunded est cumulatif
	// sur la charge, l'écrire tel quel est donc idempotent. Couvre aussi les
	// remboursements lancés depuis le dashboard Stripe, qui n'ont jamais
	// transité par l'API.
	session, err := database.GetBookingsSession()
	if err != nil {
		log.Println("❌ Erreur connexion base de données:", err)
		return
	}

	if refundClosesBooking(b.Status, b.ChargeCents, ch.AmountRefunded) {
		now := time.Now()
		batch := session.NewBatch(gocql.LoggedBatch)
		batch.Query(`
			UPDATE bookings SET status = ?, cancelled_at = ?, cancelled_by = ?, refund_amount_cents = ?
			WHERE booking_id = ?
		`, models.BookingStatusCancelled, now, "stripe", ch.AmountRefunded, b.ID)
		batch.Query(`
			UPDATE bookings_by_listing SET status = ? WHERE listing_id = ? AND booking_id = ?
		`, models.BookingStatusCancelled, b.ListingID, b.ID)

		if err := session.ExecuteBatch(batch); err != nil {
			log.Println("❌ Erreur annulation après remboursement intégral:", err)
			return
		}

		log.Printf("✅ Réservation annulée après remboursement intégral: %s", b.ID)

		go services.Notify(b.GuestID, models.NotificationBookingCancelled,
			"Votre réservation a été annulée et intégralement remboursée.")

		// Prévenir le guest (asynchrone)
		if email := userEmailFor(b.GuestID); email != "" {
			go func() {
				cancelled := *b
				cancelled.Status = models.BookingStatusCancelled
				cancelled.RefundAmountCents = ch.AmountRefunded
				if err := utils.SendBookingStatusEmail(cancelled, email, models.BookingStatusCancelled); err != nil {
					log.Printf("❌ Erreur envoi email annulation: %v", err)
				}
			}()
		}
	} else if ch.AmountRefunded != b.RefundAmountCents {
		if err := session.Query(`
			UPDATE bookings SET refund_amount_cents = ? WHERE booking_id = ?
		`, ch.AmountRefunded, b.ID).Exec(); err != nil {
			log.Println("❌ Erreur mise à jour montant remboursé:", err)
		}
	}

	log.Printf("💰 Remboursement enregistré: %.2f %s sur %s",
		float64(ch.AmountRefunded)/100, b.Currency, b.ID)
}

// refundClosesBooking indique si le remboursement cumulé couvre la totalité
// du montant débité au guest, auquel cas la réservation passe en CANCELLED.
// Une réservation déjà annulée ne transite plus.
func refundClosesBooking(status string, chargeCents, amountRefundedCents int64) bool {
	if status == models.BookingStatusCancelled {
		return false
	}
	return chargeCents > 0 && amountRefundedCents >= chargeCents
}
