package utils

import (
	"fmt"
	"log"

	"lokroom_back_end/internal/models"
)

// SendBookingStatusEmail envoie un email de notification de changement de statut
func SendBookingStatusEmail(booking models.Booking, userEmail string, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(booking, newStatus)

	err := SendConfirmationEmail(userEmail, subject, html, nil)
	if err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "📋 Demande de réservation reçue - Lok'Room"
	case models.BookingStatusConfirmed:
		return "✅ Réservation confirmée - Lok'Room"
	case models.BookingStatusCancelled:
		return "❌ Réservation annulée - Lok'Room"
	case models.BookingStatusCompleted:
		return "🎉 Séjour terminé - Lok'Room"
	default:
		return "📋 Mise à jour de votre réservation - Lok'Room"
	}
}

func generateStatusEmailHTML(booking models.Booking, status string) string {
	statusMessage := getStatusMessage(status)
	statusIcon := getStatusIcon(status)
	statusColor := getStatusColor(status)

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Mise à jour de réservation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f5f5f5;">
    <table role="presentation" style="width: 100%%; border-collapse: collapse; background-color: #f5f5f5;">
        <tr>
            <td style="padding: 40px 20px;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
                    <!-- Header -->
                    <tr>
                        <td style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 40px 30px; text-align: center; border-radius: 12px 12px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 28px; font-weight: 600;">
                                %s Lok'Room
                            </h1>
                            <p style="margin: 10px 0 0 0; color: #ffffff; font-size: 16px; opacity: 0.9;">
                                Mise à jour de votre réservation
                            </p>
                        </td>
                    </tr>

                    <!-- Status Badge -->
                    <tr>
                        <td style="padding: 30px 30px 0 30px; text-align: center;">
                            <div style="display: inline-block; padding: 12px 24px; background-color: %s; color: #ffffff; border-radius: 25px; font-weight: 600; font-size: 14px; text-transform: uppercase; letter-spacing: 0.5px;">
                                %s %s
                            </div>
                        </td>
                    </tr>

                    <!-- Content -->
                    <tr>
                        <td style="padding: 30px;">
                            <p style="margin: 0 0 20px 0; color: #333333; font-size: 16px; line-height: 1.6;">
                                %s
                            </p>

                            <!-- Booking Info Box -->
                            <table role="presentation" style="width: 100%%; border-collapse: collapse; background-color: #f8f9fa; border-radius: 8px; margin: 20px 0;">
                                <tr>
                                    <td style="padding: 20px;">
                                        <h3 style="margin: 0 0 15px 0; color: #333333; font-size: 18px; font-weight: 600;">
                                            🏠 Détails de la réservation
                                        </h3>
                                        <table role="presentation" style="width: 100%%; border-collapse: collapse;">
                                            <tr>
                                                <td style="padding: 8px 0; color: #666666; font-size: 14px;">
                                                    <strong style="color: #333333;">Numéro de réservation:</strong>
                                                </td>
                                                <td style="padding: 8px 0; color: #333333; font-size: 14px; text-align: right;">
                                                    #%s
                                                </td>
                                            </tr>
                                            <tr>
                                                <td style="padding: 8px 0; color: #666666; font-size: 14px;">
                                                    <strong style="color: #333333;">Dates:</strong>
                                                </td>
                                                <td style="padding: 8px 0; color: #333333; font-size: 14px; text-align: right;">
                                                    %s → %s
                                                </td>
                                            </tr>
                                            <tr>
                                                <td style="padding: 8px 0; color: #666666; font-size: 14px;">
                                                    <strong style="color: #333333;">Montant total:</strong>
                                                </td>
                                                <td style="padding: 8px 0; color: #333333; font-size: 14px; text-align: right; font-weight: 600;">
                                                    %.2f %s
                                                </td>
                                            </tr>
                                            <tr>
                                                <td style="padding: 8px 0; color: #666666; font-size: 14px;">
                                                    <strong style="color: #333333;">Statut:</strong>
                                                </td>
                                                <td style="padding: 8px 0; color: %s; font-size: 14px; text-align: right; font-weight: 600;">
                                                    %s
                                                </td>
                                            </tr>
                                        </table>
                                    </td>
                                </tr>
                            </table>

                            <p style="margin: 20px 0 0 0; color: #666666; font-size: 14px; line-height: 1.6;">
                                Vous avez des questions ? Notre équipe support est disponible 7j/7 pour vous aider.
                            </p>
                        </td>
                    </tr>

                    <!-- Footer -->
                    <tr>
                        <td style="padding: 30px; background-color: #f8f9fa; border-radius: 0 0 12px 12px; text-align: center;">
                            <p style="margin: 0 0 10px 0; color: #999999; font-size: 12px;">
                                © 2026 Lok'Room - Tous droits réservés
                            </p>
                            <p style="margin: 0; color: #999999; font-size: 12px;">
                                Cet email a été envoyé automatiquement, merci de ne pas y répondre.
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`, statusIcon, statusColor, statusIcon, status, statusMessage,
		booking.ID.String()[:8],
		booking.StartDate.Format("02/01/2006"), booking.EndDate.Format("02/01/2006"),
		float64(booking.ChargeCents)/100, booking.Currency,
		statusColor, status)

	return html
}

func getStatusMessage(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "Votre demande de réservation a bien été reçue. Elle sera confirmée dès réception du paiement."
	case models.BookingStatusConfirmed:
		return "Votre paiement a été confirmé avec succès. Votre réservation est validée, bon séjour !"
	case models.BookingStatusCancelled:
		return "Votre réservation a été annulée. Si un remboursement s'applique, il sera crédité sous 5-10 jours ouvrés."
	case models.BookingStatusCompleted:
		return "Votre séjour est terminé. Vous avez 14 jours pour laisser un avis sur l'espace."
	default:
		return "Le statut de votre réservation a été mis à jour."
	}
}

func getStatusIcon(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "📋"
	case models.BookingStatusConfirmed:
		return "✅"
	case models.BookingStatusCancelled:
		return "❌"
	case models.BookingStatusCompleted:
		return "🎉"
	default:
		return "📋"
	}
}

func getStatusColor(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "#f59e0b" // Orange
	case models.BookingStatusConfirmed:
		return "#10b981" // Green
	case models.BookingStatusCancelled:
		return "#ef4444" // Red
	case models.BookingStatusCompleted:
		return "#8b5cf6" // Purple
	default:
		return "#6b7280" // Gray
	}
}

// SendWelcomeEmail envoie un email de bienvenue
func SendWelcomeEmail(userEmail, userName string) error {
	subject := "🎉 Bienvenue sur Lok'Room !"

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .cta-button { display: inline-block; padding: 15px 30px; background: #667eea; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎉 Bienvenue %s !</h1>
        </div>
        <div class="content">
            <p>Merci de vous être inscrit sur Lok'Room, la plateforme de location d'espaces entre particuliers.</p>

            <p>Appartements, bureaux, studios photo ou places de parking : trouvez l'espace qu'il vous faut, à l'heure ou à la nuit.</p>

            <a href="#" class="cta-button">Explorer les espaces</a>

            <h3>Comment ça marche :</h3>
            <ul>
                <li>✅ Réservez en quelques clics, paiement sécurisé</li>
                <li>✅ Annulation gratuite jusqu'à 7 jours avant l'arrivée</li>
                <li>✅ Vous avez un espace ? Publiez votre annonce et devenez hôte</li>
                <li>✅ Support client 7j/7</li>
            </ul>
        </div>
    </div>
</body>
</html>
`, userName)

	return SendConfirmationEmail(userEmail, subject, html, nil)
}

// SendPayoutEmail notifie l'hôte qu'un versement a été crédité sur son wallet
func SendPayoutEmail(userEmail string, bookingID string, amountCents int64, currency string) error {
	subject := "💰 Versement crédité - Lok'Room"

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #10b981 0%%, #059669 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .amount { font-size: 36px; font-weight: bold; color: #047857; text-align: center; margin: 20px 0; }
        .info-box { background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 Versement crédité</h1>
        </div>
        <div class="content">
            <p>Bonne nouvelle ! Le montant de votre réservation a été crédité sur votre wallet Lok'Room.</p>

            <div class="amount">%.2f %s</div>

            <div class="info-box">
                <p><strong>Réservation:</strong> #%s</p>
                <p>Vous pouvez demander un virement vers votre compte bancaire depuis votre espace hôte.</p>
            </div>
        </div>
    </div>
</body>
</html>
`, float64(amountCents)/100, currency, bookingID[:8])

	return SendConfirmationEmail(userEmail, subject, html, nil)
}
