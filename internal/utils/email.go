package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"lokroom_back_end/internal/models"
)

func SendConfirmationEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@lokroom.com"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("recu_lokroom.pdf", bytes.NewReader(pdfAttachment))
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "ssl0.ovh.net"
	}

	client, err := mail.NewClient(smtpHost,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateBookingConfirmationHTML génère le HTML de confirmation de réservation
func GenerateBookingConfirmationHTML(booking models.Booking, listingTitle string) string {
	linesHTML := fmt.Sprintf(`
		<tr>
			<td>Prix (%d nuits)</td>
			<td>%.2f€</td>
		</tr>
		<tr>
			<td>Frais de service Lok'Room</td>
			<td>%.2f€</td>
		</tr>`,
		booking.Nights,
		float64(booking.BasePriceCents)/100,
		float64(booking.GuestFeeCents)/100)

	if booking.TaxOnFeeCents > 0 {
		linesHTML += fmt.Sprintf(`
		<tr>
			<td>Taxes sur les frais</td>
			<td>%.2f€</td>
		</tr>`, float64(booking.TaxOnFeeCents)/100)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de réservation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre réservation</h2>
		<p>Bonjour,</p>
		<p>Votre réservation pour <strong>%s</strong> a été confirmée avec succès.</p>
		<p>Du %s au %s</p>

		<h3>Détail du prix</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p>Votre reçu avec le QR code d'arrivée est en pièce jointe.</p>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Lok'Room</strong>
		</p>
	</div>
</body>
</html>`,
		listingTitle,
		booking.StartDate.Format("02/01/2006"),
		booking.EndDate.Format("02/01/2006"),
		linesHTML,
		float64(booking.ChargeCents)/100)
}

// GenerateReceiptPDF génère le reçu PDF d'une réservation (rendu via la page front)
func GenerateReceiptPDF(booking models.Booking) ([]byte, error) {
	bookingID := booking.ID.String()
	frontURL := GetFrontendReceiptBaseURL()

	// QR code d'arrivée présenté à l'hôte au check-in
	qrBase64, err := GenerateCheckinQR(bookingID)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}

	return RenderReceiptPDF(frontURL, bookingID, qrBase64)
}
