package payement

import (
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/services"
)

// loadBooking charge une réservation complète depuis ScyllaDB
func loadBooking(id gocql.UUID) (*models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return nil, err
	}

	var b models.Booking
	b.ID = id

	var cancelledAt *time.Time

	err = session.Query(`
		SELECT listing_id, guest_id, host_id, start_date, end_date, nights, currency,
			base_price_cents, guest_fee_cents, tax_on_fee_cents, charge_cents, host_payout_cents,
			status, payment_intent_id, refund_amount_cents, cancelled_at, cancelled_by, expires_at, created_at
		FROM bookings WHERE booking_id = ?
	`, id).Scan(
		&b.ListingID, &b.GuestID, &b.HostID, &b.StartDate, &b.EndDate, &b.Nights, &b.Currency,
		&b.BasePriceCents, &b.GuestFeeCents, &b.TaxOnFeeCents, &b.ChargeCents, &b.HostPayoutCents,
		&b.Status, &b.PaymentIntentID, &b.RefundAmountCents, &cancelledAt, &b.CancelledBy, &b.ExpiresAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}

	b.CancelledAt = cancelledAt
	return &b, nil
}

// listingTitleFor récupère le titre de l'annonce (pour les emails)
func listingTitleFor(listingID gocql.UUID) string {
	session, err := database.GetListingsSession()
	if err != nil {
		return "votre espace"
	}

	var title string
	if err := session.Query("SELECT title FROM listings WHERE listing_id = ?", listingID).Scan(&title); err != nil {
		return "votre espace"
	}
	return title
}

// userEmailFor résout l'email d'un utilisateur (pour les notifications webhook,
// où il n'y a pas de contexte de session)
func userEmailFor(userID string) string {
	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return ""
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return ""
	}

	var email string
	if err := session.Query("SELECT email FROM users WHERE user_id = ?", uid).Scan(&email); err != nil {
		return ""
	}
	return email
}

// claimReference réserve une référence de ligne wallet (clé d'idempotence).
// Retourne false si la référence a déjà été traitée.
func claimReference(session *gocql.Session, reference string, entryID gocql.UUID) (bool, error) {
	var existingRef string
	var existingEntry gocql.UUID

	applied, err := session.Query(`
		INSERT INTO wallet_entries_by_reference (reference, entry_id) VALUES (?, ?) IF NOT EXISTS
	`, reference, entryID).ScanCAS(&existingRef, &existingEntry)
	if err != nil {
		return false, err
	}
	return applied, nil
}

// writeWalletEntry insère la ligne du grand livre et met à jour le solde
func writeWalletEntry(session *gocql.Session, entry models.WalletEntry) error {
	if err := session.Query(`
		INSERT INTO wallet_entries (user_id, entry_id, booking_id, type, amount_cents, currency, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.ID, entry.BookingID, entry.Type, entry.AmountCents,
		entry.Currency, entry.Reference, entry.CreatedAt).Exec(); err != nil {
		return err
	}

	var balance int64
	err := session.Query("SELECT balance_cents FROM wallets WHERE user_id = ?", entry.UserID).Scan(&balance)
	if err != nil && err != gocql.ErrNotFound {
		return err
	}

	if entry.Type == models.WalletEntryCredit {
		balance += entry.AmountCents
	} else {
		balance -= entry.AmountCents
	}

	return session.Query(`
		INSERT INTO wallets (user_id, balance_cents, currency, updated_at) VALUES (?, ?, ?, ?)
	`, entry.UserID, balance, entry.Currency, time.Now()).Exec()
}

// creditHostWallet crédite le payout hôte. Idempotent via la référence.
func creditHostWallet(b *models.Booking, reference string) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	entryID := gocql.TimeUUID()
	claimed, err := claimReference(session, reference, entryID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("🔁 Crédit wallet déjà traité (%s), on ignore.", reference)
		return nil
	}

	entry := models.WalletEntry{
		ID:          entryID,
		UserID:      b.HostID,
		BookingID:   b.ID,
		Type:        models.WalletEntryCredit,
		AmountCents: b.HostPayoutCents,
		Currency:    b.Currency,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}

	if err := writeWalletEntry(session, entry); err != nil {
		return err
	}

	log.Printf("💰 Wallet hôte crédité: %.2f %s pour %s (%s)",
		float64(entry.AmountCents)/100, entry.Currency, b.HostID, reference)

	go services.Notify(b.HostID, models.NotificationPayout,
		fmt.Sprintf("%.2f %s crédités sur votre wallet.", float64(entry.AmountCents)/100, entry.Currency))

	return nil
}

// debitHostWallet débite le wallet hôte après un remboursement guest.
// Le débit est plafonné au payout initialement crédité.
func debitHostWallet(b *models.Booking, refundedCents int64, reference string) error {
	session, err := database.GetBookingsSession()
	if err != nil {
		return err
	}

	amount := refundedCents
	if amount > b.HostPayoutCents {
		amount = b.HostPayoutCents
	}
	if amount <= 0 {
		return nil
	}

	entryID := gocql.TimeUUID()
	claimed, err := claimReference(session, reference, entryID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("🔁 Débit wallet déjà traité (%s), on ignore.", reference)
		return nil
	}

	entry := models.WalletEntry{
		ID:          entryID,
		UserID:      b.HostID,
		BookingID:   b.ID,
		Type:        models.WalletEntryDebit,
		AmountCents: amount,
		Currency:    b.Currency,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}

	if err := writeWalletEntry(session, entry); err != nil {
		return err
	}

	log.Printf("💸 Wallet hôte débité: %.2f %s pour %s (%s)",
		float64(amount)/100, entry.Currency, b.HostID, reference)
	return nil
}
