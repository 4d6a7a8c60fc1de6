package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserByEmail    *gocql.Query
	stmtGetUserByID       *gocql.Query
	stmtInsertUser        *gocql.Query
	stmtInsertUserByEmail *gocql.Query

	stmtGetListingByID *gocql.Query
	stmtGetBookingByID *gocql.Query
	stmtGetWalletByUser *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (users): %v", err)
			return
		}

		// Requête pour récupérer user_id par email
		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Requête pour récupérer un utilisateur par ID
		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, stripe_account_id, created_at
			FROM users WHERE user_id = ?`)

		// Requête pour insérer un utilisateur
		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, role, provider, stripe_account_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		// Requête pour insérer dans users_by_email
		stmtInsertUserByEmail = usersSession.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		listingsSession, err := GetListingsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (listings): %v", err)
			return
		}

		// Requête chaude : annonce par ID (preview, création de réservation)
		stmtGetListingByID = listingsSession.Query(`SELECT owner_id, title, description, kind, price_cents, currency, country, province, city, status, photos, deposit_cents, created_at
			FROM listings WHERE listing_id = ?`)

		bookingsSession, err := GetBookingsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (bookings): %v", err)
			return
		}

		// Requête chaude : réservation par ID
		stmtGetBookingByID = bookingsSession.Query(`SELECT listing_id, guest_id, host_id, start_date, end_date, nights, currency, base_price_cents, guest_fee_cents, tax_on_fee_cents, charge_cents, host_payout_cents, status, payment_intent_id, refund_amount_cents, cancelled_at, cancelled_by, expires_at, created_at
			FROM bookings WHERE booking_id = ?`)

		// Requête chaude : wallet d'un hôte
		stmtGetWalletByUser = bookingsSession.Query("SELECT balance_cents, currency, updated_at FROM wallets WHERE user_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}

func GetPreparedGetListingByID() *gocql.Query {
	return stmtGetListingByID
}

func GetPreparedGetBookingByID() *gocql.Query {
	return stmtGetBookingByID
}

func GetPreparedGetWalletByUser() *gocql.Query {
	return stmtGetWalletByUser
}
