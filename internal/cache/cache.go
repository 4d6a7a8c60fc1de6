package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ListingCacheTTL = 10 * time.Minute
)

// GetUserFromCache récupère un utilisateur depuis Redis ou ScyllaDB
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, err
	}

	var (
		email, name, role, provider, stripeAccountID string
		createdAt                                    time.Time
	)

	err = session.Query(`SELECT email, name, role, provider, stripe_account_id, created_at
		FROM users WHERE user_id = ?`, uid).Scan(
		&email, &name, &role, &provider, &stripeAccountID, &createdAt)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:              userID,
		Email:           email,
		Name:            name,
		Role:            role,
		Provider:        provider,
		StripeAccountID: stripeAccountID,
		CreatedAt:       createdAt,
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return user, nil
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}

// GetListingFromCache récupère une annonce depuis Redis ou ScyllaDB
func GetListingFromCache(listingID string) (*models.Listing, error) {
	ctx := context.Background()
	key := "listing:" + listingID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var listing models.Listing
		if json.Unmarshal([]byte(data), &listing) == nil {
			return &listing, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetListingsSession()
	if err != nil {
		return nil, err
	}

	id, err := gocql.ParseUUID(listingID)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	listing.ID = id

	err = session.Query(`SELECT owner_id, title, description, kind, price_cents, currency, country, province, city, status, photos, deposit_cents, created_at
		FROM listings WHERE listing_id = ?`, id).Scan(
		&listing.OwnerID, &listing.Title, &listing.Description, &listing.Kind,
		&listing.PriceCents, &listing.Currency, &listing.Country, &listing.Province,
		&listing.City, &listing.Status, &listing.Photos, &listing.DepositCents, &listing.CreatedAt)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(listing)
	database.Redis.Set(ctx, key, jsonData, ListingCacheTTL)

	return &listing, nil
}

// InvalidateListingCache invalide le cache d'une annonce
func InvalidateListingCache(listingID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "listing:"+listingID)
}
