package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokroom_back_end/internal/models"
	"lokroom_back_end/internal/pricing"
)

func TestParseBookingDates(t *testing.T) {
	start, end, nights, ok := parseBookingDates("2026-09-01", "2026-09-04")
	require.True(t, ok)
	assert.Equal(t, 3, nights)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), end)
}

func TestParseBookingDatesOneNight(t *testing.T) {
	_, _, nights, ok := parseBookingDates("2026-09-01", "2026-09-02")
	require.True(t, ok)
	assert.Equal(t, 1, nights)
}

func TestParseBookingDatesRejectsSameDay(t *testing.T) {
	_, _, _, ok := parseBookingDates("2026-09-01", "2026-09-01")
	assert.False(t, ok)
}

func TestParseBookingDatesRejectsReversed(t *testing.T) {
	_, _, _, ok := parseBookingDates("2026-09-04", "2026-09-01")
	assert.False(t, ok)
}

func TestParseBookingDatesRejectsBadFormat(t *testing.T) {
	_, _, _, ok := parseBookingDates("01/09/2026", "2026-09-04")
	assert.False(t, ok)

	_, _, _, ok = parseBookingDates("2026-09-01", "demain")
	assert.False(t, ok)
}

func TestBuildBreakdownForListingFrance(t *testing.T) {
	listing := &models.Listing{
		PriceCents: 10000, // 100 € la nuit
		Currency:   "EUR",
		Country:    "FR",
	}

	breakdown := buildBreakdownForListing(listing, 3)

	assert.Equal(t, int64(30000), breakdown.BasePriceCents)
	assert.Equal(t, pricing.CurrencyEUR, breakdown.Currency)
	// Conservation : base + frais + taxes = total
	assert.Equal(t, breakdown.BasePriceCents+breakdown.Fees.GuestFeeCents+breakdown.Fees.TaxOnGuestFeeCents,
		breakdown.TotalCents)
}

func TestBuildBreakdownForListingQuebec(t *testing.T) {
	listing := &models.Listing{
		PriceCents: 15000,
		Currency:   "CAD",
		Country:    "CA",
		Province:   "QC",
	}

	breakdown := buildBreakdownForListing(listing, 2)

	assert.Equal(t, int64(30000), breakdown.BasePriceCents)
	assert.Equal(t, pricing.CurrencyCAD, breakdown.Currency)
	// Le Québec taxe les frais de service (TPS + TVQ)
	assert.Greater(t, breakdown.Fees.TaxOnGuestFeeCents, int64(0))
}

func TestRoleForHostAndGuest(t *testing.T) {
	b := &models.Booking{GuestID: "guest-1", HostID: "host-1"}

	assert.Equal(t, pricing.RoleHost, roleFor("host-1", b))
	assert.Equal(t, pricing.RoleGuest, roleFor("guest-1", b))
	assert.Equal(t, pricing.RoleGuest, roleFor("autre", b))
}

func TestDecisionForFullRefundWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := &models.Booking{
		GuestID:       "guest-1",
		HostID:        "host-1",
		StartDate:     now.Add(10 * 24 * time.Hour),
		EndDate:       now.Add(13 * 24 * time.Hour),
		ChargeCents:   33000,
		GuestFeeCents: 2700,
		TaxOnFeeCents: 300,
		Currency:      "EUR",
	}

	decision := decisionFor("guest-1", b, now)

	require.True(t, decision.Allowed)
	assert.Equal(t, b.ChargeCents, decision.RefundAmountCents)
}

func TestCancellationRecipientAlwaysGuest(t *testing.T) {
	b := &models.Booking{GuestID: "guest-1", HostID: "host-1"}

	// Le guest annule : son email de session suffit
	email, needsLookup := cancellationRecipient("guest-1", "guest@lokroom.com", b)
	assert.False(t, needsLookup)
	assert.Equal(t, "guest@lokroom.com", email)

	// L'hôte annule : l'email de session est celui de l'hôte, il faut
	// résoudre celui du guest
	email, needsLookup = cancellationRecipient("host-1", "host@lokroom.com", b)
	assert.True(t, needsLookup)
	assert.Empty(t, email)
}
