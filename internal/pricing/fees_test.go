package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateApplyTo(t *testing.T) {
	tests := []struct {
		name     string
		rate     Rate
		amount   int64
		expected int64
	}{
		{"12% de 20000", 12000, 20000, 2400},
		{"11.5% de 10000", 11500, 10000, 1150},
		{"14.975% de 1000 arrondi demi-cent sup", 14975, 1000, 150}, // 149.75 -> 150
		{"taux nul", 0, 10000, 0},
		{"montant nul", 11500, 0, 0},
		{"montant négatif clampe à zéro", 11500, -500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rate.ApplyTo(tt.amount))
		})
	}
}

func TestInferRegion(t *testing.T) {
	tests := []struct {
		name     string
		currency Currency
		country  string
		province string
		expected Region
	}{
		{"EUR force FRANCE", CurrencyEUR, "Canada", "QC", RegionFrance},
		{"CAD Québec", CurrencyCAD, "Canada", "QC", RegionQC},
		{"CAD province en minuscules", CurrencyCAD, "Canada", "bc", RegionBC},
		{"CAD atlantique NB", CurrencyCAD, "Canada", "NB", RegionATL},
		{"CAD atlantique PE", CurrencyCAD, "Canada", "PE", RegionATL},
		{"CAD sans province fallback QC", CurrencyCAD, "Canada", "", RegionQC},
		{"CAD code pays court", CurrencyCAD, "ca", "", RegionQC},
		{"inconnu fallback FRANCE", CurrencyCAD, "Belgique", "", RegionFrance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferRegion(tt.currency, tt.country, tt.province))
		})
	}
}

func TestResolveFeeScheduleTiers(t *testing.T) {
	// Tranche < 20€ en France
	s := ResolveFeeSchedule(FeeInput{PriceCents: 1500, Currency: CurrencyEUR, Region: RegionFrance})
	assert.Equal(t, Rate(11500), s.GuestFeeRate)
	assert.Equal(t, Rate(3000), s.HostFeeRate)
	assert.Equal(t, Rate(20000), s.TaxRateOnFee)

	// Dernière tranche (>= 300€)
	s = ResolveFeeSchedule(FeeInput{PriceCents: 50000, Currency: CurrencyEUR, Region: RegionFrance})
	assert.Equal(t, Rate(7500), s.GuestFeeRate)
	assert.Equal(t, Rate(2000), s.HostFeeRate)

	// Québec : TVQ+TPS = 14.975% exactement représentée
	s = ResolveFeeSchedule(FeeInput{PriceCents: 10000, Currency: CurrencyCAD, Region: RegionQC})
	assert.Equal(t, Rate(14975), s.TaxRateOnFee)
	assert.Equal(t, RegionQC, s.Region)
}

func TestResolveFeeScheduleFailOpen(t *testing.T) {
	// Région inconnue : jamais d'erreur, barème utilisable
	s := ResolveFeeSchedule(FeeInput{PriceCents: 10000, Currency: CurrencyCAD, Region: Region("YT")})
	require.Greater(t, int64(s.GuestFeeRate), int64(0))
	require.Greater(t, int64(s.HostFeeRate), int64(0))
	require.Greater(t, int64(s.TaxRateOnFee), int64(0))
}

func TestComputeFeesConservation(t *testing.T) {
	inputs := []FeeInput{
		{PriceCents: 1500, Currency: CurrencyEUR, Region: RegionFrance},
		{PriceCents: 10000, Currency: CurrencyEUR, Region: RegionFrance},
		{PriceCents: 33333, Currency: CurrencyCAD, Region: RegionQC},
		{PriceCents: 99999, Currency: CurrencyCAD, Region: RegionATL},
		{PriceCents: 0, Currency: CurrencyEUR, Region: RegionFrance},
	}

	for _, in := range inputs {
		fees := ComputeFees(in)

		// charge = base + frais guest + taxes, jamais d'écart d'un cent
		assert.Equal(t, in.PriceCents+fees.GuestFeeCents+fees.TaxOnGuestFeeCents, fees.ChargeCents)

		// aucune sortie négative
		assert.GreaterOrEqual(t, fees.HostFeeCents, int64(0))
		assert.GreaterOrEqual(t, fees.GuestFeeCents, int64(0))
		assert.GreaterOrEqual(t, fees.TaxOnGuestFeeCents, int64(0))
		assert.GreaterOrEqual(t, fees.HostPayoutCents, int64(0))

		// payout hôte = base - frais hôte
		if in.PriceCents > 0 {
			assert.Equal(t, in.PriceCents-fees.HostFeeCents, fees.HostPayoutCents)
		}
	}
}

func TestComputeFeesIdempotent(t *testing.T) {
	in := FeeInput{PriceCents: 12345, Currency: CurrencyCAD, Region: RegionON}
	first := ComputeFees(in)
	second := ComputeFees(in)
	assert.Equal(t, first, second)
}
