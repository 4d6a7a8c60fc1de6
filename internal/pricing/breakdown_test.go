package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBreakdownScenarioAirbnb(t *testing.T) {
	// 2 nuits à 100.00, frais guest 12%, pas de taxes
	schedule := FeeSchedule{
		GuestFeeRate: 12000,
		HostFeeRate:  3000,
		TaxRateOnFee: 0,
		Currency:     CurrencyEUR,
		Region:       RegionFrance,
	}

	b := BuildBreakdown(BreakdownInput{
		Nights:             2,
		PricePerNightCents: 10000,
		Currency:           CurrencyEUR,
		Schedule:           schedule,
	})

	assert.Equal(t, int64(20000), b.BasePriceCents)
	assert.Equal(t, int64(2400), b.Fees.GuestFeeCents)
	assert.Equal(t, int64(0), b.Fees.TaxOnGuestFeeCents)
	assert.Equal(t, int64(22400), b.TotalCents)
}

func TestBuildBreakdownLinesOrderAndKinds(t *testing.T) {
	schedule := ResolveFeeSchedule(FeeInput{PriceCents: 30000, Currency: CurrencyEUR, Region: RegionFrance})

	b := BuildBreakdown(BreakdownInput{
		Nights:             3,
		PricePerNightCents: 10000,
		Currency:           CurrencyEUR,
		Schedule:           schedule,
	})

	require.Len(t, b.Lines, 3)
	assert.Equal(t, LineKindBase, b.Lines[0].Kind)
	assert.Equal(t, LineKindFee, b.Lines[1].Kind)
	assert.Equal(t, LineKindTax, b.Lines[2].Kind)
	assert.Equal(t, "base", b.Lines[0].Code)
	assert.Equal(t, "service_guest", b.Lines[1].Code)
	assert.Equal(t, "taxes", b.Lines[2].Code)
	assert.Equal(t, "Prix (3 nuits)", b.Lines[0].Label)
}

func TestBuildBreakdownConservation(t *testing.T) {
	tests := []struct {
		name   string
		nights int
		price  int64
		input  FeeInput
	}{
		{"France 1 nuit", 1, 4999, FeeInput{Currency: CurrencyEUR, Region: RegionFrance}},
		{"France long séjour", 28, 17550, FeeInput{Currency: CurrencyEUR, Region: RegionFrance}},
		{"Québec montant impair", 5, 12345, FeeInput{Currency: CurrencyCAD, Region: RegionQC}},
		{"Atlantique", 2, 9999, FeeInput{Currency: CurrencyCAD, Region: RegionATL}},
		{"prix nul", 3, 0, FeeInput{Currency: CurrencyEUR, Region: RegionFrance}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.PriceCents = tt.price * int64(tt.nights)
			schedule := ResolveFeeSchedule(in)

			b := BuildBreakdown(BreakdownInput{
				Nights:             tt.nights,
				PricePerNightCents: tt.price,
				Currency:           in.Currency,
				Schedule:           schedule,
			})

			// Conservation : la somme des lignes (base incluse) vaut le total
			var sum int64
			for _, line := range b.Lines {
				sum += line.AmountCents
				assert.GreaterOrEqual(t, line.AmountCents, int64(0))
			}
			assert.Equal(t, b.TotalCents, sum)
		})
	}
}

func TestBuildBreakdownIdempotent(t *testing.T) {
	schedule := ResolveFeeSchedule(FeeInput{PriceCents: 25000, Currency: CurrencyCAD, Region: RegionBC})
	in := BreakdownInput{Nights: 5, PricePerNightCents: 5000, Currency: CurrencyCAD, Schedule: schedule}

	first := BuildBreakdown(in)
	second := BuildBreakdown(in)
	assert.Equal(t, first, second)
}

func TestBuildBreakdownClampsInvalidInput(t *testing.T) {
	schedule := ResolveFeeSchedule(FeeInput{PriceCents: 10000, Currency: CurrencyEUR, Region: RegionFrance})

	// nights < 1 est clampé à 1, prix négatif à 0
	b := BuildBreakdown(BreakdownInput{Nights: 0, PricePerNightCents: -100, Currency: CurrencyEUR, Schedule: schedule})
	assert.Equal(t, 1, b.Nights)
	assert.Equal(t, int64(0), b.BasePriceCents)
	assert.Equal(t, int64(0), b.TotalCents)
}
