package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() CancellationPolicy {
	return CancellationPolicy{
		FullRefundHours:    24 * 7,
		HalfRefundHours:    48,
		QuarterRefundHours: 24,
		FullRatio:          RateScale,
		HalfRatio:          RateScale / 2,
		QuarterRatio:       RateScale / 4,
	}
}

func TestEvaluateGuestFullRefund(t *testing.T) {
	// 10 jours avant l'arrivée : remboursement intégral, rien pour l'hôte
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(10 * 24 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(48 * time.Hour),
		TotalPriceCents: 22400,
		ServiceFeeCents: 2400,
		Currency:        CurrencyEUR,
	})

	require.True(t, d.Allowed)
	assert.Equal(t, PolicyFlexible, d.PolicyType)
	assert.Equal(t, Rate(RateScale), d.RefundRatio)
	assert.Equal(t, int64(22400), d.RefundAmountCents)
	assert.Equal(t, int64(0), d.ServiceFeeRetainedCents)
	assert.Equal(t, int64(0), d.HostPayoutCents)
}

func TestEvaluateGuestStrictWindow(t *testing.T) {
	// Moins de 24h avant : annulation acceptée mais 0% remboursé,
	// la plateforme retient ses frais, l'hôte touche le reste
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(12 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(48 * time.Hour),
		TotalPriceCents: 22400,
		ServiceFeeCents: 2400,
		Currency:        CurrencyEUR,
	})

	require.True(t, d.Allowed)
	assert.Equal(t, PolicyStrict, d.PolicyType)
	assert.Equal(t, Rate(0), d.RefundRatio)
	assert.Equal(t, int64(0), d.RefundAmountCents)
	assert.Equal(t, int64(2400), d.ServiceFeeRetainedCents)
	assert.Equal(t, int64(20000), d.HostPayoutCents)
}

func TestEvaluateHostAlwaysFullRefund(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Peu importe la fenêtre, l'hôte qui annule rembourse tout
	for _, hoursBefore := range []time.Duration{30 * 24 * time.Hour, 36 * time.Hour, 2 * time.Hour} {
		start := now.Add(hoursBefore)
		d := testPolicy().Evaluate(CancellationInput{
			Role:            RoleHost,
			Now:             now,
			StartDate:       start,
			EndDate:         start.Add(24 * time.Hour),
			TotalPriceCents: 22400,
			ServiceFeeCents: 2400,
			Currency:        CurrencyEUR,
		})

		require.True(t, d.Allowed)
		assert.Equal(t, Rate(RateScale), d.RefundRatio)
		assert.Equal(t, int64(22400), d.RefundAmountCents)
		assert.Equal(t, int64(0), d.HostPayoutCents)
	}
}

func TestEvaluateAlreadyCompleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(-5 * 24 * time.Hour)
	end := now.Add(-2 * 24 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         end,
		TotalPriceCents: 22400,
		ServiceFeeCents: 2400,
		Currency:        CurrencyEUR,
	})

	assert.False(t, d.Allowed)
	assert.Equal(t, "already_completed", d.ReasonCode)
	assert.Equal(t, int64(0), d.RefundAmountCents)
	// Conservation même sur un refus
	assert.Equal(t, int64(22400), d.RefundAmountCents+d.ServiceFeeRetainedCents+d.HostPayoutCents)
}

func TestEvaluateConservation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := testPolicy()

	totals := []int64{0, 1, 99, 22400, 1000001}
	fees := []int64{0, 1, 2400, 50000}
	offsets := []time.Duration{
		30 * 24 * time.Hour,
		8 * 24 * time.Hour,
		100 * time.Hour,
		36 * time.Hour,
		12 * time.Hour,
		-6 * time.Hour,
	}

	for _, role := range []CancellationRole{RoleGuest, RoleHost} {
		for _, total := range totals {
			for _, fee := range fees {
				for _, offset := range offsets {
					start := now.Add(offset)
					d := policy.Evaluate(CancellationInput{
						Role:            role,
						Now:             now,
						StartDate:       start,
						EndDate:         start.Add(48 * time.Hour),
						TotalPriceCents: total,
						ServiceFeeCents: fee,
						Currency:        CurrencyEUR,
					})

					sum := d.RefundAmountCents + d.ServiceFeeRetainedCents + d.HostPayoutCents
					require.Equal(t, total, sum,
						"conservation violée: role=%s total=%d fee=%d offset=%s", role, total, fee, offset)

					assert.GreaterOrEqual(t, d.RefundAmountCents, int64(0))
					assert.GreaterOrEqual(t, d.ServiceFeeRetainedCents, int64(0))
					assert.GreaterOrEqual(t, d.HostPayoutCents, int64(0))
				}
			}
		}
	}
}

func TestEvaluateMonotonicity(t *testing.T) {
	// Annuler plus tard ne rembourse jamais plus qu'annuler plus tôt
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := testPolicy()

	previous := Rate(RateScale)
	for hours := 24 * 14; hours >= 1; hours-- {
		start := now.Add(time.Duration(hours) * time.Hour)
		d := policy.Evaluate(CancellationInput{
			Role:            RoleGuest,
			Now:             now,
			StartDate:       start,
			EndDate:         start.Add(24 * time.Hour),
			TotalPriceCents: 50000,
			ServiceFeeCents: 5000,
			Currency:        CurrencyEUR,
		})
		require.LessOrEqual(t, int64(d.RefundRatio), int64(previous),
			"ratio croissant à %dh de l'arrivée", hours)
		previous = d.RefundRatio
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(72 * time.Hour)

	in := CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(48 * time.Hour),
		TotalPriceCents: 31337,
		ServiceFeeCents: 3000,
		Currency:        CurrencyCAD,
	}

	policy := testPolicy()
	assert.Equal(t, policy.Evaluate(in), policy.Evaluate(in))
}

func TestEvaluateModerateWindowSplit(t *testing.T) {
	// 3 jours avant : 50% remboursé, frais retenus, reste à l'hôte
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(3 * 24 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(48 * time.Hour),
		TotalPriceCents: 22400,
		ServiceFeeCents: 2400,
		Currency:        CurrencyEUR,
	})

	require.True(t, d.Allowed)
	assert.Equal(t, PolicyModerate, d.PolicyType)
	assert.Equal(t, int64(11200), d.RefundAmountCents)
	assert.Equal(t, int64(2400), d.ServiceFeeRetainedCents)
	assert.Equal(t, int64(8800), d.HostPayoutCents)
}

func TestEvaluateServiceFeeClampedToRemainder(t *testing.T) {
	// Frais de service supérieurs au non-remboursé : plafonnés, jamais négatif
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(3 * 24 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleGuest,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(24 * time.Hour),
		TotalPriceCents: 1000,
		ServiceFeeCents: 5000,
		Currency:        CurrencyEUR,
	})

	assert.Equal(t, int64(500), d.RefundAmountCents)
	assert.Equal(t, int64(500), d.ServiceFeeRetainedCents)
	assert.Equal(t, int64(0), d.HostPayoutCents)
}

func TestEvaluateHostRatioFullEvenWithoutAmount(t *testing.T) {
	// Annulation hôte sur une réservation à 0 : le ratio reste 100%
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(72 * time.Hour)

	d := testPolicy().Evaluate(CancellationInput{
		Role:            RoleHost,
		Now:             now,
		StartDate:       start,
		EndDate:         start.Add(24 * time.Hour),
		TotalPriceCents: 0,
		ServiceFeeCents: 0,
		Currency:        CurrencyEUR,
	})

	require.True(t, d.Allowed)
	assert.Equal(t, Rate(RateScale), d.RefundRatio)
	assert.Equal(t, int64(0), d.RefundAmountCents)
	assert.Equal(t, int64(0), d.HostPayoutCents)
}
