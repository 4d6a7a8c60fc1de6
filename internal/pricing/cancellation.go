package pricing

import (
	"os"
	"strconv"
	"time"
)

// Politique d'annulation Lok'Room
//
// 🔹 Côté guest :
//   - ≥ 7 jours avant l'arrivée : remboursement 100%
//   - 2 à 7 jours avant : remboursement 50%
//   - 24h à 48h avant : remboursement 25%
//   - < 24h avant (ou séjour commencé) : 0% remboursé, annulation acceptée
//   - séjour terminé : annulation refusée
//
// 🔹 Côté host :
//   - Toujours remboursement 100% pour le guest (l'hôte prend tout le risque)
//
// Aucune exception : tout refus passe par Allowed=false + ReasonCode.

type CancellationRole string

const (
	RoleGuest CancellationRole = "guest"
	RoleHost  CancellationRole = "host"
)

type PolicyType string

const (
	PolicyFlexible PolicyType = "FLEXIBLE"
	PolicyModerate PolicyType = "MODERATE"
	PolicyStrict   PolicyType = "STRICT"
)

type CancellationInput struct {
	Role      CancellationRole `json:"role"`
	Now       time.Time        `json:"now"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`

	TotalPriceCents int64 `json:"totalPriceCents"` // montant débité au guest
	ServiceFeeCents int64 `json:"serviceFeeCents"` // part non remboursable retenue par Lok'Room

	Currency Currency `json:"currency"`
}

type CancellationDecision struct {
	Allowed    bool       `json:"allowed"`
	ReasonCode string     `json:"reasonCode"`
	PolicyType PolicyType `json:"policyType"`

	RefundRatio Rate `json:"refundRatio"` // RateScale = 100%

	RefundAmountCents       int64 `json:"refundAmountCents"`
	ServiceFeeRetainedCents int64 `json:"serviceFeeRetainedCents"`
	HostPayoutCents         int64 `json:"hostPayoutCents"`

	Message string `json:"message"`
}

// CancellationPolicy définit les fenêtres (en heures avant l'arrivée) et les
// ratios associés. Les seuils viennent de la config, pas de constantes en dur.
type CancellationPolicy struct {
	FullRefundHours    int
	HalfRefundHours    int
	QuarterRefundHours int

	FullRatio    Rate
	HalfRatio    Rate
	QuarterRatio Rate
}

// DefaultCancellationPolicy lit les fenêtres depuis .env avec les valeurs
// Lok'Room par défaut (7 jours / 48h / 24h).
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		FullRefundHours:    envHours("CANCEL_FULL_REFUND_HOURS", 24*7),
		HalfRefundHours:    envHours("CANCEL_HALF_REFUND_HOURS", 48),
		QuarterRefundHours: envHours("CANCEL_QUARTER_REFUND_HOURS", 24),
		FullRatio:          RateScale,
		HalfRatio:          RateScale / 2,
		QuarterRatio:       RateScale / 4,
	}
}

func envHours(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// EvaluateCancellationPolicy applique la politique par défaut.
func EvaluateCancellationPolicy(in CancellationInput) CancellationDecision {
	return DefaultCancellationPolicy().Evaluate(in)
}

// Evaluate détermine si l'annulation est permise et la répartition de
// l'argent. Invariant (conservation) :
//
//	RefundAmountCents + ServiceFeeRetainedCents + HostPayoutCents == TotalPriceCents
//
// Aucun cent n'est créé ni détruit, y compris pour une décision refusée.
func (p CancellationPolicy) Evaluate(in CancellationInput) CancellationDecision {
	// Sécurité : si prix <= 0 -> rien à rembourser
	safeTotal := in.TotalPriceCents
	if safeTotal < 0 {
		safeTotal = 0
	}

	// Séjour déjà terminé : refus, l'argent reste réparti comme après séjour
	if !in.Now.Before(in.EndDate) {
		refund, retained, payout := splitAmounts(safeTotal, 0, in.ServiceFeeCents)
		return CancellationDecision{
			Allowed:                 false,
			ReasonCode:              "already_completed",
			PolicyType:              PolicyStrict,
			RefundRatio:             0,
			RefundAmountCents:       refund,
			ServiceFeeRetainedCents: retained,
			HostPayoutCents:         payout,
			Message:                 "Impossible d'annuler une réservation déjà terminée.",
		}
	}

	// 🔹 Cas hôte : toujours remboursement intégral au guest, le ratio
	// affiché est 100% même quand il n'y a rien à rembourser
	if in.Role == RoleHost {
		refund, retained, payout := splitAmounts(safeTotal, RateScale, 0)
		return CancellationDecision{
			Allowed:                 true,
			ReasonCode:              "host_full_refund",
			PolicyType:              PolicyFlexible,
			RefundRatio:             RateScale,
			RefundAmountCents:       refund,
			ServiceFeeRetainedCents: retained,
			HostPayoutCents:         payout,
			Message:                 "Annulation par l'hôte : remboursement intégral pour le voyageur.",
		}
	}

	// À partir d'ici, rôle = "guest"
	hoursUntilStart := in.StartDate.Sub(in.Now).Hours()

	var (
		ratio      Rate
		serviceFee int64
		policyType PolicyType
		reasonCode string
		message    string
	)

	switch {
	case hoursUntilStart >= float64(p.FullRefundHours):
		ratio = p.FullRatio
		policyType = PolicyFlexible
		reasonCode = "guest_free_7d"
		message = "Annulation gratuite jusqu'à 7 jours avant l'arrivée."
	case hoursUntilStart >= float64(p.HalfRefundHours):
		ratio = p.HalfRatio
		serviceFee = in.ServiceFeeCents
		policyType = PolicyModerate
		reasonCode = "guest_partial_50_2d_7d"
		message = "Entre 2 et 7 jours avant l'arrivée : 50% remboursé, 50% de frais."
	case hoursUntilStart >= float64(p.QuarterRefundHours):
		ratio = p.QuarterRatio
		serviceFee = in.ServiceFeeCents
		policyType = PolicyStrict
		reasonCode = "guest_partial_25_24_48h"
		message = "Entre 24h et 48h avant l'arrivée : 25% remboursé, 75% de frais."
	default:
		// < 24h (séjour commencé inclus) : annulation acceptée mais 0% remboursé
		ratio = 0
		serviceFee = in.ServiceFeeCents
		policyType = PolicyStrict
		reasonCode = "guest_no_refund_24h"
		message = "Moins de 24h avant l'arrivée : annulation acceptée sans remboursement."
	}

	refund, retained, payout := splitAmounts(safeTotal, ratio, serviceFee)

	return CancellationDecision{
		Allowed:                 true,
		ReasonCode:              reasonCode,
		PolicyType:              policyType,
		RefundRatio:             ratio,
		RefundAmountCents:       refund,
		ServiceFeeRetainedCents: retained,
		HostPayoutCents:         payout,
		Message:                 message,
	}
}

// splitAmounts répartit le total en trois : remboursement guest, frais
// retenus par la plateforme, payout hôte. La retenue est plafonnée à ce qui
// n'est pas remboursé, et le payout prend le reste — la somme des trois vaut
// donc toujours exactement le total.
func splitAmounts(totalCents int64, ratio Rate, serviceFeeCents int64) (refund, retained, payout int64) {
	refund = ratio.ApplyTo(totalCents)
	if refund > totalCents {
		refund = totalCents
	}

	remaining := totalCents - refund

	retained = serviceFeeCents
	if retained < 0 {
		retained = 0
	}
	if retained > remaining {
		retained = remaining
	}

	payout = remaining - retained
	return refund, retained, payout
}
