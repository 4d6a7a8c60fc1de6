package pricing

import (
	"os"
	"strconv"
	"strings"
)

// Moteur de frais Lok'Room — France (EUR) + Canada par province (CAD)
//
// Tout est calculé en cents (entiers) pour éviter les dérives de virgule
// flottante. Les pourcentages sont exprimés en parts pour 100 000 (Rate),
// ce qui permet de représenter exactement la TVQ du Québec (14.975%).

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyCAD Currency = "CAD"
)

type Region string

const (
	RegionFrance Region = "FRANCE"
	RegionAB     Region = "AB"
	RegionBC     Region = "BC"
	RegionON     Region = "ON"
	RegionQC     Region = "QC"
	RegionATL    Region = "ATL" // NB / NS / NL / PE
)

// Rate est une fraction exprimée en parts pour 100 000.
// Exemple : 11.5% = Rate(11500), 14.975% = Rate(14975).
type Rate int64

const RateScale = 100000

// ApplyTo applique le taux à un montant en cents, arrondi au cent le plus
// proche (demi-cent vers le haut). L'arrondi se fait ligne par ligne, jamais
// sur le total, pour que la somme des lignes colle toujours au total.
func (r Rate) ApplyTo(amountCents int64) int64 {
	if amountCents <= 0 || r <= 0 {
		return 0
	}
	return (amountCents*int64(r) + RateScale/2) / RateScale
}

// ApplyToCeil applique le taux avec arrondi au cent supérieur.
// Utilisé uniquement pour l'estimation Stripe (affichage, jamais réconcilié).
func (r Rate) ApplyToCeil(amountCents int64) int64 {
	if amountCents <= 0 || r <= 0 {
		return 0
	}
	return (amountCents*int64(r) + RateScale - 1) / RateScale
}

// Float64 retourne le taux sous forme décimale (0..1) pour l'affichage.
func (r Rate) Float64() float64 {
	return float64(r) / RateScale
}

type FeeInput struct {
	PriceCents int64    `json:"priceCents"` // base (en cents)
	Currency   Currency `json:"currency"`   // "EUR" | "CAD"
	Region     Region   `json:"region"`     // FRANCE | AB | BC | ON | QC | ATL
}

// FeeSchedule est le barème résolu pour une devise/région/tranche de prix.
// Immuable une fois résolu.
type FeeSchedule struct {
	GuestFeeRate Rate     `json:"guestFeeRate"`
	HostFeeRate  Rate     `json:"hostFeeRate"`
	TaxRateOnFee Rate     `json:"taxRateOnFee"` // taxes sur la part Guest uniquement
	Currency     Currency `json:"currency"`
	Region       Region   `json:"region"`
}

type FeeBreakdown struct {
	HostRate  Rate `json:"hostRate"`
	GuestRate Rate `json:"guestRate"`

	HostFeeCents  int64 `json:"hostFeeCents"`
	GuestFeeCents int64 `json:"guestFeeCents"`

	TaxOnGuestFeeCents int64 `json:"taxOnGuestFeeCents"`

	ChargeCents     int64 `json:"chargeCents"`     // débité au client
	HostPayoutCents int64 `json:"hostPayoutCents"` // crédité au wallet hôte

	StripeEstimateCents int64 `json:"stripeEstimateCents"`

	Currency Currency `json:"currency"`
	Region   Region   `json:"region"`
}

// ---------- Barèmes ----------

type rateTier struct {
	maxCents int64 // exclusif ; 0 = dernière tranche
	host     Rate
	guest    Rate
}

// France (EUR) — TVA 20% sur les frais de service
var tiersFR = []rateTier{
	{2000, 3000, 11500},
	{6000, 2700, 10500},
	{15000, 2300, 9800},
	{30000, 2100, 8500},
	{0, 2000, 7500},
}

// Canada (CAD) — taxes par province (GST/PST/QST combinées)
var taxRatesCA = map[Region]Rate{
	RegionAB:  5000,
	RegionBC:  12000,
	RegionON:  13000,
	RegionQC:  14975,
	RegionATL: 15000, // NB/NS/NL/PE
}

var tiersCA = map[Region][]rateTier{
	RegionAB: {
		{2000, 2700, 9800},
		{6000, 2400, 8800},
		{15000, 2200, 8200},
		{30000, 2000, 7800},
		{0, 1800, 7300},
	},
	RegionBC: {
		{2000, 2800, 10300},
		{6000, 2500, 9200},
		{15000, 2300, 8500},
		{30000, 2100, 8000},
		{0, 1900, 7500},
	},
	RegionON: {
		{2000, 2900, 10800},
		{6000, 2600, 9800},
		{15000, 2400, 9200},
		{30000, 2200, 8700},
		{0, 2000, 8000},
	},
	RegionQC: {
		{2000, 3000, 11500},
		{6000, 2700, 10500},
		{15000, 2400, 9500},
		{30000, 2200, 9000},
		{0, 2000, 8200},
	},
	RegionATL: {
		{2000, 3000, 11500},
		{6000, 2800, 10500},
		{15000, 2500, 9800},
		{30000, 2300, 9000},
		{0, 2100, 8300},
	},
}

const taxRateFR = Rate(20000) // TVA 20%

func pickTier(tiers []rateTier, priceCents int64) rateTier {
	for _, t := range tiers {
		if t.maxCents == 0 || priceCents < t.maxCents {
			return t
		}
	}
	// jamais atteint (la dernière tranche est ouverte)
	return tiers[len(tiers)-1]
}

// ResolveFeeSchedule résout le barème applicable. Jamais d'erreur :
// une combinaison inconnue retombe sur le barème France (fail-open,
// l'affichage du prix ne doit jamais bloquer le flux de réservation).
func ResolveFeeSchedule(in FeeInput) FeeSchedule {
	if in.Currency == CurrencyCAD {
		if tiers, ok := tiersCA[in.Region]; ok {
			t := pickTier(tiers, in.PriceCents)
			return FeeSchedule{
				GuestFeeRate: t.guest,
				HostFeeRate:  t.host,
				TaxRateOnFee: taxRatesCA[in.Region],
				Currency:     CurrencyCAD,
				Region:       in.Region,
			}
		}
		// Province inconnue : barème par défaut CAD
		return FeeSchedule{
			GuestFeeRate: 9000,
			HostFeeRate:  2500,
			TaxRateOnFee: taxRatesCA[RegionQC],
			Currency:     CurrencyCAD,
			Region:       in.Region,
		}
	}

	t := pickTier(tiersFR, in.PriceCents)
	return FeeSchedule{
		GuestFeeRate: t.guest,
		HostFeeRate:  t.host,
		TaxRateOnFee: taxRateFR,
		Currency:     CurrencyEUR,
		Region:       RegionFrance,
	}
}

// ---------- Sélecteur + calculs ----------

// ComputeFeesWithSchedule calcule les frais à partir d'un barème déjà résolu.
func ComputeFeesWithSchedule(priceCents int64, schedule FeeSchedule) FeeBreakdown {
	if priceCents < 0 {
		priceCents = 0
	}

	hostFeeCents := schedule.HostFeeRate.ApplyTo(priceCents)
	guestFeeCents := schedule.GuestFeeRate.ApplyTo(priceCents)

	// taxes sur la part Guest uniquement
	taxOnGuestFeeCents := schedule.TaxRateOnFee.ApplyTo(guestFeeCents)

	// total débité
	chargeCents := priceCents + guestFeeCents + taxOnGuestFeeCents

	// payout hôte
	hostPayoutCents := priceCents - hostFeeCents
	if hostPayoutCents < 0 {
		hostPayoutCents = 0
	}

	// estimation Stripe
	stripeRate, stripeFix := stripeEstimateParams(schedule.Currency)
	stripeEstimateCents := stripeRate.ApplyToCeil(chargeCents) + stripeFix

	return FeeBreakdown{
		HostRate:            schedule.HostFeeRate,
		GuestRate:           schedule.GuestFeeRate,
		HostFeeCents:        hostFeeCents,
		GuestFeeCents:       guestFeeCents,
		TaxOnGuestFeeCents:  taxOnGuestFeeCents,
		ChargeCents:         chargeCents,
		HostPayoutCents:     hostPayoutCents,
		StripeEstimateCents: stripeEstimateCents,
		Currency:            schedule.Currency,
		Region:              schedule.Region,
	}
}

// ComputeFees résout le barème puis calcule les frais.
func ComputeFees(in FeeInput) FeeBreakdown {
	return ComputeFeesWithSchedule(in.PriceCents, ResolveFeeSchedule(in))
}

// stripeEstimateParams retourne (taux, frais fixes en cents) selon la devise.
// Surchargeables via .env comme côté front (STRIPE_PCT_EU=1.4, etc.)
func stripeEstimateParams(currency Currency) (Rate, int64) {
	if currency == CurrencyCAD {
		return envRatePercent("STRIPE_PCT_CA", 2900), envCents("STRIPE_FIX_CAD", 30)
	}
	return envRatePercent("STRIPE_PCT_EU", 1400), envCents("STRIPE_FIX_EUR", 25)
}

// envRatePercent lit un pourcentage ("2.9") et le convertit en Rate.
func envRatePercent(key string, fallback Rate) Rate {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil || pct < 0 {
		return fallback
	}
	return Rate(pct * 1000) // 1% = 1000 parts pour 100 000
}

func envCents(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// ---------- Détermination de la région à partir du pays/province ----------

func InferRegion(currency Currency, country, provinceCode string) Region {
	if currency == CurrencyEUR {
		return RegionFrance
	}

	code := strings.ToUpper(strings.TrimSpace(provinceCode))
	switch code {
	case "AB":
		return RegionAB
	case "BC":
		return RegionBC
	case "ON":
		return RegionON
	case "QC":
		return RegionQC
	case "NB", "NS", "NL", "PE":
		return RegionATL
	}

	// Si pas de province mais on est au Canada, fallback QC
	ctry := strings.ToLower(strings.TrimSpace(country))
	if ctry == "canada" || ctry == "ca" {
		return RegionQC
	}

	// par défaut
	return RegionFrance
}
