package pricing

import "fmt"

// Lignes de prix façon Airbnb pour le checkout.
// L'ordre des lignes est fixe (BASE, FEE, TAX) pour un rendu stable côté
// client et un hachage déterministe si besoin de clé d'idempotence.

type LineKind string

const (
	LineKindBase LineKind = "BASE"
	LineKindFee  LineKind = "FEE"
	LineKindTax  LineKind = "TAX"
)

type FeeLine struct {
	Code        string   `json:"code"` // base | service_guest | taxes
	Label       string   `json:"label"`
	AmountCents int64    `json:"amountCents"`
	Kind        LineKind `json:"kind"`
}

type BreakdownInput struct {
	Nights             int         `json:"nights"`
	PricePerNightCents int64       `json:"pricePerNightCents"`
	Currency           Currency    `json:"currency"`
	Schedule           FeeSchedule `json:"schedule"`
}

type PriceBreakdown struct {
	Currency       Currency  `json:"currency"`
	Nights         int       `json:"nights"`
	BasePriceCents int64     `json:"basePriceCents"`
	Lines          []FeeLine `json:"lines"`
	TotalCents     int64     `json:"totalCents"` // == somme des lignes, base incluse

	Fees             FeeBreakdown `json:"fees"`
	HostPayoutCents  int64        `json:"hostPayoutCents"`
	PlatformNetCents int64        `json:"platformNetCents"`
}

// BuildBreakdown construit le détail de prix ligne par ligne.
// Préconditions (validées en amont par l'appelant) : nights >= 1,
// pricePerNightCents >= 0. Ne peut pas échouer.
//
// Invariant : TotalCents == somme(Lines[*].AmountCents).
func BuildBreakdown(in BreakdownInput) PriceBreakdown {
	nights := in.Nights
	if nights < 1 {
		nights = 1
	}
	price := in.PricePerNightCents
	if price < 0 {
		price = 0
	}

	basePriceCents := price * int64(nights)

	fees := ComputeFeesWithSchedule(basePriceCents, in.Schedule)

	totalCents := basePriceCents + fees.GuestFeeCents + fees.TaxOnGuestFeeCents

	platformNetCents := fees.HostFeeCents + fees.GuestFeeCents +
		fees.TaxOnGuestFeeCents - fees.StripeEstimateCents

	baseLabel := "Prix (1 nuit)"
	if nights > 1 {
		baseLabel = fmt.Sprintf("Prix (%d nuits)", nights)
	}

	lines := []FeeLine{
		{
			Code:        "base",
			Label:       baseLabel,
			AmountCents: basePriceCents,
			Kind:        LineKindBase,
		},
		{
			Code:        "service_guest",
			Label:       "Frais de service Lok'Room",
			AmountCents: fees.GuestFeeCents,
			Kind:        LineKindFee,
		},
		{
			Code:        "taxes",
			Label:       "Taxes sur les frais",
			AmountCents: fees.TaxOnGuestFeeCents,
			Kind:        LineKindTax,
		},
	}

	return PriceBreakdown{
		Currency:         in.Currency,
		Nights:           nights,
		BasePriceCents:   basePriceCents,
		Lines:            lines,
		TotalCents:       totalCents,
		Fees:             fees,
		HostPayoutCents:  fees.HostPayoutCents,
		PlatformNetCents: platformNetCents,
	}
}
