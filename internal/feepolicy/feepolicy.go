// Package feepolicy computes the platform fee retained from each donation.
// Percentages are expressed in basis points to keep the arithmetic integral;
// all monetary values are currency minor units. Everything here is pure and
// deterministic.
package feepolicy

import "github.com/pawhaven-donation-engine/internal/domain/shared"

const (
	// AnimalFeeBps is the flat platform fee for direct-to-animal donations (10%).
	AnimalFeeBps = 1000

	// CampaignBaseFeeBps is the campaign fee before tier surcharges (6%).
	CampaignBaseFeeBps = 600

	// PrioritySurchargeBps is added per priority tier (tiers 1-4).
	PrioritySurchargeBps = 100

	// DurationSurchargeBps is added per duration tier (1-4 weeks).
	DurationSurchargeBps = 100

	// Campaign fees are clamped to this band regardless of tier combination.
	CampaignMinFeeBps = 800
	CampaignMaxFeeBps = 1400

	minTier = 1
	maxTier = 4
)

// FeeBps returns the platform fee percentage in basis points for a donation.
// Animal donations use a flat rate. Campaign donations use a base rate plus a
// priority surcharge and a duration surcharge, each monotonically increasing
// with tier, clamped to [CampaignMinFeeBps, CampaignMaxFeeBps]. Tiers outside
// 1-4 are clamped into range.
func FeeBps(kind shared.DonationKind, priorityTier, durationWeeks int) int32 {
	if kind == shared.DonationKindAnimal {
		return AnimalFeeBps
	}

	bps := CampaignBaseFeeBps +
		clampTier(priorityTier)*PrioritySurchargeBps +
		clampTier(durationWeeks)*DurationSurchargeBps

	if bps < CampaignMinFeeBps {
		bps = CampaignMinFeeBps
	}
	if bps > CampaignMaxFeeBps {
		bps = CampaignMaxFeeBps
	}
	return int32(bps)
}

// FeeAmount returns the absolute fee in minor units for the given amount and
// fee percentage, rounded half-up. The result never exceeds the amount.
func FeeAmount(amount int64, feeBps int32) int64 {
	if amount <= 0 || feeBps <= 0 {
		return 0
	}
	fee := (amount*int64(feeBps) + 5000) / 10000
	if fee > amount {
		fee = amount
	}
	return fee
}

func clampTier(tier int) int {
	if tier < minTier {
		return minTier
	}
	if tier > maxTier {
		return maxTier
	}
	return tier
}
