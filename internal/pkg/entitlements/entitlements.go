package entitlements

import (
	"strings"

	"github.com/verifox/VeriFox/app/models"
)

type Tier string

const (
	TierFree       Tier = models.TIER_FREE
	TierPremium    Tier = models.TIER_PREMIUM
	TierPremiumMax Tier = models.TIER_PREMIUM_MAX
)

// Unlimited marks a tier without a monthly verification cap.
const Unlimited = -1

// MonthlyQuota returns how many verifications a tier may run per calendar
// month. Unknown tiers fall back to the free allowance.
func MonthlyQuota(tier Tier) int {
	switch tier {
	case TierPremiumMax:
		return Unlimited
	case TierPremium:
		return 500
	default:
		return 10
	}
}

// Normalize maps an arbitrary tier string to a known tier.
func Normalize(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.TIER_PREMIUM:
		return TierPremium
	case models.TIER_PREMIUM_MAX:
		return TierPremiumMax
	default:
		return TierFree
	}
}
