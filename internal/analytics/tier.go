package analytics

import "github.com/agridash/dealer-insights/internal/models"

// TierRule is one row of the tier decision table: a dealer qualifies when
// both thresholds are met.
type TierRule struct {
	MinShare   float64 // percent of grand total
	MinLoyalty float64
	Tier       models.Tier
}

// TierPolicy is the ordered decision table. Rules are evaluated top-down
// and the first matching rule wins, the same first-match discipline as the
// category classifier.
type TierPolicy struct {
	Rules   []TierRule
	Default models.Tier
}

// DefaultTierPolicy returns the production thresholds, highest tier first.
func DefaultTierPolicy() TierPolicy {
	return TierPolicy{
		Rules: []TierRule{
			{MinShare: 2.0, MinLoyalty: 70, Tier: models.TierGold},
			{MinShare: 1.0, MinLoyalty: 50, Tier: models.TierSilver},
			{MinShare: 0.25, MinLoyalty: 25, Tier: models.TierBronze},
		},
		Default: models.TierCopper,
	}
}

// ClassifyTier assigns a tier from market share and loyalty score.
func ClassifyTier(marketShare, loyalty float64, policy TierPolicy) models.Tier {
	for _, rule := range policy.Rules {
		if marketShare >= rule.MinShare && loyalty >= rule.MinLoyalty {
			return rule.Tier
		}
	}
	return policy.Default
}
