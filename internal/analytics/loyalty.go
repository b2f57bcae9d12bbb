package analytics

import "time"

// LoyaltyPolicy holds the weights and caps of the loyalty composite. The
// exact values are tunable business policy, not algorithmic necessity, so
// they live in a policy object instead of magic numbers.
type LoyaltyPolicy struct {
	OrderCountWeight float64 // points per distinct order
	OrderCountCap    float64
	DiversityWeight  float64 // points per distinct category
	DiversityCap     float64
	FrequencyWeight  float64 // points per order-per-month
	FrequencyCap     float64
	TenureDaysPer    float64 // days of tenure per point
	TenureCap        float64
	MaxScore         float64
}

// DefaultLoyaltyPolicy returns the production weights. Each term saturates
// at its cap and the total saturates at MaxScore.
func DefaultLoyaltyPolicy() LoyaltyPolicy {
	return LoyaltyPolicy{
		OrderCountWeight: 2,
		OrderCountCap:    30,
		DiversityWeight:  8,
		DiversityCap:     25,
		FrequencyWeight:  5,
		FrequencyCap:     20,
		TenureDaysPer:    12,
		TenureCap:        25,
		MaxScore:         100,
	}
}

// LoyaltyInputs are the per-dealer facts the score is computed from.
type LoyaltyInputs struct {
	OrderCount    int
	CategoryCount int
	FirstOrder    time.Time
	LastOrder     time.Time
}

// LoyaltyScore computes the bounded composite engagement score: a weighted
// sum of order count, category diversity, order frequency and tenure, each
// capped per the policy, with the total capped at MaxScore.
func LoyaltyScore(in LoyaltyInputs, policy LoyaltyPolicy) float64 {
	orderTerm := capAt(float64(in.OrderCount)*policy.OrderCountWeight, policy.OrderCountCap)
	diversityTerm := capAt(float64(in.CategoryCount)*policy.DiversityWeight, policy.DiversityCap)

	tenureDays := in.LastOrder.Sub(in.FirstOrder).Hours() / 24
	if tenureDays < 0 {
		tenureDays = 0
	}

	tenureTerm := 0.0
	if policy.TenureDaysPer > 0 {
		tenureTerm = capAt(tenureDays/policy.TenureDaysPer, policy.TenureCap)
	}

	// Orders per month of tenure; dealers younger than a month are treated
	// as one month old so a burst of first orders does not explode the term.
	tenureMonths := tenureDays / 30
	if tenureMonths < 1 {
		tenureMonths = 1
	}
	frequencyTerm := capAt(float64(in.OrderCount)/tenureMonths*policy.FrequencyWeight, policy.FrequencyCap)

	return capAt(orderTerm+diversityTerm+frequencyTerm+tenureTerm, policy.MaxScore)
}

func capAt(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	if v < 0 {
		return 0
	}
	return v
}
