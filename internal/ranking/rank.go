// Package ranking orders retrieval candidates by a composite business-value
// score blending paid-placement priority, historical conversion and distance.
package ranking

import (
	"sort"

	"github.com/dukaanlabs/dukaan/internal/domain"
)

const (
	// scoreScale and the distance-less boost are long-standing tuning
	// constants; downstream conversion reporting assumes these exact
	// values, so change them only together with a recalibration.
	scoreScale         = 100.0
	noDistanceBoost    = 10.0
	unsubscribedWeight = 0.5

	// DefaultConversionRate is the prior applied to shops with no history,
	// low enough not to outrank proven shops, high enough not to starve
	// new listings.
	DefaultConversionRate = 0.1

	// veryCloseKm is the distance under which a shop earns the
	// "very close" recommendation reason.
	veryCloseKm = 2.0

	highRatingThreshold = 4.5

	// ShortlistSize caps the ranked output shown to the user.
	ShortlistSize = 5
)

// CommissionWeight derives the revenue-priority weight for a candidate.
// Plan priority when usable; 1 when a plan reference exists but its
// priority could not be resolved; 0.5 for unsubscribed shops.
func CommissionWeight(hasPlan bool, planPriority int) float64 {
	if planPriority > 0 {
		return float64(planPriority)
	}
	if hasPlan {
		return 1
	}
	return unsubscribedWeight
}

// Score computes the composite rank score. Distance-less candidates get a
// fixed boost instead of a division so they are neither dropped nor
// inflated by zero-distance artifacts.
func Score(commissionWeight, conversionRate float64, distanceKm *float64) float64 {
	base := commissionWeight * conversionRate * scoreScale
	if distanceKm != nil && *distanceKm > 0 {
		return base / *distanceKm
	}
	return base * noDistanceBoost
}

// reasonRule is one predicate->reason pair; rules are evaluated in order
// and the first match wins.
type reasonRule struct {
	matches func(*domain.ScoredShop) bool
	reason  string
}

var reasonRules = []reasonRule{
	{func(s *domain.ScoredShop) bool { return s.HasPlan && s.PlanPriority > 0 }, domain.ReasonPremiumPartner},
	{func(s *domain.ScoredShop) bool { return s.Shop.Featured }, domain.ReasonFeatured},
	{func(s *domain.ScoredShop) bool { return s.Shop.Rating >= highRatingThreshold }, domain.ReasonHighlyRated},
	{func(s *domain.ScoredShop) bool { return s.DistanceKm != nil && *s.DistanceKm < veryCloseKm }, domain.ReasonVeryClose},
	{func(s *domain.ScoredShop) bool { return true }, domain.ReasonAvailable},
}

// AssignReason picks the recommendation reason for a scored candidate.
func AssignReason(s *domain.ScoredShop) string {
	for _, rule := range reasonRules {
		if rule.matches(s) {
			return rule.reason
		}
	}
	return domain.ReasonAvailable
}

// Rank scores, orders and truncates candidates. Inputs must have HasPlan,
// PlanPriority, ConversionRate and DistanceKm populated; Score and Reason
// are filled in here. Truncation to the shortlist size happens only after
// the full sort.
func Rank(candidates []*domain.ScoredShop, priceIntent domain.PriceIntent) []*domain.ScoredShop {
	for _, c := range candidates {
		c.Score = Score(CommissionWeight(c.HasPlan, c.PlanPriority), c.ConversionRate, c.DistanceKm)
		c.Reason = AssignReason(c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return Less(candidates[i], candidates[j], priceIntent)
	})

	if len(candidates) > ShortlistSize {
		candidates = candidates[:ShortlistSize]
	}
	return candidates
}

// Less implements the total order for ranked candidates (true when a sorts
// before b). Tie-break sequence: score, paid over unpaid, then rating or
// distance depending on the caller's price intent.
func Less(a, b *domain.ScoredShop, priceIntent domain.PriceIntent) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}

	if a.HasPlan != b.HasPlan {
		return a.HasPlan
	}

	if priceIntent == domain.PriceIntentBest {
		return a.Shop.Rating > b.Shop.Rating
	}

	if priceIntent == domain.PriceIntentNearby || priceIntent == "" {
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return a.Shop.Rating > b.Shop.Rating
		case a.DistanceKm == nil:
			return false
		case b.DistanceKm == nil:
			return true
		case *a.DistanceKm != *b.DistanceKm:
			return *a.DistanceKm < *b.DistanceKm
		default:
			return a.Shop.Rating > b.Shop.Rating
		}
	}

	return a.Shop.Rating > b.Shop.Rating
}
