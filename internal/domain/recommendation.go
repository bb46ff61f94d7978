package domain

// Recommendation reasons, in precedence order. The first matching rule wins;
// see ranking.AssignReason.
const (
	ReasonPremiumPartner = "verified partner with premium plan"
	ReasonFeatured       = "featured shop"
	ReasonHighlyRated    = "highly rated"
	ReasonVeryClose      = "very close"
	ReasonAvailable      = "available"
)

// ScoredShop is a Shop enriched with the ranking inputs and the resulting
// composite score. DistanceKm is nil when the caller supplied no location
// or the shop has none.
type ScoredShop struct {
	Shop           *Shop
	DistanceKm     *float64
	PlanPriority   int
	HasPlan        bool
	ConversionRate float64
	Score          float64
	Reason         string
}
