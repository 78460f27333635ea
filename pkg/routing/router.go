package routing

// Tier is a cost/quality level of the generation service.
type Tier string

const (
	TierFast Tier = "fast"
	TierDeep Tier = "deep"
)

// DefaultThreshold is the complexity score at which routing flips to the
// expensive tier.
const DefaultThreshold = 0.5

// Route maps a complexity score to a generation tier. Monotonic by
// construction: a higher score never routes to a cheaper tier.
func Route(complexityScore, threshold float64) Tier {
	if complexityScore < threshold {
		return TierFast
	}
	return TierDeep
}
