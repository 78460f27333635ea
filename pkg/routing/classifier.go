package routing

import "strings"

// Indicator phrases for multi-step or comparative/analytical queries. Each
// occurrence pushes the complexity score up, never down.
var complexIndicators = []string{
	"compare",
	"contrast",
	"analyze",
	"explain why",
	"derive",
	"prove",
	"evaluate",
	"trade-off",
	"step by step",
	"difference between",
	"implications",
	"versus",
}

const (
	lengthWeight    = 0.35
	indicatorWeight = 0.40
	depthWeight     = 0.25

	// Saturation points for each normalized input.
	lengthSaturation    = 40.0
	indicatorSaturation = 3.0
	depthSaturation     = 12.0
)

// Classify scores a query's difficulty in [0,1] from surface heuristics:
// token count, complex indicator phrases, and conversation depth. Pure and
// deterministic; each input is independently monotonic.
func Classify(query string, historyDepth int) float64 {
	lowered := strings.ToLower(query)
	tokens := strings.Fields(lowered)

	lengthNorm := capAt1(float64(len(tokens)) / lengthSaturation)

	indicatorCount := 0
	for _, ind := range complexIndicators {
		indicatorCount += strings.Count(lowered, ind)
	}
	indicatorNorm := capAt1(float64(indicatorCount) / indicatorSaturation)

	depth := historyDepth
	if depth < 0 {
		depth = 0
	}
	depthNorm := capAt1(float64(depth) / depthSaturation)

	score := lengthWeight*lengthNorm + indicatorWeight*indicatorNorm + depthWeight*depthNorm
	return capAt1(score)
}

func capAt1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
