package advise

import (
	"errors"
	"sort"

	"github.com/charleschow/footy-advisor/internal/core/market"
)

// ErrNoRecommendations signals that filtering and ranking left nothing
// actionable; callers map it to an exit code.
var ErrNoRecommendations = errors.New("no recommendations produced")

const (
	defaultTopN          = 20
	recommendedThreshold = 0.6
)

// Engine ranks an aggregated prediction set and flags the entries worth
// acting on.
type Engine struct {
	topN int
}

func NewEngine(topN int) *Engine {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Engine{topN: topN}
}

// Score blends confidence and probability, halves anything priced in
// the extreme tails, and rewards the market families the book prices
// most efficiently.
func Score(p market.MarketPrediction) float64 {
	base := 0.6*p.Confidence + 0.4*p.PredictedProbability
	if p.PredictedProbability < 0.1 || p.PredictedProbability > 0.9 {
		base *= 0.5
	}
	bonus := 1.0
	switch p.MarketType {
	case market.OverUnder, market.BothTeamsScore:
		bonus = 1.10
	case market.AsianHandicap, market.EuropeanHandicap:
		bonus = 1.05
	}
	score := base * bonus
	if score > 1 {
		score = 1
	}
	return score
}

// Rank sorts by score with deterministic tie-breaks (confidence, market
// enum order, selection), sets the recommended flag, and returns the
// top-N slice.
func (e *Engine) Rank(set market.PredictionSet) []market.MarketPrediction {
	ranked := make([]market.MarketPrediction, len(set.Predictions))
	copy(ranked, set.Predictions)

	scores := make(map[int]float64, len(ranked))
	for i := range ranked {
		scores[i] = Score(ranked[i])
		ranked[i].Recommended = scores[i] > recommendedThreshold
	}

	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := scores[idx[a]], scores[idx[b]]
		if sa != sb {
			return sa > sb
		}
		pa, pb := ranked[idx[a]], ranked[idx[b]]
		if pa.Confidence != pb.Confidence {
			return pa.Confidence > pb.Confidence
		}
		if oa, ob := market.Order(pa.MarketType), market.Order(pb.MarketType); oa != ob {
			return oa < ob
		}
		return pa.Selection < pb.Selection
	})

	n := e.topN
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]market.MarketPrediction, 0, n)
	for _, i := range idx[:n] {
		out = append(out, ranked[i])
	}
	return out
}
