package market

import (
	"fmt"
	"sort"
)

// ExactScorePredictor prices scoreline grids as independent Poisson
// sides, plus the derived win-to-nil and goal-interval families.
type ExactScorePredictor struct{}

func (p *ExactScorePredictor) Family() string { return "exact_score" }

const (
	scoreGridMax       = 5
	fullTimeScorelines = 16
	halfTimeScorelines = 6
)

type scoreline struct {
	home, away int
	prob       float64
}

// scorelineGrid enumerates the grid in a fixed order and sorts by
// probability descending with the grid order breaking ties, so the
// emitted set is deterministic.
func scorelineGrid(lamHome, lamAway float64) []scoreline {
	grid := make([]scoreline, 0, (scoreGridMax+1)*(scoreGridMax+1))
	for h := 0; h <= scoreGridMax; h++ {
		for a := 0; a <= scoreGridMax; a++ {
			grid = append(grid, scoreline{
				home: h,
				away: a,
				prob: PoissonPMF(h, lamHome) * PoissonPMF(a, lamAway),
			})
		}
	}
	sort.SliceStable(grid, func(i, j int) bool {
		return grid[i].prob > grid[j].prob
	})
	return grid
}

func (p *ExactScorePredictor) Predict(fv FeatureVector) []MarketPrediction {
	adjHome, adjAway := adjustedGoalRates(fv)

	var out []MarketPrediction
	out = append(out, scoreMarkets(ExactScore, adjHome, adjAway, fullTimeScorelines, 10)...)

	// Half-time grid on 0.6-scaled rates.
	out = append(out, scoreMarkets(HalfTimeScore, adjHome*0.6, adjAway*0.6, halfTimeScorelines, 15)...)

	// Win to nil.
	homeWTN := (1 - PoissonPMF(0, adjHome)) * PoissonPMF(0, adjAway)
	awayWTN := (1 - PoissonPMF(0, adjAway)) * PoissonPMF(0, adjHome)
	wtnConf := Clamp((adjHome+adjAway)/4, 0, 0.7)
	wtnReason := fmt.Sprintf("home %.2f, away %.2f goals", adjHome, adjAway)
	out = append(out,
		MarketPrediction{MarketType: WinToNil, Selection: "Home", PredictedProbability: homeWTN, Confidence: wtnConf, Reasoning: wtnReason},
		MarketPrediction{MarketType: WinToNil, Selection: "Away", PredictedProbability: awayWTN, Confidence: wtnConf, Reasoning: wtnReason},
		MarketPrediction{MarketType: WinToNil, Selection: "Neither", PredictedProbability: 1 - homeWTN - awayWTN, Confidence: wtnConf, Reasoning: wtnReason},
	)

	// Goal intervals on the summed rate.
	adjTotal := adjHome + adjAway
	intervals := []struct {
		label  string
		lo, hi int
	}{
		{"0-1", 0, 1},
		{"2-3", 2, 3},
		{"4-5", 4, 5},
	}
	covered := 0.0
	for _, iv := range intervals {
		prob := PoissonCDF(iv.hi, adjTotal) - PoissonCDF(iv.lo-1, adjTotal)
		covered += prob
		out = append(out, MarketPrediction{
			MarketType:           GoalInterval,
			Selection:            iv.label,
			PredictedProbability: prob,
			Confidence:           Clamp(prob*6, 0, 0.8),
			Reasoning:            fmt.Sprintf("adjusted total %.2f goals", adjTotal),
		})
	}
	sixPlus := Clamp(1-covered, 0, 1)
	out = append(out, MarketPrediction{
		MarketType:           GoalInterval,
		Selection:            "6+",
		PredictedProbability: sixPlus,
		Confidence:           Clamp(sixPlus*6, 0, 0.8),
		Reasoning:            fmt.Sprintf("adjusted total %.2f goals", adjTotal),
	})

	return out
}

// scoreMarkets emits the top-K scorelines and a complementary Other
// bucket. confScale stretches scoreline probabilities into confidence.
func scoreMarkets(mt MarketType, lamHome, lamAway float64, topK int, confScale float64) []MarketPrediction {
	grid := scorelineGrid(lamHome, lamAway)
	if topK > len(grid) {
		topK = len(grid)
	}

	out := make([]MarketPrediction, 0, topK+1)
	covered := 0.0
	for _, sl := range grid[:topK] {
		covered += sl.prob
		out = append(out, MarketPrediction{
			MarketType:           mt,
			Selection:            fmt.Sprintf("%d-%d", sl.home, sl.away),
			PredictedProbability: sl.prob,
			Confidence:           Clamp(sl.prob*confScale, 0, 0.8),
			Reasoning:            fmt.Sprintf("rates %.2f / %.2f", lamHome, lamAway),
		})
	}

	other := Clamp(1-covered, 0, 1)
	out = append(out, MarketPrediction{
		MarketType:           mt,
		Selection:            "Other",
		PredictedProbability: other,
		Confidence:           Clamp(other*confScale, 0, 0.8),
		Reasoning:            fmt.Sprintf("rates %.2f / %.2f", lamHome, lamAway),
	})
	return out
}
