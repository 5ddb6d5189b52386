package market

// MarketType is the closed set of betting market tags the engine emits.
type MarketType string

const (
	MatchWinner      MarketType = "match_winner"
	DoubleChance     MarketType = "double_chance"
	OverUnder        MarketType = "over_under"
	BothTeamsScore   MarketType = "both_teams_score"
	ExactGoals       MarketType = "exact_goals"
	FirstHalfGoals   MarketType = "first_half_goals"
	AsianHandicap    MarketType = "asian_handicap"
	EuropeanHandicap MarketType = "european_handicap"
	ExactScore       MarketType = "exact_score"
	HalfTimeScore    MarketType = "half_time_score"
	WinToNil         MarketType = "win_to_nil"
	CleanSheet       MarketType = "clean_sheet"
	TotalCards       MarketType = "total_cards"
	YellowCards      MarketType = "yellow_cards"
	RedCards         MarketType = "red_cards"
	FirstCard        MarketType = "first_card"
	CornerHandicap   MarketType = "corner_handicap"
	TotalCorners     MarketType = "total_corners"
	FirstCorner      MarketType = "first_corner"
	GoalInterval     MarketType = "goal_interval"
)

// marketOrder fixes the enum order used for deterministic tie-breaking.
var marketOrder = []MarketType{
	MatchWinner, DoubleChance, OverUnder, BothTeamsScore, ExactGoals,
	FirstHalfGoals, AsianHandicap, EuropeanHandicap, ExactScore,
	HalfTimeScore, WinToNil, CleanSheet, TotalCards, YellowCards,
	RedCards, FirstCard, CornerHandicap, TotalCorners, FirstCorner,
	GoalInterval,
}

var marketIndex = func() map[MarketType]int {
	m := make(map[MarketType]int, len(marketOrder))
	for i, mt := range marketOrder {
		m[mt] = i
	}
	return m
}()

// Order returns the position of mt in the fixed enum order.
// Unknown tags sort last.
func Order(mt MarketType) int {
	if i, ok := marketIndex[mt]; ok {
		return i
	}
	return len(marketOrder)
}

// MarketPrediction is one selection within a market, with its model
// probability. ExpectedValue and KellyFraction stay zero until the
// sizing engine prices the selection against real odds.
type MarketPrediction struct {
	MarketType           MarketType `json:"market_type"`
	Selection            string     `json:"selection"`
	PredictedProbability float64    `json:"predicted_probability"`
	Confidence           float64    `json:"confidence"`
	ExpectedValue        float64    `json:"expected_value"`
	KellyFraction        float64    `json:"kelly_fraction"`
	Recommended          bool       `json:"recommended"`
	Reasoning            string     `json:"reasoning,omitempty"`
}

// PredictionSet is the aggregator output: predictions in predictor
// declaration order, after dedup, caps, and the confidence floor.
type PredictionSet struct {
	Predictions []MarketPrediction `json:"predictions"`
}

// Families returns the distinct market types present, in enum order.
func (ps PredictionSet) Families() []MarketType {
	seen := make(map[MarketType]bool)
	var out []MarketType
	for _, mt := range marketOrder {
		seen[mt] = false
	}
	for _, p := range ps.Predictions {
		if !seen[p.MarketType] {
			seen[p.MarketType] = true
		}
	}
	for _, mt := range marketOrder {
		if seen[mt] {
			out = append(out, mt)
		}
	}
	return out
}
