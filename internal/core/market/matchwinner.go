package market

import "fmt"

// MatchWinnerPredictor emits the plain 1/X/2 triple from the shared
// outcome derivation.
type MatchWinnerPredictor struct{}

func (p *MatchWinnerPredictor) Family() string { return "match_winner" }

func (p *MatchWinnerPredictor) Predict(fv FeatureVector) []MarketPrediction {
	home, draw, away := outcomeProbs(fv)
	conf := outcomeConfidence(home, draw, away)
	reason := fmt.Sprintf("home strength %.2f, away %.2f, advantage %.2f",
		fv.HomeStrength, fv.AwayStrength, fv.HomeAdvantage)

	return []MarketPrediction{
		{MarketType: MatchWinner, Selection: "1", PredictedProbability: home, Confidence: conf, Reasoning: reason},
		{MarketType: MatchWinner, Selection: "X", PredictedProbability: draw, Confidence: conf, Reasoning: reason},
		{MarketType: MatchWinner, Selection: "2", PredictedProbability: away, Confidence: conf, Reasoning: reason},
	}
}
