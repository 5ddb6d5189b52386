package market

import "fmt"

// HandicapPredictor prices Asian half-goal lines and European integer
// lines from the strength differential. Integer Asian lines are not
// offered, so push outcomes never arise.
type HandicapPredictor struct{}

func (p *HandicapPredictor) Family() string { return "handicap" }

var (
	asianLines    = []float64{-2.5, -1.5, -0.5, 0.5, 1.5, 2.5}
	europeanLines = []int{-3, -2, -1, 0, 1, 2, 3}
)

func (p *HandicapPredictor) Predict(fv FeatureVector) []MarketPrediction {
	diff := (fv.HomeStrength - fv.AwayStrength + fv.HomeAdvantage) *
		fv.FormFactor * fv.InjuryFactor * fv.WeatherFactor

	var out []MarketPrediction

	for _, h := range asianLines {
		pHome := handicapHomeProb(h, diff, 0.3, 0.4)
		conf := handicapConfidence(diff, h)
		reason := fmt.Sprintf("strength diff %.2f, line %+.1f", diff, h)
		out = append(out,
			MarketPrediction{MarketType: AsianHandicap, Selection: fmt.Sprintf("Home %+.1f", h), PredictedProbability: pHome, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: AsianHandicap, Selection: fmt.Sprintf("Away %+.1f", -h), PredictedProbability: 1 - pHome, Confidence: conf, Reasoning: reason},
		)
	}

	for _, h := range europeanLines {
		pHome := handicapHomeProb(float64(h), diff, 0.25, 0.45)
		conf := handicapConfidence(diff, float64(h))
		reason := fmt.Sprintf("strength diff %.2f, line %+d", diff, h)
		out = append(out,
			MarketPrediction{MarketType: EuropeanHandicap, Selection: fmt.Sprintf("Home %+d", h), PredictedProbability: pHome, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: EuropeanHandicap, Selection: fmt.Sprintf("Away %+d", -h), PredictedProbability: 1 - pHome, Confidence: conf, Reasoning: reason},
		)
	}

	return out
}

// handicapHomeProb maps the effective line linearly around 0.5. The
// slope contribution is capped before the final probability clamp.
func handicapHomeProb(line, diff, slope, cap float64) float64 {
	effective := line - diff
	adj := Clamp(effective*slope, -cap, cap)
	return Clamp(0.5+adj, 0.05, 0.95)
}

func handicapConfidence(diff, line float64) float64 {
	d := diff - line
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 0.5:
		return 0.8
	case d <= 1.0:
		return 0.6
	case d <= 1.5:
		return 0.4
	default:
		return 0.2
	}
}
