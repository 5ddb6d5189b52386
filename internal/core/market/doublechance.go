package market

import "fmt"

// outcomeProbs derives the 1/X/2 triple shared by the double-chance and
// match-winner predictors: a logistic transform of the strength
// differential for the home win, a similarity-driven draw, the rest to
// the away side, then factor adjustment and renormalization.
func outcomeProbs(fv FeatureVector) (home, draw, away float64) {
	return outcomeProbsFor(fv, fv.HomeStrength, fv.AwayStrength)
}

func outcomeProbsFor(fv FeatureVector, homeStrength, awayStrength float64) (home, draw, away float64) {
	home = Clamp(Sigmoid(3*(homeStrength-awayStrength+fv.HomeAdvantage)), 0.05, 0.95)

	similarity := homeStrength - awayStrength
	if similarity < 0 {
		similarity = -similarity
	}
	draw = Clamp(0.25*(1-2*similarity), 0.05, 0.4)

	away = 1 - home - draw
	if away < 0 {
		away = 0
	}

	// Form and injuries move the win sides; weather dampens everything.
	sideFactor := fv.FormFactor * fv.InjuryFactor * fv.WeatherFactor
	home *= sideFactor
	away *= sideFactor
	draw *= fv.WeatherFactor

	norm := Normalize([]float64{home, draw, away})
	return norm[0], norm[1], norm[2]
}

// outcomeConfidence buckets by the spread of the outcome triple.
func outcomeConfidence(home, draw, away float64) float64 {
	max, min := home, home
	for _, v := range []float64{draw, away} {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	switch spread := max - min; {
	case spread >= 0.4:
		return 0.8
	case spread >= 0.2:
		return 0.6
	default:
		return 0.4
	}
}

// DoubleChancePredictor emits the pairwise 1X/X2/12 sums plus
// alternative lines where the strength gap is shifted by a one-goal
// handicap equivalent.
type DoubleChancePredictor struct{}

func (p *DoubleChancePredictor) Family() string { return "double_chance" }

func (p *DoubleChancePredictor) Predict(fv FeatureVector) []MarketPrediction {
	home, draw, away := outcomeProbs(fv)
	conf := outcomeConfidence(home, draw, away)

	reason := fmt.Sprintf("1 %.2f, X %.2f, 2 %.2f", home, draw, away)
	out := []MarketPrediction{
		{MarketType: DoubleChance, Selection: "1X", PredictedProbability: home + draw, Confidence: conf, Reasoning: reason},
		{MarketType: DoubleChance, Selection: "X2", PredictedProbability: draw + away, Confidence: conf, Reasoning: reason},
		{MarketType: DoubleChance, Selection: "12", PredictedProbability: home + away, Confidence: conf, Reasoning: reason},
	}

	// Alternative lines: each handicap goal shifts both strengths by 0.1.
	for _, h := range []int{-1, 1} {
		shift := float64(h) * 0.1
		ah, ad, aa := outcomeProbsFor(fv, fv.HomeStrength+shift, fv.AwayStrength-shift)
		aConf := outcomeConfidence(ah, ad, aa)
		aReason := fmt.Sprintf("line %+d: 1 %.2f, X %.2f, 2 %.2f", h, ah, ad, aa)
		out = append(out,
			MarketPrediction{MarketType: DoubleChance, Selection: fmt.Sprintf("1X %+d", h), PredictedProbability: ah + ad, Confidence: aConf, Reasoning: aReason},
			MarketPrediction{MarketType: DoubleChance, Selection: fmt.Sprintf("X2 %+d", h), PredictedProbability: ad + aa, Confidence: aConf, Reasoning: aReason},
			MarketPrediction{MarketType: DoubleChance, Selection: fmt.Sprintf("12 %+d", h), PredictedProbability: ah + aa, Confidence: aConf, Reasoning: aReason},
		)
	}

	return out
}
