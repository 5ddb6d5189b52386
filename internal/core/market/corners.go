package market

import "fmt"

// CornersPredictor covers corner markets: total lines, integer
// handicaps, first corner, timing lines, and race-to-N.
type CornersPredictor struct{}

func (p *CornersPredictor) Family() string { return "corners" }

func (p *CornersPredictor) Predict(fv FeatureVector) []MarketPrediction {
	adjTotal := rate((fv.HomeCornersAvg + fv.AwayCornersAvg) *
		fv.PossessionFactor * fv.StyleFactor * fv.WeatherFactor * fv.ImportanceFactor)

	var out []MarketPrediction

	for _, threshold := range []float64{8.5, 9.5, 10.5, 11.5, 12.5, 13.5} {
		over := PoissonOver(threshold, adjTotal)
		conf := cornersConfidence(adjTotal, threshold)
		reason := fmt.Sprintf("adjusted total %.1f corners", adjTotal)
		out = append(out,
			MarketPrediction{MarketType: TotalCorners, Selection: fmt.Sprintf("Over %.1f", threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: TotalCorners, Selection: fmt.Sprintf("Under %.1f", threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	// Integer handicaps on the possession/style-adjusted differential.
	adjDiff := (fv.HomeCornersAvg - fv.AwayCornersAvg) * fv.PossessionFactor * fv.StyleFactor
	for h := -2; h <= 2; h++ {
		pHome := handicapHomeProb(float64(h), adjDiff, 0.2, 0.4)
		conf := cornerHandicapConfidence(adjDiff, float64(h))
		reason := fmt.Sprintf("corner diff %.1f, line %+d", adjDiff, h)
		out = append(out,
			MarketPrediction{MarketType: CornerHandicap, Selection: fmt.Sprintf("Home %+d", h), PredictedProbability: pHome, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: CornerHandicap, Selection: fmt.Sprintf("Away %+d", -h), PredictedProbability: 1 - pHome, Confidence: conf, Reasoning: reason},
		)
	}

	adjHome := rate(fv.HomeCornersAvg * fv.PossessionFactor * fv.StyleFactor)
	adjAway := rate(fv.AwayCornersAvg * fv.PossessionFactor * fv.StyleFactor)
	share := 0.5
	if adjHome+adjAway > 0 {
		share = adjHome / (adjHome + adjAway)
	}

	fcConf := shareConfidence(share)
	fcReason := fmt.Sprintf("home %.1f vs away %.1f corners", adjHome, adjAway)
	out = append(out,
		MarketPrediction{MarketType: FirstCorner, Selection: "Home", PredictedProbability: share, Confidence: fcConf, Reasoning: fcReason},
		MarketPrediction{MarketType: FirstCorner, Selection: "Away", PredictedProbability: 1 - share, Confidence: fcConf, Reasoning: fcReason},
	)

	// Timing lines: corners split 45/55 across the halves.
	for _, t := range []struct {
		label     string
		lambda    float64
		threshold float64
	}{
		{"First Half", adjTotal * 0.45, 4.5},
		{"Second Half", adjTotal * 0.55, 5.5},
	} {
		over := PoissonOver(t.threshold, t.lambda)
		conf := cornersConfidence(t.lambda, t.threshold)
		reason := fmt.Sprintf("%s rate %.1f corners", t.label, t.lambda)
		out = append(out,
			MarketPrediction{MarketType: TotalCorners, Selection: fmt.Sprintf("%s Over %.1f", t.label, t.threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: TotalCorners, Selection: fmt.Sprintf("%s Under %.1f", t.label, t.threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	// Race-to-N by rate share.
	for _, race := range []int{3, 5, 7, 9} {
		reason := fmt.Sprintf("home share %.2f of corners", share)
		out = append(out,
			MarketPrediction{MarketType: FirstCorner, Selection: fmt.Sprintf("Home First to %d", race), PredictedProbability: share, Confidence: fcConf, Reasoning: reason},
			MarketPrediction{MarketType: FirstCorner, Selection: fmt.Sprintf("Away First to %d", race), PredictedProbability: 1 - share, Confidence: fcConf, Reasoning: reason},
		)
	}

	return out
}

func cornersConfidence(lambda, threshold float64) float64 {
	d := lambda - threshold
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 1.0:
		return 0.8
	case d <= 2.0:
		return 0.6
	case d <= 3.0:
		return 0.4
	default:
		return 0.2
	}
}

func cornerHandicapConfidence(diff, line float64) float64 {
	d := diff - line
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 1.0:
		return 0.7
	case d <= 2.0:
		return 0.5
	default:
		return 0.3
	}
}
