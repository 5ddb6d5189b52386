package market

import "fmt"

// CardsPredictor covers disciplinary markets: total and yellow card
// lines, red card counts, first card, and half-by-half timing lines.
type CardsPredictor struct{}

func (p *CardsPredictor) Family() string { return "cards" }

func (p *CardsPredictor) Predict(fv FeatureVector) []MarketPrediction {
	factor := fv.RefereeFactor * fv.ImportanceFactor * fv.RivalryFactor
	adjHome := rate(fv.HomeCardsAvg * factor)
	adjAway := rate(fv.AwayCardsAvg * factor)
	adjTotal := adjHome + adjAway

	var out []MarketPrediction

	for _, threshold := range []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5} {
		over := PoissonOver(threshold, adjTotal)
		conf := wideConfidence(adjTotal, threshold)
		reason := fmt.Sprintf("adjusted total %.1f cards", adjTotal)
		out = append(out,
			MarketPrediction{MarketType: TotalCards, Selection: fmt.Sprintf("Over %.1f", threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: TotalCards, Selection: fmt.Sprintf("Under %.1f", threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	adjYellow := rate((fv.HomeYellowAvg + fv.AwayYellowAvg) * factor)
	for _, threshold := range []float64{1.5, 2.5, 3.5, 4.5} {
		over := PoissonOver(threshold, adjYellow)
		conf := wideConfidence(adjYellow, threshold)
		reason := fmt.Sprintf("adjusted %.1f yellows", adjYellow)
		out = append(out,
			MarketPrediction{MarketType: YellowCards, Selection: fmt.Sprintf("Over %.1f", threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: YellowCards, Selection: fmt.Sprintf("Under %.1f", threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	// Red card counts on the summed red average.
	adjRed := rate((fv.HomeRedAvg + fv.AwayRedAvg) * factor)
	redConf := redCardConfidence(adjRed)
	redReason := fmt.Sprintf("adjusted %.2f reds", adjRed)
	out = append(out,
		MarketPrediction{MarketType: RedCards, Selection: "0", PredictedProbability: PoissonCDF(0, adjRed), Confidence: redConf, Reasoning: redReason},
		MarketPrediction{MarketType: RedCards, Selection: "1+", PredictedProbability: 1 - PoissonCDF(0, adjRed), Confidence: redConf, Reasoning: redReason},
		MarketPrediction{MarketType: RedCards, Selection: "2+", PredictedProbability: 1 - PoissonCDF(1, adjRed), Confidence: redConf, Reasoning: redReason},
	)

	// First card by share of the adjusted per-side rates.
	pHomeFirst := 0.5
	if adjTotal > 0 {
		pHomeFirst = adjHome / adjTotal
	}
	fcConf := shareConfidence(pHomeFirst)
	fcReason := fmt.Sprintf("home %.1f vs away %.1f cards", adjHome, adjAway)
	out = append(out,
		MarketPrediction{MarketType: FirstCard, Selection: "Home", PredictedProbability: pHomeFirst, Confidence: fcConf, Reasoning: fcReason},
		MarketPrediction{MarketType: FirstCard, Selection: "Away", PredictedProbability: 1 - pHomeFirst, Confidence: fcConf, Reasoning: fcReason},
	)

	// Timing lines: cards skew to the second half, 40/60.
	timingFactor := rate(fv.HomeCardsAvg+fv.AwayCardsAvg) * fv.RefereeFactor * fv.ImportanceFactor
	for _, t := range []struct {
		label     string
		lambda    float64
		threshold float64
	}{
		{"First Half", timingFactor * 0.4, 1.5},
		{"Second Half", timingFactor * 0.6, 2.5},
	} {
		over := PoissonOver(t.threshold, t.lambda)
		conf := wideConfidence(t.lambda, t.threshold)
		reason := fmt.Sprintf("%s rate %.1f cards", t.label, t.lambda)
		out = append(out,
			MarketPrediction{MarketType: TotalCards, Selection: fmt.Sprintf("%s Over %.1f", t.label, t.threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: TotalCards, Selection: fmt.Sprintf("%s Under %.1f", t.label, t.threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	return out
}

// wideConfidence buckets distance to the line on the wider ladder used
// for cards and corner timing lines.
func wideConfidence(lambda, threshold float64) float64 {
	d := lambda - threshold
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

func redCardConfidence(lambda float64) float64 {
	switch {
	case lambda < 0.5:
		return 0.3
	case lambda < 1.0:
		return 0.5
	default:
		return 0.7
	}
}

// shareConfidence grows with how lopsided a two-way share is.
func shareConfidence(pHome float64) float64 {
	d := pHome - (1 - pHome)
	if d < 0 {
		d = -d
	}
	return Clamp(d*2, 0, 0.8)
}
