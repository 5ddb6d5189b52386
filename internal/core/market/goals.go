package market

import "fmt"

// GoalsPredictor covers the goal-count families: over/under lines,
// BTTS, exact goal counts, first-half lines, and clean sheets.
type GoalsPredictor struct{}

func (p *GoalsPredictor) Family() string { return "goals" }

// adjustedGoalRates applies the shared goal-rate adjustments: home
// advantage on the home side, weather and importance on both.
func adjustedGoalRates(fv FeatureVector) (adjHome, adjAway float64) {
	adjHome = rate(fv.HomeGoalsAvg * (1 + fv.HomeAdvantage) * fv.WeatherFactor * fv.ImportanceFactor)
	adjAway = rate(fv.AwayGoalsAvg * fv.WeatherFactor * fv.ImportanceFactor)
	return adjHome, adjAway
}

func (p *GoalsPredictor) Predict(fv FeatureVector) []MarketPrediction {
	adjHome, adjAway := adjustedGoalRates(fv)
	adjTotal := adjHome + adjAway

	var out []MarketPrediction

	// Over/Under lines on total goals.
	for _, threshold := range []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5} {
		over := PoissonOver(threshold, adjTotal)
		conf := overUnderConfidence(adjTotal, threshold)
		reason := fmt.Sprintf("adjusted total %.2f goals", adjTotal)
		out = append(out,
			MarketPrediction{MarketType: OverUnder, Selection: fmt.Sprintf("Over %.1f", threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: OverUnder, Selection: fmt.Sprintf("Under %.1f", threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	// Both teams to score.
	bttsYes := (1 - PoissonPMF(0, adjHome)) * (1 - PoissonPMF(0, adjAway))
	bttsConf := Clamp(adjTotal/4, 0, 0.8)
	bttsReason := fmt.Sprintf("home %.2f, away %.2f goals", adjHome, adjAway)
	out = append(out,
		MarketPrediction{MarketType: BothTeamsScore, Selection: "Yes", PredictedProbability: bttsYes, Confidence: bttsConf, Reasoning: bttsReason},
		MarketPrediction{MarketType: BothTeamsScore, Selection: "No", PredictedProbability: 1 - bttsYes, Confidence: bttsConf, Reasoning: bttsReason},
	)

	// Exact total goals 0..4 and 5+.
	for k := 0; k <= 4; k++ {
		prob := PoissonPMF(k, adjTotal)
		out = append(out, MarketPrediction{
			MarketType:           ExactGoals,
			Selection:            fmt.Sprintf("%d", k),
			PredictedProbability: prob,
			Confidence:           Clamp(prob*3, 0, 0.8),
			Reasoning:            fmt.Sprintf("adjusted total %.2f goals", adjTotal),
		})
	}
	fivePlus := 1 - PoissonCDF(4, adjTotal)
	out = append(out, MarketPrediction{
		MarketType:           ExactGoals,
		Selection:            "5+",
		PredictedProbability: fivePlus,
		Confidence:           Clamp(fivePlus*3, 0, 0.8),
		Reasoning:            fmt.Sprintf("adjusted total %.2f goals", adjTotal),
	})

	// First-half lines on a 0.6-scaled total rate.
	fhTotal := adjTotal * 0.6
	for _, threshold := range []float64{0.5, 1.5} {
		over := PoissonOver(threshold, fhTotal)
		conf := overUnderConfidence(fhTotal, threshold)
		reason := fmt.Sprintf("first-half rate %.2f goals", fhTotal)
		out = append(out,
			MarketPrediction{MarketType: FirstHalfGoals, Selection: fmt.Sprintf("Over %.1f", threshold), PredictedProbability: over, Confidence: conf, Reasoning: reason},
			MarketPrediction{MarketType: FirstHalfGoals, Selection: fmt.Sprintf("Under %.1f", threshold), PredictedProbability: 1 - over, Confidence: conf, Reasoning: reason},
		)
	}

	// Clean sheets, normalized to a triple.
	homeCS := PoissonPMF(0, adjAway)
	awayCS := PoissonPMF(0, adjHome)
	none := (1 - homeCS) * (1 - awayCS)
	cs := Normalize([]float64{homeCS, awayCS, none})
	csConf := Clamp(adjTotal/4, 0, 0.7)
	csReason := fmt.Sprintf("home concedes %.2f, away concedes %.2f", adjAway, adjHome)
	for i, sel := range []string{"Home", "Away", "None"} {
		out = append(out, MarketPrediction{
			MarketType:           CleanSheet,
			Selection:            sel,
			PredictedProbability: cs[i],
			Confidence:           csConf,
			Reasoning:            csReason,
		})
	}

	return out
}

// overUnderConfidence buckets confidence by how close the adjusted rate
// sits to the line.
func overUnderConfidence(lambda, threshold float64) float64 {
	d := lambda - threshold
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 0.5:
		return 0.8
	case d <= 1.0:
		return 0.6
	default:
		return 0.4
	}
}
