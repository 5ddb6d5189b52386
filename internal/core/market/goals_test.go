package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultVector(t *testing.T) FeatureVector {
	t.Helper()
	fv, err := PrepareFeatures(FixtureData{})
	require.NoError(t, err)
	return fv
}

func findPrediction(t *testing.T, preds []MarketPrediction, mt MarketType, sel string) MarketPrediction {
	t.Helper()
	for _, p := range preds {
		if p.MarketType == mt && p.Selection == sel {
			return p
		}
	}
	t.Fatalf("no prediction %s/%s", mt, sel)
	return MarketPrediction{}
}

func TestAdjustedGoalRates(t *testing.T) {
	fv := defaultVector(t)
	adjHome, adjAway := adjustedGoalRates(fv)

	// 1.5 * (1 + 0.10) home, 1.2 away, neutral factors.
	assert.InDelta(t, 1.65, adjHome, 1e-9)
	assert.InDelta(t, 1.2, adjAway, 1e-9)

	fv.WeatherFactor = 0.8
	fv.ImportanceFactor = 1.2
	adjHome, adjAway = adjustedGoalRates(fv)
	assert.InDelta(t, 1.65*0.8*1.2, adjHome, 1e-9)
	assert.InDelta(t, 1.2*0.8*1.2, adjAway, 1e-9)
}

func TestGoalsOverUnderComplement(t *testing.T) {
	preds := (&GoalsPredictor{}).Predict(defaultVector(t))

	for _, line := range []string{"0.5", "1.5", "2.5", "3.5", "4.5", "5.5"} {
		over := findPrediction(t, preds, OverUnder, "Over "+line)
		under := findPrediction(t, preds, OverUnder, "Under "+line)
		assert.InDelta(t, 1.0, over.PredictedProbability+under.PredictedProbability, 1e-9, "line %s", line)
		assert.Equal(t, over.Confidence, under.Confidence)
	}

	over25 := findPrediction(t, preds, OverUnder, "Over 2.5")
	assert.InDelta(t, 0.5424, over25.PredictedProbability, 1e-4)
	// Rate 2.85 sits within half a goal of the 2.5 line.
	assert.Equal(t, 0.8, over25.Confidence)

	over55 := findPrediction(t, preds, OverUnder, "Over 5.5")
	assert.Equal(t, 0.4, over55.Confidence)
}

func TestGoalsBothTeamsScore(t *testing.T) {
	preds := (&GoalsPredictor{}).Predict(defaultVector(t))

	yes := findPrediction(t, preds, BothTeamsScore, "Yes")
	no := findPrediction(t, preds, BothTeamsScore, "No")
	assert.InDelta(t, 0.5646, yes.PredictedProbability, 1e-4)
	assert.InDelta(t, 1.0, yes.PredictedProbability+no.PredictedProbability, 1e-9)
	// 2.85 total / 4, under the 0.8 cap.
	assert.InDelta(t, 0.7125, yes.Confidence, 1e-9)
}

func TestGoalsExactCountsCoverSupport(t *testing.T) {
	preds := (&GoalsPredictor{}).Predict(defaultVector(t))

	sum := 0.0
	for _, sel := range []string{"0", "1", "2", "3", "4", "5+"} {
		sum += findPrediction(t, preds, ExactGoals, sel).PredictedProbability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestGoalsCleanSheetNormalized(t *testing.T) {
	preds := (&GoalsPredictor{}).Predict(defaultVector(t))

	sum := 0.0
	for _, sel := range []string{"Home", "Away", "None"} {
		sum += findPrediction(t, preds, CleanSheet, sel).PredictedProbability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	home := findPrediction(t, preds, CleanSheet, "Home")
	assert.InDelta(t, 0.2847, home.PredictedProbability, 1e-4)
}

func TestGoalsZeroRatesDegenerate(t *testing.T) {
	fv := defaultVector(t)
	fv.HomeGoalsAvg = 0
	fv.AwayGoalsAvg = 0

	preds := (&GoalsPredictor{}).Predict(fv)

	over05 := findPrediction(t, preds, OverUnder, "Over 0.5")
	assert.Equal(t, 0.0, over05.PredictedProbability)

	yes := findPrediction(t, preds, BothTeamsScore, "Yes")
	assert.Equal(t, 0.0, yes.PredictedProbability)

	zero := findPrediction(t, preds, ExactGoals, "0")
	assert.Equal(t, 1.0, zero.PredictedProbability)
}
