package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardsTotalsAndYellows(t *testing.T) {
	preds := (&CardsPredictor{}).Predict(defaultVector(t))

	// Default rate 4.1 total cards.
	over35 := findPrediction(t, preds, TotalCards, "Over 3.5")
	under35 := findPrediction(t, preds, TotalCards, "Under 3.5")
	assert.InDelta(t, 0.5858, over35.PredictedProbability, 1e-4)
	assert.InDelta(t, 1.0, over35.PredictedProbability+under35.PredictedProbability, 1e-9)
	assert.Equal(t, 0.8, over35.Confidence)

	// 3.5 yellows against the 1.5 line is two past it.
	yellow15 := findPrediction(t, preds, YellowCards, "Over 1.5")
	assert.Equal(t, 0.2, yellow15.Confidence)
}

func TestCardsRedSelections(t *testing.T) {
	preds := (&CardsPredictor{}).Predict(defaultVector(t))

	zero := findPrediction(t, preds, RedCards, "0")
	onePlus := findPrediction(t, preds, RedCards, "1+")
	twoPlus := findPrediction(t, preds, RedCards, "2+")

	// Rate 0.2 reds.
	assert.InDelta(t, 0.8187, zero.PredictedProbability, 1e-4)
	assert.InDelta(t, 1.0, zero.PredictedProbability+onePlus.PredictedProbability, 1e-9)
	assert.InDelta(t, 0.0175, twoPlus.PredictedProbability, 1e-4)
	assert.Greater(t, onePlus.PredictedProbability, twoPlus.PredictedProbability)

	// Low red rate keeps confidence low.
	assert.Equal(t, 0.3, zero.Confidence)
}

func TestCardsRedConfidenceBuckets(t *testing.T) {
	assert.Equal(t, 0.3, redCardConfidence(0.2))
	assert.Equal(t, 0.5, redCardConfidence(0.7))
	assert.Equal(t, 0.7, redCardConfidence(1.2))
}

func TestCardsFirstCardShare(t *testing.T) {
	preds := (&CardsPredictor{}).Predict(defaultVector(t))

	home := findPrediction(t, preds, FirstCard, "Home")
	away := findPrediction(t, preds, FirstCard, "Away")
	assert.InDelta(t, 2.1/4.1, home.PredictedProbability, 1e-9)
	assert.InDelta(t, 1.0, home.PredictedProbability+away.PredictedProbability, 1e-9)
	// Near-even share gives near-zero confidence.
	assert.Less(t, home.Confidence, 0.1)
}

func TestCardsTimingLines(t *testing.T) {
	preds := (&CardsPredictor{}).Predict(defaultVector(t))

	fhOver := findPrediction(t, preds, TotalCards, "First Half Over 1.5")
	fhUnder := findPrediction(t, preds, TotalCards, "First Half Under 1.5")
	shOver := findPrediction(t, preds, TotalCards, "Second Half Over 2.5")
	assert.InDelta(t, 1.0, fhOver.PredictedProbability+fhUnder.PredictedProbability, 1e-9)

	// Second half carries the larger share of the card rate.
	fhRate := 4.1 * 0.4
	shRate := 4.1 * 0.6
	assert.InDelta(t, PoissonOver(1.5, fhRate), fhOver.PredictedProbability, 1e-9)
	assert.InDelta(t, PoissonOver(2.5, shRate), shOver.PredictedProbability, 1e-9)
}

func TestCardsFactorScaling(t *testing.T) {
	fv := defaultVector(t)
	fv.RefereeFactor = 1.4
	fv.RivalryFactor = 1.3

	base := findPrediction(t, (&CardsPredictor{}).Predict(defaultVector(t)), TotalCards, "Over 4.5")
	hot := findPrediction(t, (&CardsPredictor{}).Predict(fv), TotalCards, "Over 4.5")
	assert.Greater(t, hot.PredictedProbability, base.PredictedProbability)
}
