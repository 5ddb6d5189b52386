package advise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/footy-advisor/internal/core/market"
)

func TestScoreBlendAndBonus(t *testing.T) {
	base := market.MarketPrediction{
		MarketType:           market.MatchWinner,
		PredictedProbability: 0.5,
		Confidence:           0.8,
	}
	// 0.6*0.8 + 0.4*0.5 = 0.68, no bonus.
	assert.InDelta(t, 0.68, Score(base), 1e-9)

	ou := base
	ou.MarketType = market.OverUnder
	assert.InDelta(t, 0.68*1.10, Score(ou), 1e-9)

	ah := base
	ah.MarketType = market.AsianHandicap
	assert.InDelta(t, 0.68*1.05, Score(ah), 1e-9)
}

func TestScoreHalvesExtremeTails(t *testing.T) {
	tail := market.MarketPrediction{
		MarketType:           market.ExactScore,
		PredictedProbability: 0.05,
		Confidence:           0.8,
	}
	assert.InDelta(t, (0.6*0.8+0.4*0.05)*0.5, Score(tail), 1e-9)
}

func TestScoreCapsAtOne(t *testing.T) {
	p := market.MarketPrediction{
		MarketType:           market.OverUnder,
		PredictedProbability: 0.9,
		Confidence:           1.0,
	}
	assert.Equal(t, 1.0, Score(p))
}

func TestRankOrdersAndFlags(t *testing.T) {
	set := market.PredictionSet{Predictions: []market.MarketPrediction{
		{MarketType: market.ExactScore, Selection: "1-1", PredictedProbability: 0.11, Confidence: 0.3},
		{MarketType: market.OverUnder, Selection: "Over 2.5", PredictedProbability: 0.54, Confidence: 0.8},
		{MarketType: market.MatchWinner, Selection: "1", PredictedProbability: 0.57, Confidence: 0.6},
	}}

	ranked := NewEngine(0).Rank(set)
	require.Len(t, ranked, 3)

	// Over 2.5: (0.6*0.8+0.4*0.54)*1.10 = 0.766, top and recommended.
	assert.Equal(t, "Over 2.5", ranked[0].Selection)
	assert.True(t, ranked[0].Recommended)

	// Match winner: 0.6*0.6+0.4*0.57 = 0.588, below the threshold.
	assert.Equal(t, "1", ranked[1].Selection)
	assert.False(t, ranked[1].Recommended)

	// Tail-halved scoreline sorts last.
	assert.Equal(t, "1-1", ranked[2].Selection)
	assert.False(t, ranked[2].Recommended)
}

func TestRankDeterministicTieBreaks(t *testing.T) {
	// Identical score and confidence: market enum order, then selection.
	set := market.PredictionSet{Predictions: []market.MarketPrediction{
		{MarketType: market.TotalCorners, Selection: "Over 10.5", PredictedProbability: 0.5, Confidence: 0.5},
		{MarketType: market.TotalCards, Selection: "Over 3.5", PredictedProbability: 0.5, Confidence: 0.5},
		{MarketType: market.TotalCards, Selection: "Over 2.5", PredictedProbability: 0.5, Confidence: 0.5},
	}}

	for i := 0; i < 5; i++ {
		ranked := NewEngine(0).Rank(set)
		require.Len(t, ranked, 3)
		assert.Equal(t, "Over 2.5", ranked[0].Selection)
		assert.Equal(t, "Over 3.5", ranked[1].Selection)
		assert.Equal(t, market.TotalCorners, ranked[2].MarketType)
	}
}

func TestRankTopN(t *testing.T) {
	set := market.PredictionSet{Predictions: []market.MarketPrediction{
		{MarketType: market.OverUnder, Selection: "Over 1.5", PredictedProbability: 0.8, Confidence: 0.8},
		{MarketType: market.OverUnder, Selection: "Over 2.5", PredictedProbability: 0.54, Confidence: 0.8},
		{MarketType: market.OverUnder, Selection: "Over 3.5", PredictedProbability: 0.3, Confidence: 0.6},
	}}

	ranked := NewEngine(2).Rank(set)
	assert.Len(t, ranked, 2)
}
