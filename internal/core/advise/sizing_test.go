package advise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/footy-advisor/internal/core/market"
)

func aggressiveProfile(t *testing.T) Profile {
	t.Helper()
	p, err := DefaultProfile("aggressive", 1000)
	require.NoError(t, err)
	return p
}

func TestClassifyValue(t *testing.T) {
	assert.Equal(t, ValueExcellent, ClassifyValue(0.15))
	assert.Equal(t, ValueExcellent, ClassifyValue(0.10))
	assert.Equal(t, ValueGood, ClassifyValue(0.07))
	assert.Equal(t, ValuePositive, ClassifyValue(0.01))
	assert.Equal(t, ValueNeutral, ClassifyValue(0))
	assert.Equal(t, ValueNegative, ClassifyValue(-0.05))
}

func TestSizeAllKellyChain(t *testing.T) {
	// Raw Kelly 0.646 caps at 0.25, halves to 0.125 for aggressive,
	// full-confidence attenuation leaves it; 125 then clamps to the
	// 10% stake ceiling.
	ranked := []market.MarketPrediction{{
		MarketType:           market.OverUnder,
		Selection:            "Over 2.5",
		PredictedProbability: 0.8,
		Confidence:           0.8,
		Recommended:          true,
	}}
	odds := OddsTable{{Market: market.OverUnder, Selection: "Over 2.5"}: 2.3}

	stakes := SizeAll(ranked, odds, aggressiveProfile(t))
	require.Len(t, stakes, 1)

	s := stakes[0]
	assert.InDelta(t, 0.84, s.ExpectedValue, 1e-9)
	assert.InDelta(t, 0.125, s.KellyFraction, 1e-9)
	assert.InDelta(t, 100.0, s.Amount, 1e-9)
	assert.InDelta(t, 0.10, s.PercentOfBankroll, 1e-9)
	assert.Equal(t, ValueExcellent, s.Value)

	// The embedded prediction carries the sized numbers.
	assert.InDelta(t, 0.84, s.Prediction.ExpectedValue, 1e-9)
	assert.InDelta(t, 0.125, s.Prediction.KellyFraction, 1e-9)
}

func TestSizeAllConfidenceAttenuation(t *testing.T) {
	ranked := []market.MarketPrediction{{
		MarketType:           market.OverUnder,
		Selection:            "Over 2.5",
		PredictedProbability: 0.8,
		Confidence:           0.4,
		Recommended:          true,
	}}
	odds := OddsTable{{Market: market.OverUnder, Selection: "Over 2.5"}: 2.3}

	stakes := SizeAll(ranked, odds, aggressiveProfile(t))
	require.Len(t, stakes, 1)

	// Half the confidence reference halves the fraction: 0.0625 of
	// bankroll, inside the clamps.
	assert.InDelta(t, 0.0625, stakes[0].KellyFraction, 1e-9)
	assert.InDelta(t, 62.5, stakes[0].Amount, 1e-9)
}

func TestSizeAllMinimumStakeFloor(t *testing.T) {
	// Negative edge: raw Kelly clamps to zero, stake floors at 0.1%.
	ranked := []market.MarketPrediction{{
		MarketType:           market.MatchWinner,
		Selection:            "1",
		PredictedProbability: 0.4,
		Confidence:           0.8,
		Recommended:          true,
	}}
	odds := OddsTable{{Market: market.MatchWinner, Selection: "1"}: 2.0}

	stakes := SizeAll(ranked, odds, aggressiveProfile(t))
	require.Len(t, stakes, 1)
	assert.Equal(t, 0.0, stakes[0].KellyFraction)
	assert.InDelta(t, 1.0, stakes[0].Amount, 1e-9)
	assert.Equal(t, ValueNegative, stakes[0].Value)
}

func TestSizeAllSkipsUnpricedAndUnrecommended(t *testing.T) {
	ranked := []market.MarketPrediction{
		{MarketType: market.OverUnder, Selection: "Over 2.5", PredictedProbability: 0.6, Confidence: 0.8, Recommended: false},
		{MarketType: market.MatchWinner, Selection: "1", PredictedProbability: 0.6, Confidence: 0.8, Recommended: true},
		{MarketType: market.TotalCards, Selection: "Over 3.5", PredictedProbability: 0.6, Confidence: 0.8, Recommended: true},
	}
	odds := OddsTable{
		{Market: market.OverUnder, Selection: "Over 2.5"}:  1.9,
		{Market: market.TotalCards, Selection: "Over 3.5"}: 1.005, // below the tradable floor
	}

	stakes := SizeAll(ranked, odds, aggressiveProfile(t))
	assert.Empty(t, stakes)
}

func TestSizeAllPreferredMarketsFilter(t *testing.T) {
	ranked := []market.MarketPrediction{
		{MarketType: market.OverUnder, Selection: "Over 2.5", PredictedProbability: 0.6, Confidence: 0.8, Recommended: true},
		{MarketType: market.TotalCards, Selection: "Over 3.5", PredictedProbability: 0.6, Confidence: 0.8, Recommended: true},
	}
	odds := OddsTable{
		{Market: market.OverUnder, Selection: "Over 2.5"}:  1.9,
		{Market: market.TotalCards, Selection: "Over 3.5"}: 1.9,
	}

	profile := aggressiveProfile(t)
	profile.PreferredMarkets = map[market.MarketType]bool{market.OverUnder: true}

	stakes := SizeAll(ranked, odds, profile)
	require.Len(t, stakes, 1)
	assert.Equal(t, market.OverUnder, stakes[0].Prediction.MarketType)
}

func TestDefaultProfileLevels(t *testing.T) {
	conservative, err := DefaultProfile("conservative", 500)
	require.NoError(t, err)
	assert.Equal(t, 0.02, conservative.MaxStakePercent)
	assert.Equal(t, 0.125, conservative.KellyFraction())

	moderate, err := DefaultProfile("moderate", 500)
	require.NoError(t, err)
	assert.Equal(t, 0.05, moderate.MaxStakePercent)
	assert.Equal(t, 0.25, moderate.KellyFraction())

	_, err = DefaultProfile("reckless", 500)
	assert.Error(t, err)
}
