package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareFeaturesDefaults(t *testing.T) {
	fv, err := PrepareFeatures(FixtureData{ID: "f1", Features: nil})
	require.NoError(t, err)

	assert.Equal(t, 0.5, fv.HomeStrength)
	assert.Equal(t, 0.5, fv.AwayStrength)
	assert.Equal(t, 0.10, fv.HomeAdvantage)
	assert.Equal(t, 1.5, fv.HomeGoalsAvg)
	assert.Equal(t, 1.2, fv.AwayGoalsAvg)
	assert.Equal(t, 5.5, fv.HomeCornersAvg)
	assert.Equal(t, 2.1, fv.HomeCardsAvg)
	assert.Equal(t, 0.1, fv.HomeRedAvg)
	assert.Equal(t, 1.0, fv.FormFactor)
	assert.Equal(t, 1.0, fv.RefereeFactor)
}

func TestPrepareFeaturesClampsRangedKeys(t *testing.T) {
	fv, err := PrepareFeatures(FixtureData{Features: map[string]float64{
		"home_strength":  1.7,
		"away_strength":  -0.2,
		"home_advantage": 0.9,
		"form_factor":    3.0,
		"weather_factor": 0.1,
	}})
	require.NoError(t, err)

	assert.Equal(t, 1.0, fv.HomeStrength)
	assert.Equal(t, 0.0, fv.AwayStrength)
	assert.Equal(t, 0.3, fv.HomeAdvantage)
	assert.Equal(t, 1.5, fv.FormFactor)
	assert.Equal(t, 0.5, fv.WeatherFactor)
}

func TestPrepareFeaturesRejectsNegativeRates(t *testing.T) {
	_, err := PrepareFeatures(FixtureData{Features: map[string]float64{
		"away_goals_avg": -0.3,
	}})
	require.Error(t, err)

	var featErr *InvalidFeatureError
	require.ErrorAs(t, err, &featErr)
	assert.Equal(t, "away_goals_avg", featErr.Key)
	assert.Equal(t, -0.3, featErr.Value)
}

func TestPrepareFeaturesKeepsZeroRates(t *testing.T) {
	fv, err := PrepareFeatures(FixtureData{Features: map[string]float64{
		"home_goals_avg": 0,
		"away_goals_avg": 0,
	}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, fv.HomeGoalsAvg)
	assert.Equal(t, 0.0, fv.AwayGoalsAvg)
}
