package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
)

func sampleInputs(t *testing.T) (market.FixtureData, market.FeatureVector, market.PredictionSet, []market.MarketPrediction, []advise.Stake, advise.Assessment) {
	t.Helper()

	fx := market.FixtureData{
		ID:          "fx-1",
		HomeTeam:    "Lyon",
		AwayTeam:    "Marseille",
		League:      "Ligue 1",
		KickoffTime: time.Date(2026, 4, 11, 20, 0, 0, 0, time.UTC),
		Currency:    "EUR",
	}
	fv, err := market.PrepareFeatures(fx)
	require.NoError(t, err)

	over := market.MarketPrediction{MarketType: market.OverUnder, Selection: "Over 2.5",
		PredictedProbability: 0.54, Confidence: 0.8, Recommended: true}
	btts := market.MarketPrediction{MarketType: market.BothTeamsScore, Selection: "Yes",
		PredictedProbability: 0.56, Confidence: 0.71, Recommended: true}
	winner := market.MarketPrediction{MarketType: market.MatchWinner, Selection: "1",
		PredictedProbability: 0.57, Confidence: 0.6}

	set := market.PredictionSet{Predictions: []market.MarketPrediction{winner, over, btts}}
	ranked := []market.MarketPrediction{over, btts, winner}
	stakes := []advise.Stake{{
		Prediction:        over,
		Odds:              2.0,
		ExpectedValue:     0.08,
		KellyFraction:     0.04,
		Amount:            40,
		PercentOfBankroll: 0.04,
		Value:             advise.ValueGood,
	}}
	risk := advise.Assess(stakes, mustProfile(t))
	return fx, fv, set, ranked, stakes, risk
}

func mustProfile(t *testing.T) advise.Profile {
	t.Helper()
	p, err := advise.DefaultProfile("moderate", 1000)
	require.NoError(t, err)
	return p
}

func TestBuildSplitsPrimaryAndAlternatives(t *testing.T) {
	fx, fv, set, ranked, stakes, risk := sampleInputs(t)
	generated := time.Date(2026, 4, 11, 18, 0, 0, 0, time.UTC)

	p := Build(fx, fv, set, ranked, stakes, risk, nil, generated)

	require.NotNil(t, p.Recommendation.Primary)
	assert.Equal(t, "Over 2.5", p.Recommendation.Primary.Selection)
	require.Len(t, p.Recommendation.Alternatives, 1)
	assert.Equal(t, "Yes", p.Recommendation.Alternatives[0].Selection)

	// The unrecommended entry appears only in the prediction list.
	assert.Len(t, p.Predictions, 3)
	assert.Equal(t, generated, p.GeneratedAt)
	assert.Equal(t, fx.ID, p.Fixture.ID)
	assert.Empty(t, p.Diagnostics)
}

func TestBuildEmptySlicesNotNil(t *testing.T) {
	fx, fv, _, _, _, risk := sampleInputs(t)

	p := Build(fx, fv, market.PredictionSet{}, nil, nil, risk, nil, time.Now())
	assert.NotNil(t, p.Predictions)
	assert.NotNil(t, p.Recommendation.Alternatives)
	assert.NotNil(t, p.Recommendation.Stakes)
	assert.Nil(t, p.Recommendation.Primary)
}

func TestBuildCarriesDiagnostics(t *testing.T) {
	fx, fv, set, ranked, stakes, risk := sampleInputs(t)

	diags := []*market.AggregationError{{Family: market.MatchWinner, Sum: 1.2, Want: 1.0}}
	p := Build(fx, fv, set, ranked, stakes, risk, diags, time.Now())
	require.Len(t, p.Diagnostics, 1)
	assert.Contains(t, p.Diagnostics[0], "match_winner")
}

func TestMarshalDeterministic(t *testing.T) {
	fx, fv, set, ranked, stakes, risk := sampleInputs(t)
	generated := time.Date(2026, 4, 11, 18, 0, 0, 0, time.UTC)

	a, err := Build(fx, fv, set, ranked, stakes, risk, nil, generated).Marshal()
	require.NoError(t, err)
	b, err := Build(fx, fv, set, ranked, stakes, risk, nil, generated).Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalParseRoundTrip(t *testing.T) {
	fx, fv, set, ranked, stakes, risk := sampleInputs(t)
	p := Build(fx, fv, set, ranked, stakes, risk, nil, time.Date(2026, 4, 11, 18, 0, 0, 0, time.UTC))

	data, err := p.Marshal()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p.Fixture, got.Fixture)
	assert.Equal(t, p.Predictions, got.Predictions)
	assert.Equal(t, p.Recommendation, got.Recommendation)
	assert.Equal(t, p.Risk, got.Risk)
	assert.True(t, p.GeneratedAt.Equal(got.GeneratedAt))
}

func TestWriterNamesAndPersists(t *testing.T) {
	fx, fv, set, ranked, stakes, risk := sampleInputs(t)
	fx.HomeTeam = "Paris SG"
	p := Build(fx, fv, set, ranked, stakes, risk, nil, time.Date(2026, 4, 11, 18, 0, 0, 0, time.UTC))

	dir := t.TempDir()
	path, err := NewWriter(dir).Write(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Paris_SG_Marseille_2026-04-11.json"), path)

	// Rewriting the same projection overwrites atomically.
	again, err := NewWriter(dir).Write(p)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}
