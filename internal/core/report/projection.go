package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
)

// FixtureRef identifies the fixture inside a projection.
type FixtureRef struct {
	ID          string    `json:"id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	League      string    `json:"league"`
	KickoffTime time.Time `json:"kickoff_time"`
	Currency    string    `json:"currency"`
}

// Recommendation is the advisory block of a projection: the primary
// pick, its alternatives, and the sized stakes.
type Recommendation struct {
	Primary      *market.MarketPrediction  `json:"primary,omitempty"`
	Alternatives []market.MarketPrediction `json:"alternatives"`
	Stakes       []advise.Stake            `json:"stakes"`
	RiskLevel    advise.RiskLevel          `json:"risk_level"`
}

// Projection is the language-neutral record handed to report writers
// and prediction-kind notification payloads. Field order is the JSON
// key order; timestamps serialize as UTC RFC 3339.
type Projection struct {
	Fixture        FixtureRef                `json:"fixture"`
	Features       market.FeatureVector      `json:"features"`
	Predictions    []market.MarketPrediction `json:"predictions"`
	Recommendation Recommendation            `json:"recommendation"`
	Risk           advise.Assessment         `json:"risk"`
	Diagnostics    []string                  `json:"diagnostics,omitempty"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

// Build assembles a projection from the pipeline stages. ranked is the
// top-N recommendation order; the first recommended entry becomes the
// primary pick.
func Build(
	fx market.FixtureData,
	fv market.FeatureVector,
	set market.PredictionSet,
	ranked []market.MarketPrediction,
	stakes []advise.Stake,
	risk advise.Assessment,
	diags []*market.AggregationError,
	generatedAt time.Time,
) Projection {
	p := Projection{
		Fixture: FixtureRef{
			ID:          fx.ID,
			HomeTeam:    fx.HomeTeam,
			AwayTeam:    fx.AwayTeam,
			League:      fx.League,
			KickoffTime: fx.KickoffTime.UTC(),
			Currency:    fx.Currency,
		},
		Features:    fv,
		Predictions: set.Predictions,
		Recommendation: Recommendation{
			Alternatives: []market.MarketPrediction{},
			Stakes:       stakes,
			RiskLevel:    risk.Overall,
		},
		Risk:        risk,
		GeneratedAt: generatedAt.UTC(),
	}
	if p.Predictions == nil {
		p.Predictions = []market.MarketPrediction{}
	}
	if p.Recommendation.Stakes == nil {
		p.Recommendation.Stakes = []advise.Stake{}
	}

	for i, r := range ranked {
		if !r.Recommended {
			continue
		}
		if p.Recommendation.Primary == nil {
			primary := ranked[i]
			p.Recommendation.Primary = &primary
			continue
		}
		p.Recommendation.Alternatives = append(p.Recommendation.Alternatives, r)
	}

	for _, d := range diags {
		p.Diagnostics = append(p.Diagnostics, d.Error())
	}
	return p
}

// Marshal renders the projection as stable, indented JSON. Struct field
// order fixes the key order, so identical inputs yield identical bytes.
func (p Projection) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal projection: %w", err)
	}
	return data, nil
}

// Parse decodes a serialized projection.
func Parse(data []byte) (Projection, error) {
	var p Projection
	if err := json.Unmarshal(data, &p); err != nil {
		return Projection{}, fmt.Errorf("parse projection: %w", err)
	}
	return p, nil
}
