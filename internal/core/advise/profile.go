package advise

import (
	"fmt"

	"github.com/charleschow/footy-advisor/internal/core/market"
)

// RiskLevel grades either a user's appetite or an assessed exposure.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Profile is a user's sizing and filtering configuration.
type Profile struct {
	RiskLevel        string                     `json:"risk_level"`
	Bankroll         float64                    `json:"bankroll"`
	Currency         string                     `json:"currency"`
	PreferredMarkets map[market.MarketType]bool `json:"preferred_markets,omitempty"`
	MaxStakePercent  float64                    `json:"max_stake_percent"`
	MinConfidence    float64                    `json:"min_confidence"`
	MinExpectedValue float64                    `json:"min_expected_value"`
	MaxDrawdown      float64                    `json:"max_drawdown"`
	KellyFractionCap float64                    `json:"kelly_fraction_cap"`
}

// kellyFractions and maxStakes hold the per-risk-level defaults.
var (
	kellyFractions = map[string]float64{
		"conservative": 0.125,
		"moderate":     0.25,
		"aggressive":   0.50,
	}
	maxStakes = map[string]float64{
		"conservative": 0.02,
		"moderate":     0.05,
		"aggressive":   0.10,
	}
)

// DefaultProfile returns the stock profile for a risk level.
func DefaultProfile(riskLevel string, bankroll float64) (Profile, error) {
	if _, ok := kellyFractions[riskLevel]; !ok {
		return Profile{}, fmt.Errorf("unknown risk level %q", riskLevel)
	}
	return Profile{
		RiskLevel:        riskLevel,
		Bankroll:         bankroll,
		Currency:         "EUR",
		MaxStakePercent:  maxStakes[riskLevel],
		MinConfidence:    0.5,
		MinExpectedValue: 0.02,
		MaxDrawdown:      0.25,
		KellyFractionCap: 0.25,
	}, nil
}

// KellyFraction returns the fractional-Kelly multiplier for the
// profile's risk level, defaulting to moderate for unknown levels.
func (p Profile) KellyFraction() float64 {
	if f, ok := kellyFractions[p.RiskLevel]; ok {
		return f
	}
	return kellyFractions["moderate"]
}
