package advise

import (
	"github.com/charleschow/footy-advisor/internal/core/market"
)

// ValueClass buckets expected value.
type ValueClass string

const (
	ValueExcellent ValueClass = "excellent"
	ValueGood      ValueClass = "good"
	ValuePositive  ValueClass = "positive"
	ValueNeutral   ValueClass = "neutral"
	ValueNegative  ValueClass = "negative"
)

// ClassifyValue maps an expected value to its class.
func ClassifyValue(ev float64) ValueClass {
	switch {
	case ev >= 0.10:
		return ValueExcellent
	case ev >= 0.05:
		return ValueGood
	case ev > 0:
		return ValuePositive
	case ev == 0:
		return ValueNeutral
	default:
		return ValueNegative
	}
}

// OddsKey addresses one priced selection.
type OddsKey struct {
	Market    market.MarketType
	Selection string
}

// OddsTable maps selections to decimal odds. Missing entries mean the
// selection is unpriced and is skipped by sizing.
type OddsTable map[OddsKey]float64

// Stake is a sized recommendation for one priced selection.
type Stake struct {
	Prediction        market.MarketPrediction `json:"prediction"`
	Odds              float64                 `json:"odds"`
	ExpectedValue     float64                 `json:"expected_value"`
	KellyFraction     float64                 `json:"kelly_fraction"`
	Amount            float64                 `json:"amount"`
	PercentOfBankroll float64                 `json:"percent_of_bankroll"`
	Value             ValueClass              `json:"value_classification"`
}

const minStakePercent = 0.001

// SizeAll computes fractional-Kelly stakes for the recommended, priced
// predictions in ranked order. A non-empty preferred-market set in the
// profile restricts staking to those markets. The Kelly chain: raw
// Kelly clamped to the profile cap, times the risk-level fraction,
// times confidence attenuation, then the absolute stake clamps.
func SizeAll(ranked []market.MarketPrediction, odds OddsTable, profile Profile) []Stake {
	var out []Stake
	for _, p := range ranked {
		if !p.Recommended {
			continue
		}
		if len(profile.PreferredMarkets) > 0 && !profile.PreferredMarkets[p.MarketType] {
			continue
		}
		o, priced := odds[OddsKey{Market: p.MarketType, Selection: p.Selection}]
		if !priced || o < 1.01 {
			continue
		}

		ev := p.PredictedProbability*o - 1

		kelly := (p.PredictedProbability*o - 1) / (o - 1)
		kelly = market.Clamp(kelly, 0, profile.KellyFractionCap)
		kelly *= profile.KellyFraction()
		kelly *= market.Clamp(p.Confidence/0.8, 0, 1)

		amount := profile.Bankroll * kelly
		amount = market.Clamp(amount, profile.Bankroll*minStakePercent, profile.Bankroll*profile.MaxStakePercent)

		p.ExpectedValue = ev
		p.KellyFraction = kelly

		out = append(out, Stake{
			Prediction:        p,
			Odds:              o,
			ExpectedValue:     ev,
			KellyFraction:     kelly,
			Amount:            amount,
			PercentOfBankroll: amount / profile.Bankroll,
			Value:             ClassifyValue(ev),
		})
	}
	return out
}
