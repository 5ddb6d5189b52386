package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
)

type ProfileSpec struct {
	RiskLevel        string   `yaml:"risk_level"`
	Bankroll         float64  `yaml:"bankroll"`
	Currency         string   `yaml:"currency"`
	PreferredMarkets []string `yaml:"preferred_markets"`
	MaxStakePercent  float64  `yaml:"max_stake_percent"`
	MinConfidence    float64  `yaml:"min_confidence"`
	MinExpectedValue float64  `yaml:"min_expected_value"`
	MaxDrawdown      float64  `yaml:"max_drawdown"`
	KellyFractionCap float64  `yaml:"kelly_fraction_cap"`
}

type AggregatorSpec struct {
	MinConfidence float64 `yaml:"min_confidence"`
	MaxPerFamily  int     `yaml:"max_per_family"`
}

type CooldownSpec struct {
	Windows map[string]time.Duration `yaml:"windows"`
}

// AdvisorConfig is the YAML-backed immutable configuration: risk
// profiles plus aggregator and cooldown tuning.
type AdvisorConfig struct {
	Profiles   map[string]ProfileSpec `yaml:"profiles"`
	Aggregator AggregatorSpec         `yaml:"aggregator"`
	Cooldowns  CooldownSpec           `yaml:"cooldowns"`
}

// LoadAdvisorConfig reads the YAML config. A missing file is not an
// error: the stock profiles cover the three standard risk levels.
func LoadAdvisorConfig(path string) (AdvisorConfig, error) {
	var cfg AdvisorConfig

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read advisor config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse advisor config: %w", err)
	}
	return cfg, nil
}

// Profile resolves a named profile at the given fallback bankroll.
// Names matching a stock risk level fall back to advise defaults when
// the YAML has no entry; a YAML bankroll wins over the fallback.
func (c AdvisorConfig) Profile(name string, bankroll float64) (advise.Profile, error) {
	spec, ok := c.Profiles[name]
	if !ok {
		return advise.DefaultProfile(name, bankroll)
	}
	if spec.Bankroll <= 0 {
		spec.Bankroll = bankroll
	}

	base, err := advise.DefaultProfile(spec.RiskLevel, spec.Bankroll)
	if err != nil {
		return advise.Profile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	if spec.Currency != "" {
		base.Currency = spec.Currency
	}
	if spec.MaxStakePercent > 0 {
		base.MaxStakePercent = spec.MaxStakePercent
	}
	if spec.MinConfidence > 0 {
		base.MinConfidence = spec.MinConfidence
	}
	if spec.MinExpectedValue != 0 {
		base.MinExpectedValue = spec.MinExpectedValue
	}
	if spec.MaxDrawdown > 0 {
		base.MaxDrawdown = spec.MaxDrawdown
	}
	if spec.KellyFractionCap > 0 {
		base.KellyFractionCap = spec.KellyFractionCap
	}
	if len(spec.PreferredMarkets) > 0 {
		base.PreferredMarkets = make(map[market.MarketType]bool, len(spec.PreferredMarkets))
		for _, mt := range spec.PreferredMarkets {
			base.PreferredMarkets[market.MarketType(mt)] = true
		}
	}
	return base, nil
}
