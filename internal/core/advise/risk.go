package advise

// WarningKind tags a risk warning; values stay numeric records, not
// formatted text.
type WarningKind string

const (
	WarnTotalStakeExceeded WarningKind = "total_stake_exceeded"
	WarnLowConfidence      WarningKind = "low_confidence"
	WarnLowExpectedValue   WarningKind = "low_expected_value"
)

type Warning struct {
	Kind  WarningKind `json:"kind"`
	Value float64     `json:"value"`
}

// Assessment aggregates exposure across a sized recommendation set.
type Assessment struct {
	TotalStakePercent float64   `json:"total_stake_percent"`
	AvgConfidence     float64   `json:"avg_confidence"`
	AvgExpectedValue  float64   `json:"avg_expected_value"`
	Overall           RiskLevel `json:"overall"`
	Warnings          []Warning `json:"warnings"`
}

// Assess classifies the combined exposure of the sized stakes against
// the profile's limits.
func Assess(stakes []Stake, profile Profile) Assessment {
	a := Assessment{Overall: RiskLow, Warnings: []Warning{}}
	if len(stakes) == 0 {
		return a
	}

	var sumConf, sumEV float64
	for _, s := range stakes {
		a.TotalStakePercent += s.PercentOfBankroll
		sumConf += s.Prediction.Confidence
		sumEV += s.ExpectedValue
	}
	n := float64(len(stakes))
	a.AvgConfidence = sumConf / n
	a.AvgExpectedValue = sumEV / n

	switch {
	case a.TotalStakePercent > 2*profile.MaxStakePercent:
		a.Overall = RiskHigh
	case a.TotalStakePercent > profile.MaxStakePercent:
		a.Overall = RiskMedium
	}

	if a.TotalStakePercent > profile.MaxStakePercent {
		a.Warnings = append(a.Warnings, Warning{Kind: WarnTotalStakeExceeded, Value: a.TotalStakePercent})
	}
	if a.AvgConfidence < profile.MinConfidence {
		a.Warnings = append(a.Warnings, Warning{Kind: WarnLowConfidence, Value: a.AvgConfidence})
	}
	if a.AvgExpectedValue < profile.MinExpectedValue {
		a.Warnings = append(a.Warnings, Warning{Kind: WarnLowExpectedValue, Value: a.AvgExpectedValue})
	}
	return a
}
