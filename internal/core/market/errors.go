package market

import "fmt"

// InvalidFeatureError reports a required-positive feature that came in
// negative. Clamping handles everything else.
type InvalidFeatureError struct {
	Key   string
	Value float64
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid feature %s: %v must not be negative", e.Key, e.Value)
}

// DistributionError reports a non-finite probability escaping a
// predictor. The input clamps should make this unreachable.
type DistributionError struct {
	Market    MarketType
	Selection string
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("distribution error: %s/%s produced a non-finite probability", e.Market, e.Selection)
}

// AggregationError records an exhaustive family whose surviving
// selections no longer sum to the expected total. The family is dropped
// and the pipeline continues.
type AggregationError struct {
	Family MarketType
	Sum    float64
	Want   float64
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation error: family %s sums to %.6f, want %.6f", e.Family, e.Sum, e.Want)
}
