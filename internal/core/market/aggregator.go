package market

import (
	"math"
	"sort"

	"github.com/charleschow/footy-advisor/internal/telemetry"
)

const (
	defaultMinConfidence = 0.3
	defaultMaxPerFamily  = 10
	exhaustiveTolerance  = 1e-3
)

// exhaustiveSets names the selection sets that must survive filtering
// intact and sum to a known total. Double chance sums to 2 because
// every outcome is covered by two of 1X/X2/12.
var exhaustiveSets = map[MarketType]struct {
	selections []string
	want       float64
}{
	MatchWinner:  {selections: []string{"1", "X", "2"}, want: 1.0},
	DoubleChance: {selections: []string{"1X", "X2", "12"}, want: 2.0},
}

// Aggregator runs the registered predictors and enforces the set-level
// contracts: selection uniqueness, per-family caps, the confidence
// floor, and exhaustive-family checksums.
type Aggregator struct {
	registry      *Registry
	minConfidence float64
	maxPerFamily  int
}

type AggregatorOption func(*Aggregator)

func WithMinConfidence(c float64) AggregatorOption {
	return func(a *Aggregator) { a.minConfidence = c }
}

func WithMaxPerFamily(n int) AggregatorOption {
	return func(a *Aggregator) { a.maxPerFamily = n }
}

func NewAggregator(registry *Registry, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry:      registry,
		minConfidence: defaultMinConfidence,
		maxPerFamily:  defaultMaxPerFamily,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs every predictor in registration order and combines the
// results. Dropped exhaustive families come back as AggregationError
// diagnostics; only a non-finite probability is a hard error.
func (a *Aggregator) Aggregate(fv FeatureVector) (PredictionSet, []*AggregationError, error) {
	var raw []MarketPrediction
	for _, p := range a.registry.All() {
		raw = append(raw, p.Predict(fv)...)
	}
	return a.Combine(raw)
}

// Combine applies the aggregation contract to an already-produced
// prediction list.
func (a *Aggregator) Combine(raw []MarketPrediction) (PredictionSet, []*AggregationError, error) {
	for _, p := range raw {
		if math.IsNaN(p.PredictedProbability) || math.IsInf(p.PredictedProbability, 0) {
			return PredictionSet{}, nil, &DistributionError{Market: p.MarketType, Selection: p.Selection}
		}
	}

	// Dedup on (market, selection); the higher confidence entry wins,
	// keeping the original position on replacement.
	type key struct {
		mt  MarketType
		sel string
	}
	index := make(map[key]int)
	var deduped []MarketPrediction
	for _, p := range raw {
		k := key{p.MarketType, p.Selection}
		if i, ok := index[k]; ok {
			if p.Confidence > deduped[i].Confidence {
				deduped[i] = p
			}
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, p)
	}

	// Per-family cap: keep the top maxPerFamily by confidence, then
	// restore the original emit order for what survives.
	byFamily := make(map[MarketType][]int)
	for i, p := range deduped {
		byFamily[p.MarketType] = append(byFamily[p.MarketType], i)
	}
	keep := make(map[int]bool, len(deduped))
	for _, idxs := range byFamily {
		ranked := make([]int, len(idxs))
		copy(ranked, idxs)
		sort.SliceStable(ranked, func(x, y int) bool {
			return deduped[ranked[x]].Confidence > deduped[ranked[y]].Confidence
		})
		if len(ranked) > a.maxPerFamily {
			ranked = ranked[:a.maxPerFamily]
		}
		for _, i := range ranked {
			keep[i] = true
		}
	}

	var filtered []MarketPrediction
	for i, p := range deduped {
		if keep[i] && p.Confidence >= a.minConfidence {
			filtered = append(filtered, p)
		}
	}

	// Exhaustive families: a missing member or a broken checksum drops
	// the whole family.
	var diags []*AggregationError
	dropped := make(map[MarketType]bool)
	for _, mt := range marketOrder {
		set, ok := exhaustiveSets[mt]
		if !ok {
			continue
		}
		present := make(map[string]float64)
		for _, p := range filtered {
			if p.MarketType == mt {
				present[p.Selection] = p.PredictedProbability
			}
		}
		if len(present) == 0 {
			continue
		}
		sum := 0.0
		complete := true
		for _, sel := range set.selections {
			v, ok := present[sel]
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if !complete || math.Abs(sum-set.want) > exhaustiveTolerance {
			dropped[mt] = true
			diags = append(diags, &AggregationError{Family: mt, Sum: sum, Want: set.want})
		}
	}
	if len(dropped) > 0 {
		kept := filtered[:0]
		for _, p := range filtered {
			if !dropped[p.MarketType] {
				kept = append(kept, p)
			}
		}
		filtered = kept
	}

	telemetry.Metrics.PredictionsDropped.Add(int64(len(raw) - len(filtered)))
	return PredictionSet{Predictions: filtered}, diags, nil
}
