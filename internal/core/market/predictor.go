package market

// Predictor emits the predictions for one market family as a pure
// function of the feature vector.
type Predictor interface {
	Family() string
	Predict(fv FeatureVector) []MarketPrediction
}

// Registry holds predictors in registration order; the aggregator runs
// them in that order so output ordering stays deterministic.
type Registry struct {
	predictors []Predictor
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(p Predictor) {
	r.predictors = append(r.predictors, p)
}

func (r *Registry) All() []Predictor {
	return r.predictors
}

// DefaultRegistry registers the full predictor set in its canonical
// declaration order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GoalsPredictor{})
	r.Register(&HandicapPredictor{})
	r.Register(&CardsPredictor{})
	r.Register(&CornersPredictor{})
	r.Register(&DoubleChancePredictor{})
	r.Register(&ExactScorePredictor{})
	r.Register(&MatchWinnerPredictor{})
	return r
}
