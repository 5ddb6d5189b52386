package market

import "time"

// FixtureData is the raw input record, supplied by the match
// repository. Features holds the numeric keys listed in featureSpecs;
// anything missing falls back to its default.
type FixtureData struct {
	ID          string             `json:"id"`
	HomeTeam    string             `json:"home_team"`
	AwayTeam    string             `json:"away_team"`
	League      string             `json:"league"`
	KickoffTime time.Time          `json:"kickoff_time"`
	Currency    string             `json:"currency"`
	Features    map[string]float64 `json:"features"`
}

// FeatureVector is the validated, defaulted input every predictor
// consumes. Bases are stored unmultiplied; each predictor applies its
// own factor products.
type FeatureVector struct {
	HomeStrength  float64 `json:"home_strength"`
	AwayStrength  float64 `json:"away_strength"`
	HomeAdvantage float64 `json:"home_advantage"`

	HomeGoalsAvg   float64 `json:"home_goals_avg"`
	AwayGoalsAvg   float64 `json:"away_goals_avg"`
	HomeCornersAvg float64 `json:"home_corners_avg"`
	AwayCornersAvg float64 `json:"away_corners_avg"`
	HomeCardsAvg   float64 `json:"home_cards_avg"`
	AwayCardsAvg   float64 `json:"away_cards_avg"`
	HomeYellowAvg  float64 `json:"home_yellow_avg"`
	AwayYellowAvg  float64 `json:"away_yellow_avg"`
	HomeRedAvg     float64 `json:"home_red_avg"`
	AwayRedAvg     float64 `json:"away_red_avg"`

	FormFactor       float64 `json:"form_factor"`
	InjuryFactor     float64 `json:"injury_factor"`
	WeatherFactor    float64 `json:"weather_factor"`
	ImportanceFactor float64 `json:"importance_factor"`
	RivalryFactor    float64 `json:"rivalry_factor"`
	RefereeFactor    float64 `json:"referee_factor"`
	PossessionFactor float64 `json:"possession_factor"`
	StyleFactor      float64 `json:"style_factor"`
}

type featureSpec struct {
	def      float64
	lo, hi   float64
	rateLike bool // >=0 required; negative input is an error, no upper bound
}

var featureSpecs = map[string]featureSpec{
	"home_strength":  {def: 0.5, lo: 0, hi: 1},
	"away_strength":  {def: 0.5, lo: 0, hi: 1},
	"home_advantage": {def: 0.10, lo: 0, hi: 0.3},

	"home_goals_avg":   {def: 1.5, rateLike: true},
	"away_goals_avg":   {def: 1.2, rateLike: true},
	"home_corners_avg": {def: 5.5, rateLike: true},
	"away_corners_avg": {def: 5.0, rateLike: true},
	"home_cards_avg":   {def: 2.1, rateLike: true},
	"away_cards_avg":   {def: 2.0, rateLike: true},
	"home_yellow_avg":  {def: 1.8, rateLike: true},
	"away_yellow_avg":  {def: 1.7, rateLike: true},
	"home_red_avg":     {def: 0.1, rateLike: true},
	"away_red_avg":     {def: 0.1, rateLike: true},

	"form_factor":       {def: 1.0, lo: 0.5, hi: 1.5},
	"injury_factor":     {def: 1.0, lo: 0.5, hi: 1.5},
	"weather_factor":    {def: 1.0, lo: 0.5, hi: 1.5},
	"importance_factor": {def: 1.0, lo: 0.5, hi: 1.5},
	"rivalry_factor":    {def: 1.0, lo: 0.5, hi: 1.5},
	"referee_factor":    {def: 1.0, lo: 0.5, hi: 1.5},
	"possession_factor": {def: 1.0, lo: 0.5, hi: 1.5},
	"style_factor":      {def: 1.0, lo: 0.5, hi: 1.5},
}

// PrepareFeatures validates and defaults the raw feature map into a
// FeatureVector. Ranged keys clamp silently; rate-like keys reject
// negative values with an InvalidFeatureError naming the key.
func PrepareFeatures(fx FixtureData) (FeatureVector, error) {
	get := func(key string) (float64, error) {
		spec := featureSpecs[key]
		v, ok := fx.Features[key]
		if !ok {
			return spec.def, nil
		}
		if spec.rateLike {
			if v < 0 {
				return 0, &InvalidFeatureError{Key: key, Value: v}
			}
			return v, nil
		}
		return Clamp(v, spec.lo, spec.hi), nil
	}

	var fv FeatureVector
	var err error
	assign := func(dst *float64, key string) {
		if err != nil {
			return
		}
		*dst, err = get(key)
	}

	assign(&fv.HomeStrength, "home_strength")
	assign(&fv.AwayStrength, "away_strength")
	assign(&fv.HomeAdvantage, "home_advantage")
	assign(&fv.HomeGoalsAvg, "home_goals_avg")
	assign(&fv.AwayGoalsAvg, "away_goals_avg")
	assign(&fv.HomeCornersAvg, "home_corners_avg")
	assign(&fv.AwayCornersAvg, "away_corners_avg")
	assign(&fv.HomeCardsAvg, "home_cards_avg")
	assign(&fv.AwayCardsAvg, "away_cards_avg")
	assign(&fv.HomeYellowAvg, "home_yellow_avg")
	assign(&fv.AwayYellowAvg, "away_yellow_avg")
	assign(&fv.HomeRedAvg, "home_red_avg")
	assign(&fv.AwayRedAvg, "away_red_avg")
	assign(&fv.FormFactor, "form_factor")
	assign(&fv.InjuryFactor, "injury_factor")
	assign(&fv.WeatherFactor, "weather_factor")
	assign(&fv.ImportanceFactor, "importance_factor")
	assign(&fv.RivalryFactor, "rivalry_factor")
	assign(&fv.RefereeFactor, "referee_factor")
	assign(&fv.PossessionFactor, "possession_factor")
	assign(&fv.StyleFactor, "style_factor")
	if err != nil {
		return FeatureVector{}, err
	}
	return fv, nil
}
