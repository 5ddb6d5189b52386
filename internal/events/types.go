package events

// PredictionsReadyEvent is published after aggregation, before ranking.
type PredictionsReadyEvent struct {
	FixtureID       string `json:"fixture_id"`
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	Predictions     int    `json:"predictions"`
	DroppedFamilies int    `json:"dropped_families,omitempty"`
}

// RecommendationEvent is published when ranking and sizing complete.
type RecommendationEvent struct {
	FixtureID         string  `json:"fixture_id"`
	HomeTeam          string  `json:"home_team"`
	AwayTeam          string  `json:"away_team"`
	Recommended       int     `json:"recommended"`
	Sized             int     `json:"sized"`
	TotalStakePercent float64 `json:"total_stake_percent"`
	OverallRisk       string  `json:"overall_risk"`
}

// NotificationEvent mirrors a dispatched notification for observers
// (the fanout server forwards these to connected dashboards).
type NotificationEvent struct {
	FixtureID string `json:"fixture_id"`
	Kind      string `json:"kind"`
	Severity  string `json:"severity"`
	Admitted  bool   `json:"admitted"`
}

// PipelineErrorEvent is published for recoverable pipeline errors.
type PipelineErrorEvent struct {
	FixtureID string `json:"fixture_id"`
	Stage     string `json:"stage"`
	Message   string `json:"message"`
}
