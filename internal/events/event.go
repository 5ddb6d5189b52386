package events

import "time"

// Event is the envelope that flows through the event bus.
// Every domain event (predictions ready, recommendation, notification,
// pipeline error) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	FixtureID string
	League    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Pipeline lifecycle events
	EventPredictionsReady EventType = "predictions_ready"
	EventRecommendation   EventType = "recommendation"
	EventPipelineError    EventType = "pipeline_error"
	// Dispatcher events
	EventNotification EventType = "notification"
)
