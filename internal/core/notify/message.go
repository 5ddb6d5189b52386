package notify

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification and picks its cooldown window.
type Kind string

const (
	KindPrediction  Kind = "prediction"
	KindStatus      Kind = "status"
	KindError       Kind = "error"
	KindPerformance Kind = "performance"
	KindDailyReport Kind = "daily_report"
)

// Severity orders message urgency for sink-side filtering.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// PredictionCriteria carries the admission inputs for prediction-kind
// messages; other kinds leave it nil.
type PredictionCriteria struct {
	Recommended   bool
	ExpectedValue float64
	Confidence    float64
}

// Message is what the dispatcher routes to sinks. Payload is the
// structured record a sink renders; for prediction kind it is the full
// report projection.
type Message struct {
	ID            string
	Kind          Kind
	Severity      Severity
	FixtureID     string
	HomeTeam      string
	AwayTeam      string
	Discriminator string
	Payload       any
	CreatedAt     time.Time

	Criteria *PredictionCriteria
}

// NewMessage builds a message with a fresh ID. Discriminator separates
// cooldown slots within one fixture and kind (market/selection for
// predictions, empty otherwise).
func NewMessage(kind Kind, severity Severity, fixtureID, discriminator string, payload any) Message {
	return Message{
		ID:            uuid.NewString(),
		Kind:          kind,
		Severity:      severity,
		FixtureID:     fixtureID,
		Discriminator: discriminator,
		Payload:       payload,
	}
}
