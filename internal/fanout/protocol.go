package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/footy-advisor/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	FixtureID string          `json:"fixture_id,omitempty"`
	League    string          `json:"league,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		FixtureID: evt.FixtureID,
		League:    evt.League,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		FixtureID: env.FixtureID,
		League:    env.League,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventPredictionsReady:
		var pr events.PredictionsReadyEvent
		if err := json.Unmarshal(env.Payload, &pr); err != nil {
			return evt, fmt.Errorf("unmarshal predictions_ready: %w", err)
		}
		evt.Payload = pr
	case events.EventRecommendation:
		var re events.RecommendationEvent
		if err := json.Unmarshal(env.Payload, &re); err != nil {
			return evt, fmt.Errorf("unmarshal recommendation: %w", err)
		}
		evt.Payload = re
	case events.EventNotification:
		var ne events.NotificationEvent
		if err := json.Unmarshal(env.Payload, &ne); err != nil {
			return evt, fmt.Errorf("unmarshal notification: %w", err)
		}
		evt.Payload = ne
	case events.EventPipelineError:
		var pe events.PipelineErrorEvent
		if err := json.Unmarshal(env.Payload, &pe); err != nil {
			return evt, fmt.Errorf("unmarshal pipeline_error: %w", err)
		}
		evt.Payload = pe
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
