package notify

import (
	"context"
	"time"
)

// Clock supplies dispatcher time; tests swap in a fixed one.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sink delivers admitted messages. Send failures are logged by the
// dispatcher and never roll back an admission.
type Sink interface {
	Name() string
	// MinSeverity is the lowest severity this sink wants to receive.
	MinSeverity() Severity
	Send(ctx context.Context, msg Message) error
}

// SinkError wraps a delivery failure with the sink that produced it.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string { return "sink " + e.Sink + ": " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

// CooldownKey addresses one cooldown slot.
type CooldownKey struct {
	FixtureID     string
	Kind          Kind
	Discriminator string
}

// CooldownStore is the dispatcher's only mutable state. Read-modify-
// write cycles are serialized per key through CompareAndSwap: prev is
// the timestamp the caller read (zero when the key was absent), and a
// false return means another writer won the race.
type CooldownStore interface {
	LastSent(key CooldownKey) (time.Time, bool, error)
	CompareAndSwap(key CooldownKey, prev, next time.Time) (bool, error)
}
