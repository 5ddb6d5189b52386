package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu       sync.Mutex
	name     string
	minSev   Severity
	err      error
	received []Message
}

func (s *recordingSink) Name() string          { return s.name }
func (s *recordingSink) MinSeverity() Severity { return s.minSev }

func (s *recordingSink) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, msg)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func predictionMessage(fixtureID string) Message {
	msg := NewMessage(KindPrediction, SeverityInfo, fixtureID, "over_under/Over 2.5", nil)
	msg.Criteria = &PredictionCriteria{Recommended: true, ExpectedValue: 0.1, Confidence: 0.8}
	return msg
}

func TestDispatchAdmitThenSuppressInWindow(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{name: "rec"}
	d := NewDispatcher(NewMemoryCooldownStore(), []Sink{sink}, WithClock(clock))

	assert.True(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 1, sink.count())

	// Same slot inside the 60-minute window stays quiet.
	clock.Advance(30 * time.Minute)
	assert.False(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 1, sink.count())

	// Past the window the slot re-opens.
	clock.Advance(31 * time.Minute)
	assert.True(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 2, sink.count())

	stats := d.Stats()
	assert.Equal(t, int64(2), stats.Sent[KindPrediction])
	assert.Equal(t, int64(1), stats.Suppressed[KindPrediction])
}

func TestDispatchSeparateSlots(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{name: "rec"}
	d := NewDispatcher(NewMemoryCooldownStore(), []Sink{sink}, WithClock(clock))

	msg1 := predictionMessage("f1")
	msg2 := predictionMessage("f2")
	msg3 := predictionMessage("f1")
	msg3.Discriminator = "match_winner/1"

	assert.True(t, d.Dispatch(context.Background(), msg1))
	assert.True(t, d.Dispatch(context.Background(), msg2))
	assert.True(t, d.Dispatch(context.Background(), msg3))
	assert.Equal(t, 3, sink.count())
}

func TestDispatchPerKindWindows(t *testing.T) {
	clock := newFakeClock()
	d := NewDispatcher(NewMemoryCooldownStore(), nil, WithClock(clock))

	errMsg := NewMessage(KindError, SeverityWarning, "f1", "", "boom")
	assert.True(t, d.Dispatch(context.Background(), errMsg))

	clock.Advance(10 * time.Minute)
	assert.False(t, d.Dispatch(context.Background(), NewMessage(KindError, SeverityWarning, "f1", "", "boom")))

	// Error window is 15 minutes, not the prediction hour.
	clock.Advance(6 * time.Minute)
	assert.True(t, d.Dispatch(context.Background(), NewMessage(KindError, SeverityWarning, "f1", "", "boom")))
}

func TestDispatchPredictionCriteria(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{name: "rec"}
	d := NewDispatcher(NewMemoryCooldownStore(), []Sink{sink},
		WithClock(clock), WithPredictionFloors(0.05, 0.6))

	// Missing criteria never qualifies.
	bare := NewMessage(KindPrediction, SeverityInfo, "f1", "x", nil)
	assert.False(t, d.Dispatch(context.Background(), bare))

	weak := predictionMessage("f1")
	weak.Criteria.ExpectedValue = 0.01
	assert.False(t, d.Dispatch(context.Background(), weak))

	unsure := predictionMessage("f1")
	unsure.Criteria.Confidence = 0.5
	assert.False(t, d.Dispatch(context.Background(), unsure))

	assert.True(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 1, sink.count())

	// Non-prediction kinds carry no criteria and pass.
	assert.True(t, d.Dispatch(context.Background(), NewMessage(KindStatus, SeverityInfo, "f1", "", "up")))
}

func TestDispatchSinkFailureDoesNotReopenWindow(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{name: "rec", err: errors.New("webhook down")}
	store := NewMemoryCooldownStore()
	d := NewDispatcher(store, []Sink{sink}, WithClock(clock))

	// Admission sticks even though the sink failed.
	assert.True(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 1, sink.count())

	clock.Advance(5 * time.Minute)
	assert.False(t, d.Dispatch(context.Background(), predictionMessage("f1")))
	assert.Equal(t, 1, sink.count())
}

func TestDispatchSeverityFilter(t *testing.T) {
	clock := newFakeClock()
	quiet := &recordingSink{name: "critical-only", minSev: SeverityCritical}
	chatty := &recordingSink{name: "all"}
	d := NewDispatcher(NewMemoryCooldownStore(), []Sink{quiet, chatty}, WithClock(clock))

	assert.True(t, d.Dispatch(context.Background(), NewMessage(KindStatus, SeverityInfo, "f1", "", "up")))
	assert.Equal(t, 0, quiet.count())
	assert.Equal(t, 1, chatty.count())

	assert.True(t, d.Dispatch(context.Background(), NewMessage(KindError, SeverityCritical, "f1", "", "down")))
	assert.Equal(t, 1, quiet.count())
	assert.Equal(t, 2, chatty.count())
}

func TestMemoryCooldownStoreCAS(t *testing.T) {
	store := NewMemoryCooldownStore()
	key := CooldownKey{FixtureID: "f1", Kind: KindPrediction, Discriminator: "x"}
	t0 := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	_, seen, err := store.LastSent(key)
	require.NoError(t, err)
	assert.False(t, seen)

	// Expect-absent insert wins once.
	ok, err := store.CompareAndSwap(key, time.Time{}, t0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.CompareAndSwap(key, time.Time{}, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	// Conditional update needs the current value.
	ok, err = store.CompareAndSwap(key, t0.Add(time.Hour), t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = store.CompareAndSwap(key, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	last, seen, err := store.LastSent(key)
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, t0.Add(time.Hour), last)
}
