package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/footy-advisor/internal/telemetry"
)

const defaultSinkTimeout = 10 * time.Second

// DefaultWindows returns the stock per-kind cooldown windows.
func DefaultWindows() map[Kind]time.Duration {
	return map[Kind]time.Duration{
		KindPrediction:  60 * time.Minute,
		KindStatus:      30 * time.Minute,
		KindError:       15 * time.Minute,
		KindPerformance: 6 * time.Hour,
		KindDailyReport: 24 * time.Hour,
	}
}

// Stats counts dispatch outcomes per kind.
type Stats struct {
	Sent       map[Kind]int64 `json:"sent"`
	Suppressed map[Kind]int64 `json:"suppressed"`
}

// Dispatcher owns cooldown admission and fans admitted messages out to
// the configured sinks. It never returns an error to the caller: sink
// failures are logged and counted, nothing more.
type Dispatcher struct {
	sinks   []Sink
	store   CooldownStore
	clock   Clock
	windows map[Kind]time.Duration
	timeout time.Duration

	evFloor   float64
	confFloor float64

	mu    sync.Mutex
	stats Stats
}

type DispatcherOption func(*Dispatcher)

func WithClock(c Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

func WithWindows(w map[Kind]time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		for k, v := range w {
			d.windows[k] = v
		}
	}
}

func WithSinkTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithPredictionFloors sets the EV and confidence admission floors for
// prediction-kind messages.
func WithPredictionFloors(ev, conf float64) DispatcherOption {
	return func(d *Dispatcher) {
		d.evFloor = ev
		d.confFloor = conf
	}
}

func NewDispatcher(store CooldownStore, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sinks:   sinks,
		store:   store,
		clock:   SystemClock{},
		windows: DefaultWindows(),
		timeout: defaultSinkTimeout,
		stats: Stats{
			Sent:       make(map[Kind]int64),
			Suppressed: make(map[Kind]int64),
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch admits or suppresses a message. The cooldown timestamp is
// recorded before any sink send, so a failing sink cannot re-open the
// window.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	if !d.passesCriteria(msg) {
		d.suppress(msg.Kind)
		return false
	}

	key := CooldownKey{FixtureID: msg.FixtureID, Kind: msg.Kind, Discriminator: msg.Discriminator}
	now := d.clock.Now()

	last, seen, err := d.store.LastSent(key)
	if err != nil {
		telemetry.Warnf("dispatcher: cooldown read %s/%s: %v", msg.FixtureID, msg.Kind, err)
		d.suppress(msg.Kind)
		return false
	}
	if seen && now.Sub(last) < d.windows[msg.Kind] {
		d.suppress(msg.Kind)
		return false
	}
	var prev time.Time
	if seen {
		prev = last
	}
	ok, err := d.store.CompareAndSwap(key, prev, now)
	if err != nil {
		telemetry.Warnf("dispatcher: cooldown write %s/%s: %v", msg.FixtureID, msg.Kind, err)
		d.suppress(msg.Kind)
		return false
	}
	if !ok {
		// Another worker admitted the same slot first.
		d.suppress(msg.Kind)
		return false
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}

	d.fanOut(ctx, msg)

	d.mu.Lock()
	d.stats.Sent[msg.Kind]++
	d.mu.Unlock()
	telemetry.Metrics.NotificationsAdmitted.Inc()
	return true
}

// passesCriteria applies kind-specific admission rules. Only
// predictions have criteria; the other kinds always qualify.
func (d *Dispatcher) passesCriteria(msg Message) bool {
	if msg.Kind != KindPrediction {
		return true
	}
	c := msg.Criteria
	if c == nil {
		return false
	}
	return c.Recommended && c.ExpectedValue >= d.evFloor && c.Confidence >= d.confFloor
}

// fanOut sends to every interested sink concurrently, each under its
// own deadline.
func (d *Dispatcher) fanOut(ctx context.Context, msg Message) {
	g, _ := errgroup.WithContext(ctx)
	for _, sink := range d.sinks {
		sink := sink
		if msg.Severity < sink.MinSeverity() {
			continue
		}
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			start := time.Now()
			if err := sink.Send(sendCtx, msg); err != nil {
				telemetry.Metrics.SinkErrors.Inc()
				telemetry.Warnf("dispatcher: %v", &SinkError{Sink: sink.Name(), Err: err})
				return nil
			}
			telemetry.Metrics.SinkLatency.Record(time.Since(start))
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) suppress(kind Kind) {
	d.mu.Lock()
	d.stats.Suppressed[kind]++
	d.mu.Unlock()
	telemetry.Metrics.NotificationsSuppressed.Inc()
}

// Stats returns a copy of the dispatch counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := Stats{
		Sent:       make(map[Kind]int64, len(d.stats.Sent)),
		Suppressed: make(map[Kind]int64, len(d.stats.Suppressed)),
	}
	for k, v := range d.stats.Sent {
		out.Sent[k] = v
	}
	for k, v := range d.stats.Suppressed {
		out.Suppressed[k] = v
	}
	return out
}
