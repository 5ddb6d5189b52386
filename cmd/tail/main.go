// Follow a running advisor's fanout stream and print events as they arrive.
//
// Usage:
//
//	go run ./cmd/tail -addr localhost:9090
//	go run ./cmd/tail -addr localhost:9090 -fixture fx-100
//	go run ./cmd/tail -addr localhost:9090 -league "Premier League"
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/footy-advisor/internal/events"
	"github.com/charleschow/footy-advisor/internal/fanout"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "fanout server address")
	fixture := flag.String("fixture", "", "only show events for this fixture")
	league := flag.String("league", "", "only show events for this league")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(*logLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	bus.Subscribe(events.EventPredictionsReady, func(evt events.Event) error {
		p, ok := evt.Payload.(events.PredictionsReadyEvent)
		if !ok {
			return nil
		}
		telemetry.Plainf("%s vs %s: %d predictions (%d families dropped)",
			p.HomeTeam, p.AwayTeam, p.Predictions, p.DroppedFamilies)
		return nil
	})
	bus.Subscribe(events.EventRecommendation, func(evt events.Event) error {
		r, ok := evt.Payload.(events.RecommendationEvent)
		if !ok {
			return nil
		}
		telemetry.Plainf("%s vs %s: %d recommended, %d sized, %.1f%% of bankroll, risk %s",
			r.HomeTeam, r.AwayTeam, r.Recommended, r.Sized, r.TotalStakePercent*100, r.OverallRisk)
		return nil
	})
	bus.Subscribe(events.EventNotification, func(evt events.Event) error {
		n, ok := evt.Payload.(events.NotificationEvent)
		if !ok {
			return nil
		}
		status := "admitted"
		if !n.Admitted {
			status = "suppressed"
		}
		telemetry.Plainf("notification %s/%s for %s: %s", n.Kind, n.Severity, n.FixtureID, status)
		return nil
	})
	bus.Subscribe(events.EventPipelineError, func(evt events.Event) error {
		e, ok := evt.Payload.(events.PipelineErrorEvent)
		if !ok {
			return nil
		}
		telemetry.Warnf("pipeline error at %s for %s: %s", e.Stage, e.FixtureID, e.Message)
		return nil
	})

	client := fanout.NewClient(*addr, *fixture, *league, bus)
	client.ConnectWithRetry(ctx)

	os.Exit(0)
}
