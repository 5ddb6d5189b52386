package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/footy-advisor/internal/adapters/outbound/discord"
	"github.com/charleschow/footy-advisor/internal/adapters/outbound/telegram"
	"github.com/charleschow/footy-advisor/internal/app"
	"github.com/charleschow/footy-advisor/internal/config"
	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
	"github.com/charleschow/footy-advisor/internal/core/notify"
	"github.com/charleschow/footy-advisor/internal/core/report"
	"github.com/charleschow/footy-advisor/internal/events"
	"github.com/charleschow/footy-advisor/internal/fanout"
	"github.com/charleschow/footy-advisor/internal/storage"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

const (
	exitOK                = 0
	exitInvalidInput      = 2
	exitNoRecommendations = 3
	exitInternal          = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	fixtureID := flag.String("fixture", "", "fixture ID to advise on")
	fixtureFile := flag.String("fixture-file", "", "JSON fixture import file (stored, then advised)")
	profileName := flag.String("profile", "moderate", "risk profile name (stored user ID or YAML/stock profile)")
	topN := flag.Int("top-n", 0, "max ranked predictions (0 = default)")
	dryRun := flag.Bool("dry-run", false, "skip notifications, leave cooldowns untouched")
	jsonOut := flag.Bool("json", false, "print the projection to stdout")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if *fixtureID == "" && *fixtureFile == "" {
		fmt.Fprintln(os.Stderr, "usage: advisor --fixture <id> [--profile <name>] [--top-n N] [--dry-run] [--json]")
		return exitInvalidInput
	}

	advCfg, err := config.LoadAdvisorConfig(cfg.ProfilesPath)
	if err != nil {
		telemetry.Errorf("Failed to load advisor config: %v", err)
		return exitInternal
	}

	store, err := storage.OpenAdvisorStore(cfg.AdvisorDBPath)
	if err != nil {
		telemetry.Errorf("Advisor store: %v", err)
		return exitInternal
	}
	defer store.Close()

	cooldowns, err := storage.OpenCooldownStore(cfg.CooldownDBPath)
	if err != nil {
		telemetry.Errorf("Cooldown store: %v", err)
		return exitInternal
	}
	defer cooldowns.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *fixtureFile != "" {
		id, err := importFixture(ctx, store, *fixtureFile)
		if err != nil {
			telemetry.Errorf("Fixture import: %v", err)
			return exitInvalidInput
		}
		if *fixtureID == "" {
			*fixtureID = id
		}
	}

	profile, err := resolveProfile(ctx, store, advCfg, *profileName, cfg.DefaultBankroll)
	if err != nil {
		telemetry.Errorf("Profile %q: %v", *profileName, err)
		return exitInvalidInput
	}

	// ── Notification sinks ──────────────────────────────────────
	var sinks []notify.Sink
	if cfg.DiscordWebhookURL != "" {
		sinks = append(sinks, discord.NewSink(cfg.DiscordWebhookURL, notify.SeverityInfo))
	}
	var tg *telegram.Sink
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err = telegram.NewSink(cfg.TelegramToken, cfg.TelegramChatID, notify.SeverityInfo)
		if err != nil {
			telemetry.Warnf("Telegram sink disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
			defer tg.Stop()
		}
	}

	dispatcher := notify.NewDispatcher(cooldowns, sinks,
		notify.WithWindows(kindWindows(advCfg.Cooldowns.Windows)),
		notify.WithSinkTimeout(cfg.SinkTimeout),
		notify.WithPredictionFloors(profile.MinExpectedValue, profile.MinConfidence),
	)

	// ── Event bus + fanout ──────────────────────────────────────
	bus := events.NewBus()
	if cfg.FanoutPort > 0 {
		fanoutSrv := fanout.NewServer(bus)
		go func() {
			if err := fanoutSrv.ListenAndServe(cfg.FanoutPort); err != nil {
				telemetry.Warnf("Fanout server: %v", err)
			}
		}()
	}

	// ── Pipeline ────────────────────────────────────────────────
	var aggOpts []market.AggregatorOption
	if advCfg.Aggregator.MinConfidence > 0 {
		aggOpts = append(aggOpts, market.WithMinConfidence(advCfg.Aggregator.MinConfidence))
	}
	if advCfg.Aggregator.MaxPerFamily > 0 {
		aggOpts = append(aggOpts, market.WithMaxPerFamily(advCfg.Aggregator.MaxPerFamily))
	}

	pipeline := app.NewPipeline(
		store,
		store,
		market.NewAggregator(market.DefaultRegistry(), aggOpts...),
		advise.NewEngine(*topN),
		dispatcher,
		report.NewWriter(cfg.ReportsDir),
		bus,
	)
	pipeline.DryRun = *dryRun

	result, runErr := pipeline.Run(ctx, *fixtureID, profile)

	if *jsonOut && result.ReportPath != "" {
		if data, merr := result.Projection.Marshal(); merr == nil {
			fmt.Println(string(data))
		}
	}

	stats := dispatcher.Stats()
	telemetry.Infof("Done  report=%s recommended=%d notified=%v sent=%d suppressed=%d",
		result.ReportPath, result.Recommended, result.Notified,
		stats.Sent[notify.KindPrediction], stats.Suppressed[notify.KindPrediction])

	return exitCode(runErr)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, advise.ErrNoRecommendations) {
		telemetry.Warnf("No recommendations: %v", err)
		return exitNoRecommendations
	}
	var featErr *market.InvalidFeatureError
	if errors.As(err, &featErr) || errors.Is(err, storage.ErrNotFound) {
		telemetry.Errorf("Invalid input: %v", err)
		return exitInvalidInput
	}
	telemetry.Errorf("Pipeline failed: %v", err)
	return exitInternal
}

// resolveProfile prefers a stored user profile, then the YAML-backed
// named profiles, then the stock defaults for the three risk levels.
func resolveProfile(ctx context.Context, store app.ProfileStore, advCfg config.AdvisorConfig, name string, bankroll float64) (advise.Profile, error) {
	p, err := store.Profile(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return advise.Profile{}, err
	}
	return advCfg.Profile(name, bankroll)
}

// importFile is the --fixture-file format: a fixture plus its priced
// selections.
type importFile struct {
	Fixture market.FixtureData `json:"fixture"`
	Odds    []struct {
		Market    string  `json:"market"`
		Selection string  `json:"selection"`
		Price     float64 `json:"price"`
	} `json:"odds"`
}

func importFixture(ctx context.Context, store *storage.AdvisorStore, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var in importFile
	if err := json.Unmarshal(data, &in); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if in.Fixture.ID == "" {
		return "", fmt.Errorf("%s: fixture.id is required", path)
	}
	if err := store.SaveFixture(ctx, in.Fixture); err != nil {
		return "", err
	}
	for _, o := range in.Odds {
		key := advise.OddsKey{Market: market.MarketType(o.Market), Selection: o.Selection}
		if err := store.SaveOdds(ctx, in.Fixture.ID, key, o.Price); err != nil {
			return "", err
		}
	}
	telemetry.Infof("Imported fixture %s (%d priced selections)", in.Fixture.ID, len(in.Odds))
	return in.Fixture.ID, nil
}

func kindWindows(raw map[string]time.Duration) map[notify.Kind]time.Duration {
	out := make(map[notify.Kind]time.Duration, len(raw))
	for k, v := range raw {
		out[notify.Kind(k)] = v
	}
	return out
}
