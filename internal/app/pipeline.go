package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
	"github.com/charleschow/footy-advisor/internal/core/notify"
	"github.com/charleschow/footy-advisor/internal/core/report"
	"github.com/charleschow/footy-advisor/internal/events"
	"github.com/charleschow/footy-advisor/internal/telemetry"
)

// MatchRepository supplies fixtures and their feature maps.
type MatchRepository interface {
	Fixture(ctx context.Context, id string) (market.FixtureData, error)
}

// OddsProvider supplies decimal odds for a fixture's selections.
type OddsProvider interface {
	Odds(ctx context.Context, fixtureID string) (advise.OddsTable, error)
}

// ProfileStore supplies stored user risk profiles.
type ProfileStore interface {
	Profile(ctx context.Context, id string) (advise.Profile, error)
}

// Result is what one pipeline run produced.
type Result struct {
	Projection  report.Projection
	ReportPath  string
	Recommended int
	Notified    bool
}

// Pipeline runs the advisory flow for one fixture: features, market
// predictions, aggregation, ranking, sizing, risk, notification, and
// the report artifact.
type Pipeline struct {
	repo       MatchRepository
	odds       OddsProvider
	aggregator *market.Aggregator
	engine     *advise.Engine
	dispatcher *notify.Dispatcher
	writer     *report.Writer
	bus        *events.Bus

	// DryRun skips notification dispatch, leaving cooldowns untouched.
	DryRun bool
	// Clock stamps the projection; equal inputs under an equal Clock
	// yield byte-identical projections.
	Clock notify.Clock
}

func NewPipeline(
	repo MatchRepository,
	odds OddsProvider,
	aggregator *market.Aggregator,
	engine *advise.Engine,
	dispatcher *notify.Dispatcher,
	writer *report.Writer,
	bus *events.Bus,
) *Pipeline {
	return &Pipeline{
		repo:       repo,
		odds:       odds,
		aggregator: aggregator,
		engine:     engine,
		dispatcher: dispatcher,
		writer:     writer,
		bus:        bus,
		Clock:      notify.SystemClock{},
	}
}

// Run executes the full advisory flow for one fixture under the given
// profile. The report is written even when nothing is recommended; in
// that case Run returns advise.ErrNoRecommendations alongside the
// populated result.
func (p *Pipeline) Run(ctx context.Context, fixtureID string, profile advise.Profile) (Result, error) {
	start := time.Now()
	telemetry.Metrics.ActiveFixtures.Inc()
	defer func() {
		telemetry.Metrics.ActiveFixtures.Dec()
		telemetry.Metrics.PipelineLatency.Record(time.Since(start))
	}()

	fx, err := p.repo.Fixture(ctx, fixtureID)
	if err != nil {
		p.publishError(fx, fixtureID, "fixture", err)
		return Result{}, fmt.Errorf("load fixture: %w", err)
	}

	fv, err := market.PrepareFeatures(fx)
	if err != nil {
		p.publishError(fx, fixtureID, "features", err)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	set, diags, err := p.aggregator.Aggregate(fv)
	if err != nil {
		p.publishError(fx, fixtureID, "aggregate", err)
		return Result{}, err
	}
	telemetry.Metrics.PredictionsGenerated.Add(int64(len(set.Predictions)))
	telemetry.Metrics.FamiliesDropped.Add(int64(len(diags)))
	for _, d := range diags {
		telemetry.Warnf("pipeline: dropped family %s: %v", d.Family, d)
	}

	p.publish(events.Event{
		Type:      events.EventPredictionsReady,
		FixtureID: fx.ID,
		League:    fx.League,
		Payload: events.PredictionsReadyEvent{
			FixtureID:       fx.ID,
			HomeTeam:        fx.HomeTeam,
			AwayTeam:        fx.AwayTeam,
			Predictions:     len(set.Predictions),
			DroppedFamilies: len(diags),
		},
	})
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ranked := p.engine.Rank(set)
	recommended := 0
	for _, r := range ranked {
		if r.Recommended {
			recommended++
		}
	}
	telemetry.Metrics.RecommendationsEmitted.Add(int64(recommended))

	oddsTable, err := p.odds.Odds(ctx, fx.ID)
	if err != nil {
		telemetry.Warnf("pipeline: odds unavailable for %s: %v", fx.ID, err)
		oddsTable = advise.OddsTable{}
	}
	stakes := advise.SizeAll(ranked, oddsTable, profile)
	risk := advise.Assess(stakes, profile)

	p.publish(events.Event{
		Type:      events.EventRecommendation,
		FixtureID: fx.ID,
		League:    fx.League,
		Payload: events.RecommendationEvent{
			FixtureID:         fx.ID,
			HomeTeam:          fx.HomeTeam,
			AwayTeam:          fx.AwayTeam,
			Recommended:       recommended,
			Sized:             len(stakes),
			TotalStakePercent: risk.TotalStakePercent,
			OverallRisk:       string(risk.Overall),
		},
	})
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	proj := report.Build(fx, fv, set, ranked, stakes, risk, diags, p.Clock.Now())

	result := Result{Projection: proj, Recommended: recommended}
	if p.writer != nil {
		path, werr := p.writer.Write(proj)
		if werr != nil {
			p.publishError(fx, fixtureID, "report", werr)
			return result, fmt.Errorf("write report: %w", werr)
		}
		result.ReportPath = path
	}

	if recommended == 0 {
		return result, advise.ErrNoRecommendations
	}

	if !p.DryRun && p.dispatcher != nil && proj.Recommendation.Primary != nil {
		result.Notified = p.notify(ctx, fx, proj, stakes)
	}

	telemetry.Infof("pipeline: %s vs %s  predictions=%d recommended=%d sized=%d risk=%s",
		fx.HomeTeam, fx.AwayTeam, len(set.Predictions), recommended, len(stakes), risk.Overall)
	return result, nil
}

// notify dispatches the primary pick through the cooldown gate.
func (p *Pipeline) notify(ctx context.Context, fx market.FixtureData, proj report.Projection, stakes []advise.Stake) bool {
	primary := proj.Recommendation.Primary

	ev := 0.0
	for _, s := range stakes {
		if s.Prediction.MarketType == primary.MarketType && s.Prediction.Selection == primary.Selection {
			ev = s.ExpectedValue
			break
		}
	}

	msg := notify.NewMessage(
		notify.KindPrediction,
		notify.SeverityInfo,
		fx.ID,
		fmt.Sprintf("%s/%s", primary.MarketType, primary.Selection),
		proj,
	)
	msg.HomeTeam = fx.HomeTeam
	msg.AwayTeam = fx.AwayTeam
	msg.Criteria = &notify.PredictionCriteria{
		Recommended:   true,
		ExpectedValue: ev,
		Confidence:    primary.Confidence,
	}

	admitted := p.dispatcher.Dispatch(ctx, msg)

	p.publish(events.Event{
		Type:      events.EventNotification,
		FixtureID: fx.ID,
		League:    fx.League,
		Payload: events.NotificationEvent{
			FixtureID: fx.ID,
			Kind:      string(msg.Kind),
			Severity:  msg.Severity.String(),
			Admitted:  admitted,
		},
	})
	return admitted
}

func (p *Pipeline) publish(evt events.Event) {
	if p.bus == nil {
		return
	}
	evt.ID = uuid.NewString()
	evt.Timestamp = time.Now().UTC()
	p.bus.Publish(evt)
}

func (p *Pipeline) publishError(fx market.FixtureData, fixtureID, stage string, err error) {
	league := fx.League
	p.publish(events.Event{
		Type:      events.EventPipelineError,
		FixtureID: fixtureID,
		League:    league,
		Payload: events.PipelineErrorEvent{
			FixtureID: fixtureID,
			Stage:     stage,
			Message:   err.Error(),
		},
	})
}
