package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/footy-advisor/internal/core/advise"
	"github.com/charleschow/footy-advisor/internal/core/market"
	"github.com/charleschow/footy-advisor/internal/telemetry"

	_ "modernc.org/sqlite"
)

// ErrNotFound marks lookups for rows that do not exist.
var ErrNotFound = errors.New("not found")

// AdvisorStore is the local SQLite operational store behind the match
// repository, odds provider, and profile store ports.
type AdvisorStore struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenAdvisorStore(path string) (*AdvisorStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS fixtures (
			id           TEXT PRIMARY KEY,
			home_team    TEXT NOT NULL,
			away_team    TEXT NOT NULL,
			league       TEXT,
			kickoff_utc  TEXT,
			currency     TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fixture_features (
			fixture_id TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      REAL NOT NULL,
			PRIMARY KEY (fixture_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS fixture_odds (
			fixture_id TEXT NOT NULL,
			market     TEXT NOT NULL,
			selection  TEXT NOT NULL,
			price      REAL NOT NULL,
			PRIMARY KEY (fixture_id, market, selection)
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id                 TEXT PRIMARY KEY,
			risk_level         TEXT NOT NULL,
			bankroll           REAL NOT NULL,
			currency           TEXT,
			max_stake_percent  REAL,
			min_confidence     REAL,
			min_expected_value REAL,
			max_drawdown       REAL,
			kelly_fraction_cap REAL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	telemetry.Infof("Started advisor db  path=%s", path)
	return &AdvisorStore{db: db}, nil
}

// Fixture loads a fixture and its feature map.
func (s *AdvisorStore) Fixture(ctx context.Context, id string) (market.FixtureData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fx market.FixtureData
	var kickoff sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, home_team, away_team, COALESCE(league,''), kickoff_utc, COALESCE(currency,'EUR')
		 FROM fixtures WHERE id = ?`, id,
	).Scan(&fx.ID, &fx.HomeTeam, &fx.AwayTeam, &fx.League, &kickoff, &fx.Currency)
	if err == sql.ErrNoRows {
		return market.FixtureData{}, fmt.Errorf("fixture %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return market.FixtureData{}, fmt.Errorf("fixture %s: %w", id, err)
	}
	if kickoff.Valid {
		if t, perr := time.Parse(time.RFC3339, kickoff.String); perr == nil {
			fx.KickoffTime = t
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM fixture_features WHERE fixture_id = ?`, id)
	if err != nil {
		return market.FixtureData{}, fmt.Errorf("fixture %s features: %w", id, err)
	}
	defer rows.Close()

	fx.Features = make(map[string]float64)
	for rows.Next() {
		var key string
		var val float64
		if err := rows.Scan(&key, &val); err != nil {
			return market.FixtureData{}, fmt.Errorf("fixture %s features: %w", id, err)
		}
		fx.Features[key] = val
	}
	return fx, rows.Err()
}

// Odds returns the priced selections for a fixture.
func (s *AdvisorStore) Odds(ctx context.Context, fixtureID string) (advise.OddsTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT market, selection, price FROM fixture_odds WHERE fixture_id = ?`, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("odds %s: %w", fixtureID, err)
	}
	defer rows.Close()

	table := make(advise.OddsTable)
	for rows.Next() {
		var mt, sel string
		var price float64
		if err := rows.Scan(&mt, &sel, &price); err != nil {
			return nil, fmt.Errorf("odds %s: %w", fixtureID, err)
		}
		table[advise.OddsKey{Market: market.MarketType(mt), Selection: sel}] = price
	}
	return table, rows.Err()
}

// Profile loads a stored user profile, filling unset limits from the
// stock defaults for its risk level.
func (s *AdvisorStore) Profile(ctx context.Context, id string) (advise.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var riskLevel, currency string
	var bankroll float64
	var maxStake, minConf, minEV, maxDD, kellyCap sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT risk_level, bankroll, COALESCE(currency,''),
		        max_stake_percent, min_confidence, min_expected_value,
		        max_drawdown, kelly_fraction_cap
		 FROM user_profiles WHERE id = ?`, id,
	).Scan(&riskLevel, &bankroll, &currency, &maxStake, &minConf, &minEV, &maxDD, &kellyCap)
	if err == sql.ErrNoRows {
		return advise.Profile{}, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return advise.Profile{}, fmt.Errorf("profile %s: %w", id, err)
	}

	p, err := advise.DefaultProfile(riskLevel, bankroll)
	if err != nil {
		return advise.Profile{}, fmt.Errorf("profile %s: %w", id, err)
	}
	if currency != "" {
		p.Currency = currency
	}
	if maxStake.Valid {
		p.MaxStakePercent = maxStake.Float64
	}
	if minConf.Valid {
		p.MinConfidence = minConf.Float64
	}
	if minEV.Valid {
		p.MinExpectedValue = minEV.Float64
	}
	if maxDD.Valid {
		p.MaxDrawdown = maxDD.Float64
	}
	if kellyCap.Valid {
		p.KellyFractionCap = kellyCap.Float64
	}
	return p, nil
}

// SaveFixture upserts a fixture and replaces its feature map.
func (s *AdvisorStore) SaveFixture(ctx context.Context, fx market.FixtureData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kickoff any
	if !fx.KickoffTime.IsZero() {
		kickoff = fx.KickoffTime.UTC().Format(time.RFC3339)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO fixtures (id, home_team, away_team, league, kickoff_utc, currency)
		 VALUES (?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			home_team = excluded.home_team,
			away_team = excluded.away_team,
			league    = excluded.league,
			kickoff_utc = excluded.kickoff_utc,
			currency  = excluded.currency`,
		fx.ID, fx.HomeTeam, fx.AwayTeam, fx.League, kickoff, fx.Currency,
	); err != nil {
		return fmt.Errorf("save fixture %s: %w", fx.ID, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM fixture_features WHERE fixture_id = ?`, fx.ID); err != nil {
		return fmt.Errorf("save fixture %s features: %w", fx.ID, err)
	}
	for key, val := range fx.Features {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO fixture_features (fixture_id, key, value) VALUES (?,?,?)`,
			fx.ID, key, val,
		); err != nil {
			return fmt.Errorf("save fixture %s feature %s: %w", fx.ID, key, err)
		}
	}
	return nil
}

// SaveOdds upserts one priced selection.
func (s *AdvisorStore) SaveOdds(ctx context.Context, fixtureID string, key advise.OddsKey, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fixture_odds (fixture_id, market, selection, price)
		 VALUES (?,?,?,?)
		 ON CONFLICT(fixture_id, market, selection) DO UPDATE SET price = excluded.price`,
		fixtureID, string(key.Market), key.Selection, price,
	)
	if err != nil {
		return fmt.Errorf("save odds %s/%s/%s: %w", fixtureID, key.Market, key.Selection, err)
	}
	return nil
}

// SaveProfile upserts a user profile.
func (s *AdvisorStore) SaveProfile(ctx context.Context, id string, p advise.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (
			id, risk_level, bankroll, currency, max_stake_percent,
			min_confidence, min_expected_value, max_drawdown, kelly_fraction_cap
		 ) VALUES (?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			risk_level = excluded.risk_level,
			bankroll   = excluded.bankroll,
			currency   = excluded.currency,
			max_stake_percent  = excluded.max_stake_percent,
			min_confidence     = excluded.min_confidence,
			min_expected_value = excluded.min_expected_value,
			max_drawdown       = excluded.max_drawdown,
			kelly_fraction_cap = excluded.kelly_fraction_cap`,
		id, p.RiskLevel, p.Bankroll, p.Currency, p.MaxStakePercent,
		p.MinConfidence, p.MinExpectedValue, p.MaxDrawdown, p.KellyFractionCap,
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", id, err)
	}
	return nil
}

func (s *AdvisorStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
