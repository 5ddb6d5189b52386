package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/footy-advisor/internal/core/notify"
	"github.com/charleschow/footy-advisor/internal/telemetry"

	_ "modernc.org/sqlite"
)

// CooldownStore is the SQLite-backed notify.CooldownStore, for hosts
// that run multiple workers against one cooldown table. Timestamps are
// stored as epoch milliseconds; the compare-and-swap rides on a single
// conditional UPDATE.
type CooldownStore struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenCooldownStore(path string) (*CooldownStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS notification_cooldowns (
			fixture_id         TEXT NOT NULL,
			kind               TEXT NOT NULL,
			discriminator      TEXT NOT NULL,
			last_sent_epoch_ms INTEGER NOT NULL,
			PRIMARY KEY (fixture_id, kind, discriminator)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	telemetry.Infof("Started cooldown db  path=%s", path)
	return &CooldownStore{db: db}, nil
}

func (s *CooldownStore) LastSent(key notify.CooldownKey) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms int64
	err := s.db.QueryRow(
		`SELECT last_sent_epoch_ms FROM notification_cooldowns
		 WHERE fixture_id = ? AND kind = ? AND discriminator = ?`,
		key.FixtureID, string(key.Kind), key.Discriminator,
	).Scan(&ms)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown read: %w", err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func (s *CooldownStore) CompareAndSwap(key notify.CooldownKey, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev.IsZero() {
		res, err := s.db.Exec(
			`INSERT INTO notification_cooldowns (fixture_id, kind, discriminator, last_sent_epoch_ms)
			 VALUES (?,?,?,?)
			 ON CONFLICT(fixture_id, kind, discriminator) DO NOTHING`,
			key.FixtureID, string(key.Kind), key.Discriminator, next.UnixMilli(),
		)
		if err != nil {
			return false, fmt.Errorf("cooldown insert: %w", err)
		}
		n, _ := res.RowsAffected()
		return n == 1, nil
	}

	res, err := s.db.Exec(
		`UPDATE notification_cooldowns SET last_sent_epoch_ms = ?
		 WHERE fixture_id = ? AND kind = ? AND discriminator = ? AND last_sent_epoch_ms = ?`,
		next.UnixMilli(), key.FixtureID, string(key.Kind), key.Discriminator, prev.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("cooldown update: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (s *CooldownStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
