package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run history to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so inspection tooling can read while the pipeline writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS research_runs (
			run_id         TEXT PRIMARY KEY,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER NOT NULL,
			scenario_count INTEGER,
			failure_count  INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS scenarios (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			name        TEXT,
			category    TEXT,
			confidence  REAL,
			source_count INTEGER,
			composite   REAL,
			payload     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scenarios_run ON scenarios(run_id)`,

		`CREATE TABLE IF NOT EXISTS producer_failures (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL,
			producer TEXT,
			error    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run ON producer_failures(run_id)`,

		`CREATE TABLE IF NOT EXISTS execution_runs (
			run_id            TEXT PRIMARY KEY,
			started_at        INTEGER NOT NULL,
			finished_at       INTEGER NOT NULL,
			client_count      INTEGER,
			scenario_count    INTEGER,
			min_match_score   REAL,
			opportunity_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS opportunities (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			client_id         TEXT NOT NULL,
			scenario_id       TEXT NOT NULL,
			category          TEXT,
			match_score       REAL,
			estimated_revenue REAL,
			details           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_run ON opportunities(run_id)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) RecordResearchRun(rec *ResearchRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO research_runs
		(run_id, started_at, finished_at, scenario_count, failure_count)
		VALUES (?,?,?,?,?)`,
		rec.RunID, rec.StartedAt.Unix(), rec.FinishedAt.Unix(),
		len(rec.Scenarios), len(rec.Failures),
	); err != nil {
		return fmt.Errorf("insert research run: %w", err)
	}

	for _, sc := range rec.Scenarios {
		payload, err := json.Marshal(sc)
		if err != nil {
			return fmt.Errorf("marshal scenario %s: %w", sc.ScenarioID, err)
		}
		if _, err := tx.Exec(`INSERT INTO scenarios
			(run_id, scenario_id, name, category, confidence, source_count, composite, payload)
			VALUES (?,?,?,?,?,?,?,?)`,
			rec.RunID, sc.ScenarioID, sc.Name, string(sc.Category),
			sc.Confidence.Value, sc.Confidence.SourceCount,
			sc.Actionability.Composite, string(payload),
		); err != nil {
			return fmt.Errorf("insert scenario %s: %w", sc.ScenarioID, err)
		}
	}

	for _, f := range rec.Failures {
		if _, err := tx.Exec(`INSERT INTO producer_failures (run_id, producer, error) VALUES (?,?,?)`,
			rec.RunID, f.Producer, f.Message,
		); err != nil {
			return fmt.Errorf("insert producer failure: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) RecordExecutionRun(rec *ExecutionRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO execution_runs
		(run_id, started_at, finished_at, client_count, scenario_count, min_match_score, opportunity_count)
		VALUES (?,?,?,?,?,?,?)`,
		rec.RunID, rec.StartedAt.Unix(), rec.FinishedAt.Unix(),
		rec.ClientCount, rec.ScenarioCount, rec.MinMatchScore, len(rec.Opportunities),
	); err != nil {
		return fmt.Errorf("insert execution run: %w", err)
	}

	for _, opp := range rec.Opportunities {
		details, err := json.Marshal(opp.MatchDetails)
		if err != nil {
			return fmt.Errorf("marshal details for %s/%s: %w", opp.ClientID, opp.ScenarioID, err)
		}
		if _, err := tx.Exec(`INSERT INTO opportunities
			(run_id, client_id, scenario_id, category, match_score, estimated_revenue, details)
			VALUES (?,?,?,?,?,?,?)`,
			rec.RunID, opp.ClientID, opp.ScenarioID, string(opp.Category),
			opp.MatchScore, opp.EstimatedRevenue, string(details),
		); err != nil {
			return fmt.Errorf("insert opportunity: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
