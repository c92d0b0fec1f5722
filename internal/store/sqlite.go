package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteCycleStore keeps concluded cycles in a local SQLite file.
type SQLiteCycleStore struct {
	db *sql.DB
}

// NewSQLiteCycleStore opens (creating if needed) the database at dbPath.
func NewSQLiteCycleStore(dbPath string) (*SQLiteCycleStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Serialize writers to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteCycleStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteCycleStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS cycle_records (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		outcome TEXT NOT NULL,
		accepted_persona TEXT,
		advice_json TEXT NOT NULL,
		critiques_json TEXT NOT NULL,
		challenge_json TEXT,
		score_yoruba INTEGER NOT NULL,
		score_igbo INTEGER NOT NULL,
		concluded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cycle_records_session ON cycle_records(session_id, concluded_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteCycleStore) Save(ctx context.Context, c *domain.CycleRecord) error {
	cols, err := encodeCycle(c)
	if err != nil {
		return err
	}

	var challenge any
	if cols.challenge != nil {
		challenge = string(cols.challenge)
	}
	var accepted any
	if cols.accepted != nil {
		accepted = *cols.accepted
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cycle_records (
			id, session_id, scenario, outcome, accepted_persona,
			advice_json, critiques_json, challenge_json,
			score_yoruba, score_igbo, concluded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.SessionID.String(), c.Scenario, string(c.Outcome), accepted,
		string(cols.advice), string(cols.critiques), challenge,
		c.ScoresAfter.Yoruba, c.ScoresAfter.Igbo, c.ConcludedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrConflict
		}
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

func (s *SQLiteCycleStore) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, scenario, outcome, accepted_persona,
			advice_json, critiques_json, challenge_json,
			score_yoruba, score_igbo, concluded_at
		FROM cycle_records
		WHERE session_id = ?
		ORDER BY concluded_at DESC, rowid DESC
		LIMIT ?`,
		sessionID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var records []domain.CycleRecord
	for rows.Next() {
		var (
			c                         domain.CycleRecord
			id, sid, outcome          string
			accepted, challenge       sql.NullString
			adviceJSON, critiquesJSON string
			concludedAt               int64
		)
		if err := rows.Scan(
			&id, &sid, &c.Scenario, &outcome, &accepted,
			&adviceJSON, &critiquesJSON, &challenge,
			&c.ScoresAfter.Yoruba, &c.ScoresAfter.Igbo, &concludedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}

		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse cycle id: %w", err)
		}
		if c.SessionID, err = uuid.Parse(sid); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		c.Outcome = domain.CycleOutcome(outcome)
		c.ConcludedAt = time.UnixMilli(concludedAt).UTC()

		cols := cycleColumns{
			advice:    []byte(adviceJSON),
			critiques: []byte(critiquesJSON),
		}
		if challenge.Valid {
			cols.challenge = []byte(challenge.String)
		}
		if accepted.Valid {
			cols.accepted = &accepted.String
		}
		if err := decodeCycle(&c, cols); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// Ping verifies database connectivity.
func (s *SQLiteCycleStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteCycleStore) Close() error {
	return s.db.Close()
}
