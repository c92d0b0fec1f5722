package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cycleSchema = `
CREATE TABLE IF NOT EXISTS cycle_records (
	id               UUID PRIMARY KEY,
	session_id       UUID NOT NULL,
	scenario         TEXT NOT NULL,
	outcome          TEXT NOT NULL,
	accepted_persona TEXT,
	advice           JSONB NOT NULL DEFAULT '[]',
	critiques        JSONB NOT NULL DEFAULT '[]',
	challenge        JSONB,
	score_yoruba     INTEGER NOT NULL,
	score_igbo       INTEGER NOT NULL,
	concluded_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycle_records_session ON cycle_records (session_id, concluded_at DESC);
`

// CycleStore keeps concluded cycles in Postgres.
type CycleStore struct {
	db *pgxpool.Pool
}

func NewCycleStore(db *pgxpool.Pool) *CycleStore {
	return &CycleStore{db: db}
}

// Migrate creates the cycle table if it does not exist.
func (s *CycleStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, cycleSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *CycleStore) Save(ctx context.Context, c *domain.CycleRecord) error {
	cols, err := encodeCycle(c)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO cycle_records (
			id, session_id, scenario, outcome, accepted_persona,
			advice, critiques, challenge,
			score_yoruba, score_igbo, concluded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.SessionID, c.Scenario, string(c.Outcome), cols.accepted,
		cols.advice, cols.critiques, cols.challenge,
		c.ScoresAfter.Yoruba, c.ScoresAfter.Igbo, c.ConcludedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *CycleStore) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.CycleRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, scenario, outcome, accepted_persona,
			advice, critiques, challenge,
			score_yoruba, score_igbo, concluded_at
		FROM cycle_records
		WHERE session_id = $1
		ORDER BY concluded_at DESC
		LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CycleRecord
	for rows.Next() {
		var c domain.CycleRecord
		var cols cycleColumns
		var outcome string
		if err := rows.Scan(
			&c.ID, &c.SessionID, &c.Scenario, &outcome, &cols.accepted,
			&cols.advice, &cols.critiques, &cols.challenge,
			&c.ScoresAfter.Yoruba, &c.ScoresAfter.Igbo, &c.ConcludedAt,
		); err != nil {
			return nil, err
		}
		c.Outcome = domain.CycleOutcome(outcome)
		if err := decodeCycle(&c, cols); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

func (s *CycleStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *CycleStore) Close() error {
	s.db.Close()
	return nil
}
