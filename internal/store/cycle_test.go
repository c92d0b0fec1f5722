package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when TEST_DATABASE_URL is set.
func newTestPostgresStore(t *testing.T) *CycleStore {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)

	s := NewCycleStore(pool)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestCycleStore_SaveAndList(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()
	sessionID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := sampleCycle(sessionID, base, false)
	second := sampleCycle(sessionID, base.Add(time.Minute), true)
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	records, err := s.ListBySession(ctx, sessionID, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	require.NotNil(t, records[0].Challenge)
	assert.Equal(t, second.ScoresAfter, records[0].ScoresAfter)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Nil(t, records[1].Challenge)

	assert.ErrorIs(t, s.Save(ctx, first), ErrConflict)
}
