package domain

import (
	"context"

	"github.com/google/uuid"
)

// CycleStore keeps the history of concluded scenario cycles.
type CycleStore interface {
	Save(ctx context.Context, c *CycleRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]CycleRecord, error)
	Ping(ctx context.Context) error
	Close() error
}
