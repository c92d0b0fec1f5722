package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSessionIdleTTL  = 2 * time.Hour
	defaultJanitorInterval = 5 * time.Minute
	defaultHistoryLimit    = 20
	maxHistoryLimit        = 100
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrHistoryDisabled = errors.New("cycle history is disabled")
)

type sessionEntry struct {
	dialogue *Dialogue
	lastSeen time.Time
}

// SessionService owns the independent dialogues of every connected user,
// expires idle ones and records concluded cycles.
type SessionService struct {
	gen     domain.Generator
	history domain.CycleStore
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry

	idleTTL  time.Duration
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSessionService creates a session service. history may be nil, in which
// case concluded cycles are not recorded.
func NewSessionService(gen domain.Generator, history domain.CycleStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		gen:      gen,
		history:  history,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*sessionEntry),
		idleTTL:  defaultSessionIdleTTL,
		interval: defaultJanitorInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *SessionService) SetIdleTTL(d time.Duration) {
	if d > 0 {
		s.idleTTL = d
	}
}

func (s *SessionService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// HistoryEnabled reports whether concluded cycles are being recorded.
func (s *SessionService) HistoryEnabled() bool {
	return s.history != nil
}

// Create starts a new idle dialogue.
func (s *SessionService) Create() domain.Snapshot {
	id := uuid.New()
	d := NewDialogue(id, s.gen)

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{dialogue: d, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session_id", id.String()))
	return d.Snapshot()
}

func (s *SessionService) Get(id uuid.UUID) (domain.Snapshot, error) {
	d, err := s.dialogue(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return d.Snapshot(), nil
}

func (s *SessionService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("session deleted", zap.String("session_id", id.String()))
	return nil
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) SubmitScenario(ctx context.Context, id uuid.UUID, text string) (domain.Snapshot, error) {
	return s.apply(id, "submit_scenario", func(d *Dialogue) (domain.Snapshot, error) {
		return d.SubmitScenario(ctx, text)
	})
}

func (s *SessionService) AcceptPersona(ctx context.Context, id uuid.UUID, personaID domain.PersonaID) (domain.Snapshot, error) {
	return s.apply(id, "accept_persona", func(d *Dialogue) (domain.Snapshot, error) {
		return d.AcceptPersona(ctx, personaID)
	})
}

func (s *SessionService) ForceCritique(ctx context.Context, id uuid.UUID) (domain.Snapshot, error) {
	return s.apply(id, "force_critique", func(d *Dialogue) (domain.Snapshot, error) {
		return d.ForceCritique(ctx)
	})
}

func (s *SessionService) RetryCritiques(ctx context.Context, id uuid.UUID) (domain.Snapshot, error) {
	return s.apply(id, "retry_critiques", func(d *Dialogue) (domain.Snapshot, error) {
		return d.RetryCritiques(ctx)
	})
}

func (s *SessionService) Challenge(id uuid.UUID, personaID domain.PersonaID) (domain.Snapshot, error) {
	return s.apply(id, "challenge", func(d *Dialogue) (domain.Snapshot, error) {
		return d.Challenge(personaID)
	})
}

func (s *SessionService) SubmitChallenge(ctx context.Context, id uuid.UUID, text string) (domain.Snapshot, error) {
	return s.apply(id, "submit_challenge", func(d *Dialogue) (domain.Snapshot, error) {
		return d.SubmitChallenge(ctx, text)
	})
}

func (s *SessionService) ConcludeBase(ctx context.Context, id uuid.UUID) (domain.Snapshot, error) {
	return s.apply(id, "conclude_base", func(d *Dialogue) (domain.Snapshot, error) {
		snap, record, err := d.ConcludeBase()
		if err != nil {
			return snap, err
		}
		s.recordCycle(ctx, record)
		return snap, nil
	})
}

func (s *SessionService) ConcludeCycle(ctx context.Context, id uuid.UUID) (domain.Snapshot, error) {
	return s.apply(id, "conclude_cycle", func(d *Dialogue) (domain.Snapshot, error) {
		snap, record, err := d.ConcludeCycle()
		if err != nil {
			return snap, err
		}
		s.recordCycle(ctx, record)
		return snap, nil
	})
}

func (s *SessionService) ResetScores(id uuid.UUID) (domain.Snapshot, error) {
	return s.apply(id, "reset_scores", func(d *Dialogue) (domain.Snapshot, error) {
		return d.ResetScores(), nil
	})
}

// History lists the most recent concluded cycles of a session, newest first.
func (s *SessionService) History(ctx context.Context, id uuid.UUID, limit int) ([]domain.CycleRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.history.ListBySession(ctx, id, limit)
}

// apply runs one dialogue action and logs its outcome.
func (s *SessionService) apply(id uuid.UUID, action string, fn func(d *Dialogue) (domain.Snapshot, error)) (domain.Snapshot, error) {
	d, err := s.dialogue(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	start := s.now()
	snap, err := fn(d)
	if err != nil {
		fields := []zap.Field{
			zap.String("session_id", id.String()),
			zap.String("action", action),
			zap.String("phase", string(d.Phase())),
			zap.Error(err),
		}
		if genErr, ok := domain.AsGenerationError(err); ok {
			fields = append(fields, zap.String("provider", genErr.Provider), zap.String("kind", string(genErr.Kind)))
			s.logger.Warn("generation failed", fields...)
		} else {
			s.logger.Debug("action rejected", fields...)
		}
		return domain.Snapshot{}, err
	}

	s.touch(id)
	s.logger.Info("dialogue transition",
		zap.String("session_id", id.String()),
		zap.String("action", action),
		zap.String("phase", string(snap.Phase)),
		zap.Int("score_yoruba", snap.Scores.Yoruba),
		zap.Int("score_igbo", snap.Scores.Igbo),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return snap, nil
}

func (s *SessionService) recordCycle(ctx context.Context, record *domain.CycleRecord) {
	if s.history == nil || record == nil {
		return
	}
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Error("failed to record cycle",
			zap.String("session_id", record.SessionID.String()),
			zap.String("cycle_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *SessionService) dialogue(id uuid.UUID) (*Dialogue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = s.now()
	return entry.dialogue, nil
}

func (s *SessionService) touch(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[id]; ok {
		entry.lastSeen = s.now()
	}
}

// Start runs the idle-session janitor in a background goroutine.
func (s *SessionService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session janitor started",
			zap.Duration("interval", s.interval),
			zap.Duration("idle_ttl", s.idleTTL),
		)

		for {
			select {
			case <-ticker.C:
				s.expireIdle()
			case <-s.stopCh:
				s.logger.Info("session janitor stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the janitor.
func (s *SessionService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// expireIdle drops sessions not used for longer than the idle TTL.
func (s *SessionService) expireIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", expired), zap.Int("remaining", len(s.sessions)))
	}
	return expired
}
