package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the single source of truth for where a dialogue stands.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAdviceShown       Phase = "advice_shown"
	PhaseReflectionShown   Phase = "reflection_shown"
	PhaseChallengeActive   Phase = "challenge_active"
	PhaseChallengeResolved Phase = "challenge_resolved"
)

// Verdict is the outcome of a user's challenge.
type Verdict string

const (
	VerdictSuccess  Verdict = "success"
	VerdictDefeated Verdict = "defeated"
)

// AdviceRecord is one persona's answer to the cycle's scenario.
type AdviceRecord struct {
	PersonaID PersonaID `json:"persona_id"`
	CycleID   uuid.UUID `json:"cycle_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CritiqueRecord is one persona arguing against the other's advice.
type CritiqueRecord struct {
	CriticID  PersonaID `json:"critic_id"`
	TargetID  PersonaID `json:"target_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CritiqueFailure records a critique whose generation failed.
type CritiqueFailure struct {
	CriticID PersonaID `json:"critic_id"`
	TargetID PersonaID `json:"target_id"`
	Error    string    `json:"error"`
}

// ChallengeRecord is the user's argument against one persona, that persona's
// defense and the resulting verdict.
type ChallengeRecord struct {
	ChallengedID  PersonaID `json:"challenged_id"`
	ChallengeText string    `json:"challenge_text,omitempty"`
	DefenseText   string    `json:"defense_text,omitempty"`
	Verdict       *Verdict  `json:"verdict,omitempty"`
	// MatchedKeywords are the rival doctrine terms that decided the verdict.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// ScoreBoard holds one alignment counter per persona.
type ScoreBoard struct {
	Yoruba int `json:"yoruba"`
	Igbo   int `json:"igbo"`
}

func (s ScoreBoard) Get(id PersonaID) int {
	switch id {
	case PersonaYoruba:
		return s.Yoruba
	case PersonaIgbo:
		return s.Igbo
	default:
		return 0
	}
}

// Add increases the counter for id. Non-positive deltas are ignored so the
// board never decreases.
func (s *ScoreBoard) Add(id PersonaID, delta int) {
	if delta <= 0 {
		return
	}
	switch id {
	case PersonaYoruba:
		s.Yoruba += delta
	case PersonaIgbo:
		s.Igbo += delta
	}
}

// Snapshot is a read-only copy of a dialogue, taken after a transition.
type Snapshot struct {
	SessionID        uuid.UUID         `json:"session_id"`
	CycleID          uuid.UUID         `json:"cycle_id,omitempty"`
	Phase            Phase             `json:"phase"`
	Scenario         string            `json:"scenario,omitempty"`
	Advice           []AdviceRecord    `json:"advice,omitempty"`
	Critiques        []CritiqueRecord  `json:"critiques,omitempty"`
	CritiqueFailures []CritiqueFailure `json:"critique_failures,omitempty"`
	AcceptedPersona  *PersonaID        `json:"accepted_persona,omitempty"`
	UpsetPersona     *PersonaID        `json:"upset_persona,omitempty"`
	AbsentPersona    *PersonaID        `json:"absent_persona,omitempty"`
	Challenge        *ChallengeRecord  `json:"challenge,omitempty"`
	Scores           ScoreBoard        `json:"scores"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// AdviceFor returns the advice record of a persona, if present.
func (s Snapshot) AdviceFor(id PersonaID) (AdviceRecord, bool) {
	for _, a := range s.Advice {
		if a.PersonaID == id {
			return a, true
		}
	}
	return AdviceRecord{}, false
}

// CycleOutcome tells how a scenario cycle ended.
type CycleOutcome string

const (
	CycleOutcomeBase      CycleOutcome = "base"
	CycleOutcomeChallenge CycleOutcome = "challenge"
)

// CycleRecord is the history entry written when a cycle is concluded.
type CycleRecord struct {
	ID              uuid.UUID        `json:"id"`
	SessionID       uuid.UUID        `json:"session_id"`
	Scenario        string           `json:"scenario"`
	Outcome         CycleOutcome     `json:"outcome"`
	AcceptedPersona *PersonaID       `json:"accepted_persona,omitempty"`
	Advice          []AdviceRecord   `json:"advice"`
	Critiques       []CritiqueRecord `json:"critiques,omitempty"`
	Challenge       *ChallengeRecord `json:"challenge,omitempty"`
	ScoresAfter     ScoreBoard       `json:"scores_after"`
	ConcludedAt     time.Time        `json:"concluded_at"`
}
