package store

import (
	"encoding/json"
	"fmt"

	"github.com/Harshitk-cp/elders/internal/domain"
)

// cycleColumns holds the JSON-encoded parts of a cycle record.
type cycleColumns struct {
	advice    []byte
	critiques []byte
	challenge []byte // nil when the cycle had no challenge
	accepted  *string
}

func encodeCycle(c *domain.CycleRecord) (cycleColumns, error) {
	var cols cycleColumns
	var err error

	cols.advice, err = json.Marshal(nonNilAdvice(c.Advice))
	if err != nil {
		return cols, fmt.Errorf("marshal advice: %w", err)
	}
	cols.critiques, err = json.Marshal(nonNilCritiques(c.Critiques))
	if err != nil {
		return cols, fmt.Errorf("marshal critiques: %w", err)
	}
	if c.Challenge != nil {
		cols.challenge, err = json.Marshal(c.Challenge)
		if err != nil {
			return cols, fmt.Errorf("marshal challenge: %w", err)
		}
	}
	if c.AcceptedPersona != nil {
		accepted := string(*c.AcceptedPersona)
		cols.accepted = &accepted
	}
	return cols, nil
}

func decodeCycle(c *domain.CycleRecord, cols cycleColumns) error {
	if len(cols.advice) > 0 {
		if err := json.Unmarshal(cols.advice, &c.Advice); err != nil {
			return fmt.Errorf("unmarshal advice: %w", err)
		}
	}
	if len(cols.critiques) > 0 {
		if err := json.Unmarshal(cols.critiques, &c.Critiques); err != nil {
			return fmt.Errorf("unmarshal critiques: %w", err)
		}
	}
	if len(cols.challenge) > 0 {
		c.Challenge = &domain.ChallengeRecord{}
		if err := json.Unmarshal(cols.challenge, c.Challenge); err != nil {
			return fmt.Errorf("unmarshal challenge: %w", err)
		}
	}
	if cols.accepted != nil && *cols.accepted != "" {
		accepted := domain.PersonaID(*cols.accepted)
		c.AcceptedPersona = &accepted
	}
	return nil
}

func nonNilAdvice(a []domain.AdviceRecord) []domain.AdviceRecord {
	if a == nil {
		return []domain.AdviceRecord{}
	}
	return a
}

func nonNilCritiques(c []domain.CritiqueRecord) []domain.CritiqueRecord {
	if c == nil {
		return []domain.CritiqueRecord{}
	}
	return c
}
