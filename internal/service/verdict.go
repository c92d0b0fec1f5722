package service

import (
	"strings"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/persona"
)

// ResolveVerdict judges a user's challenge against the challenged persona.
// The challenge succeeds when it names any term from the rival persona's
// doctrine. Pure and total: unknown personas and empty text are defeated.
func ResolveVerdict(challenged domain.PersonaID, challengeText string) domain.Verdict {
	if len(MatchCounterKeywords(challenged, challengeText)) > 0 {
		return domain.VerdictSuccess
	}
	return domain.VerdictDefeated
}

// MatchCounterKeywords returns the counter keywords found in challengeText,
// in catalog order. Matching is a case- and accent-insensitive substring scan.
func MatchCounterKeywords(challenged domain.PersonaID, challengeText string) []string {
	counter, err := persona.CounterKeywords(challenged)
	if err != nil {
		return nil
	}

	text := domain.FoldText(challengeText)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matched []string
	for _, kw := range counter {
		if strings.Contains(text, domain.FoldText(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
