package domain

import (
	"errors"
	"fmt"
	"strings"
)

// PersonaID identifies one of the two advisory personas.
type PersonaID string

const (
	PersonaYoruba PersonaID = "yoruba"
	PersonaIgbo   PersonaID = "igbo"
)

var ErrUnknownPersona = errors.New("unknown persona")

// PersonaIDs lists every persona in display order.
var PersonaIDs = []PersonaID{PersonaYoruba, PersonaIgbo}

func (id PersonaID) Valid() bool {
	return id == PersonaYoruba || id == PersonaIgbo
}

func (id PersonaID) String() string {
	return string(id)
}

var personaAliases = map[string]PersonaID{
	"yoruba":     PersonaYoruba,
	"ifa":        PersonaYoruba,
	"ifa priest": PersonaYoruba,
	"babalawo":   PersonaYoruba,
	"igbo":       PersonaIgbo,
	"igbo elder": PersonaIgbo,
	"dibia":      PersonaIgbo,
}

// ParsePersonaID accepts a persona id, display name or tradition name.
// Matching ignores case, accents and surrounding whitespace.
func ParsePersonaID(s string) (PersonaID, error) {
	key := strings.Join(strings.Fields(FoldText(s)), " ")
	if id, ok := personaAliases[key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
}

// Persona is an immutable advisory identity.
type Persona struct {
	ID          PersonaID `json:"id"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title"`
	Tradition   string    `json:"tradition"`
	ScoreLabel  string    `json:"score_label"`
	Greeting    string    `json:"greeting"`
	// CoreConcepts is the vocabulary the persona is told to speak in.
	CoreConcepts []string `json:"core_concepts"`
	// BeliefKeywords are the doctrine terms that win a challenge against the
	// rival persona.
	BeliefKeywords []string `json:"belief_keywords"`
	SystemPrompt   string   `json:"-"`
}
