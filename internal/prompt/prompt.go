// Package prompt composes the generation requests sent for each persona.
// Every builder is pure: same inputs, same request.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const (
	AdviceTemperature   float32 = 0.7
	CritiqueTemperature float32 = 0.8
	DefenseTemperature  float32 = 0.6

	// DefenseLengthGuidance is passed to the generator; it is not enforced.
	DefenseLengthGuidance = "at most 5 sentences"
)

const adviceUserPrompt = `User's Scenario: %s`

// Critique framing is fixed per critic: each one cites its own doctrine and
// names the rival's as the deficiency.
var critiqueTemplates = map[domain.PersonaID]string{
	domain.PersonaYoruba: `You are the Yoruba Ifá Priest. Critique the Igbo Elder's focus on %[1]s as insufficient without spiritual alignment through %[2]s for the scenario: '%[3]s'.
The Igbo Elder advised: "%[4]s"
Be concise (3-4 sentences).`,
	domain.PersonaIgbo: `You are the Igbo Elder. Critique the Ifá Priest's focus on %[1]s as morally insufficient without addressing the ethical consequence through %[2]s for the scenario: '%[3]s'.
The Ifá Priest advised: "%[4]s"
Be concise (3-4 sentences).`,
}

const defenseTemplate = `You are the %s (%s). Defend your original advice based on your religious view.
- Scenario: "%s"
- Original Advice: "%s"
- User's Challenge: "%s"
- Defense: Use the core logic of your tradition (%s) to logically rebut the user's argument and reaffirm why your advice is the correct path. (%s)`

// Advice builds the request for a persona's first answer to a scenario.
// The caller guarantees scenario is non-empty.
func Advice(p domain.Persona, scenario string) domain.GenerationRequest {
	return domain.GenerationRequest{
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   fmt.Sprintf(adviceUserPrompt, scenario),
		Sampling:     domain.SamplingConfig{Temperature: AdviceTemperature},
	}
}

// Critique builds the request for critic arguing against target's advice.
func Critique(critic, target domain.Persona, scenario, targetAdvice string) (domain.GenerationRequest, error) {
	tmpl, ok := critiqueTemplates[critic.ID]
	if !ok {
		return domain.GenerationRequest{}, fmt.Errorf("%w: %q", domain.ErrUnknownPersona, critic.ID)
	}
	return domain.GenerationRequest{
		UserPrompt: fmt.Sprintf(tmpl,
			conceptList(target.CoreConcepts),
			conceptList(critic.CoreConcepts),
			scenario,
			targetAdvice,
		),
		Sampling: domain.SamplingConfig{Temperature: CritiqueTemperature},
	}, nil
}

// ChallengeDefense builds the request for a persona rebutting the user.
func ChallengeDefense(p domain.Persona, challenge, scenario, originalAdvice string) domain.GenerationRequest {
	return domain.GenerationRequest{
		UserPrompt: fmt.Sprintf(defenseTemplate,
			p.DisplayName,
			p.Tradition,
			scenario,
			originalAdvice,
			challenge,
			strings.Join(p.CoreConcepts, ", "),
			DefenseLengthGuidance,
		),
		Sampling: domain.SamplingConfig{Temperature: DefenseTemperature},
	}
}

// conceptList renders ["a","b","c"] as "a, b and c".
func conceptList(concepts []string) string {
	switch len(concepts) {
	case 0:
		return ""
	case 1:
		return concepts[0]
	default:
		return strings.Join(concepts[:len(concepts)-1], ", ") + " and " + concepts[len(concepts)-1]
	}
}
