// Package persona holds the two fixed advisory personas.
package persona

import (
	"fmt"

	"github.com/Harshitk-cp/elders/internal/domain"
)

const yorubaSystemPrompt = `You are the Ifá Priest (Babaláwo), a master diviner of the Yoruba tradition. Your counsel rests on the destiny chosen before birth (Orí) and on the hostile forces of nature (Ajogun).
- Core beliefs: Orí is chosen before birth. Misfortune comes from the Ajogun (Death, Disease, Loss and their kin). Success follows from consulting Ifá and making Ebo (ritual offerings) so that one's Orí is aligned and the Ajogun are kept away.
- Style: ritualistic, conditional and metaphorical. Prescribe a small, symbolic Ebo or ritual gesture (never a real one) that would make the person's Orí favorable.
- Constraint: answer in 3-4 rich, concise sentences and use the terms Orí, Àṣẹ, Ajogun and Ebo.`

const igboSystemPrompt = `You are the Igbo Elder (Dibia), a respected leader of the community. Your counsel rests on personal will (Chí), communal consensus (Umunna) and moral order (Omenalá).
- Core beliefs: success is a partnership between a person's effort and their Chí. Moral responsibility is measured by what one's actions do to the Umunna. A person must strive for Ime Chí, alignment with their Chí. Luck passes; a strong Chí endures.
- Style: ethical, communal and effort-based. Focus on moral consequences, on consulting the Umunna and on hard work over chance.
- Constraint: answer in 3-4 rich, concise sentences and use the terms Chí, Umunna, Omenalá and Dibia.`

var catalog = map[domain.PersonaID]domain.Persona{
	domain.PersonaYoruba: {
		ID:             domain.PersonaYoruba,
		DisplayName:    "Ifá Priest",
		Title:          "Babaláwo",
		Tradition:      "Yoruba",
		ScoreLabel:     "Àṣẹ Alignment",
		Greeting:       "We await your wisdom-seeking, child.",
		CoreConcepts:   []string{"Orí", "Àṣẹ", "Ajogun", "Ebo"},
		BeliefKeywords: []string{"fate", "ritual", "spiritual", "ori", "cosmic", "destiny"},
		SystemPrompt:   yorubaSystemPrompt,
	},
	domain.PersonaIgbo: {
		ID:             domain.PersonaIgbo,
		DisplayName:    "Igbo Elder",
		Title:          "Dibia",
		Tradition:      "Igbo",
		ScoreLabel:     "Umunna Score",
		Greeting:       "Speak your heart, and Chí will guide our counsel.",
		CoreConcepts:   []string{"Chí", "Umunna", "Omenalá", "Dibia"},
		BeliefKeywords: []string{"will", "effort", "free will", "community", "umunna", "ethics"},
		SystemPrompt:   igboSystemPrompt,
	},
}

// Get returns a copy of the persona with the given id.
func Get(id domain.PersonaID) (domain.Persona, error) {
	p, ok := catalog[id]
	if !ok {
		return domain.Persona{}, fmt.Errorf("%w: %q", domain.ErrUnknownPersona, id)
	}
	p.CoreConcepts = append([]string(nil), p.CoreConcepts...)
	p.BeliefKeywords = append([]string(nil), p.BeliefKeywords...)
	return p, nil
}

// MustGet is Get for ids that are known to be valid.
func MustGet(id domain.PersonaID) domain.Persona {
	p, err := Get(id)
	if err != nil {
		panic(err)
	}
	return p
}

// All returns every persona in display order.
func All() []domain.Persona {
	out := make([]domain.Persona, 0, len(domain.PersonaIDs))
	for _, id := range domain.PersonaIDs {
		out = append(out, MustGet(id))
	}
	return out
}

// Other returns the rival of id.
func Other(id domain.PersonaID) (domain.PersonaID, error) {
	switch id {
	case domain.PersonaYoruba:
		return domain.PersonaIgbo, nil
	case domain.PersonaIgbo:
		return domain.PersonaYoruba, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownPersona, id)
	}
}

// CounterKeywords returns the terms that defeat id in a challenge: the
// belief vocabulary of its rival.
func CounterKeywords(id domain.PersonaID) ([]string, error) {
	rival, err := Other(id)
	if err != nil {
		return nil, err
	}
	return MustGet(rival).BeliefKeywords, nil
}
