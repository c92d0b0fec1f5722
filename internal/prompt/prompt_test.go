package prompt

import (
	"testing"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvice(t *testing.T) {
	p := persona.MustGet(domain.PersonaYoruba)

	req := Advice(p, "Should I quit my job?")

	assert.Equal(t, p.SystemPrompt, req.SystemPrompt)
	assert.Equal(t, "User's Scenario: Should I quit my job?", req.UserPrompt)
	assert.Equal(t, float32(0.7), req.Sampling.Temperature)
}

func TestAdvice_Deterministic(t *testing.T) {
	p := persona.MustGet(domain.PersonaIgbo)
	assert.Equal(t, Advice(p, "x"), Advice(p, "x"))
}

func TestCritique_Asymmetric(t *testing.T) {
	yoruba := persona.MustGet(domain.PersonaYoruba)
	igbo := persona.MustGet(domain.PersonaIgbo)

	t.Run("ifa priest critiques igbo elder", func(t *testing.T) {
		req, err := Critique(yoruba, igbo, "move abroad", "Consult the Umunna.")
		require.NoError(t, err)

		assert.Empty(t, req.SystemPrompt)
		assert.Equal(t, float32(0.8), req.Sampling.Temperature)
		assert.Contains(t, req.UserPrompt, "You are the Yoruba Ifá Priest")
		assert.Contains(t, req.UserPrompt, "Igbo Elder's focus on Chí, Umunna, Omenalá and Dibia")
		assert.Contains(t, req.UserPrompt, "spiritual alignment through Orí, Àṣẹ, Ajogun and Ebo")
		assert.Contains(t, req.UserPrompt, "'move abroad'")
		assert.Contains(t, req.UserPrompt, `"Consult the Umunna."`)
	})

	t.Run("igbo elder critiques ifa priest", func(t *testing.T) {
		req, err := Critique(igbo, yoruba, "move abroad", "Offer an Ebo.")
		require.NoError(t, err)

		assert.Contains(t, req.UserPrompt, "You are the Igbo Elder")
		assert.Contains(t, req.UserPrompt, "Ifá Priest's focus on Orí, Àṣẹ, Ajogun and Ebo")
		assert.Contains(t, req.UserPrompt, "morally insufficient")
		assert.Contains(t, req.UserPrompt, `"Offer an Ebo."`)
	})
}

func TestCritique_UnknownCritic(t *testing.T) {
	_, err := Critique(domain.Persona{ID: "oracle"}, persona.MustGet(domain.PersonaIgbo), "s", "a")
	assert.ErrorIs(t, err, domain.ErrUnknownPersona)
}

func TestChallengeDefense(t *testing.T) {
	p := persona.MustGet(domain.PersonaIgbo)

	req := ChallengeDefense(p, "fate decides everything", "start a business", "Work hard.")

	assert.Empty(t, req.SystemPrompt)
	assert.Equal(t, float32(0.6), req.Sampling.Temperature)
	assert.Contains(t, req.UserPrompt, "You are the Igbo Elder (Igbo)")
	assert.Contains(t, req.UserPrompt, `User's Challenge: "fate decides everything"`)
	assert.Contains(t, req.UserPrompt, `Original Advice: "Work hard."`)
	assert.Contains(t, req.UserPrompt, `Scenario: "start a business"`)
	assert.Contains(t, req.UserPrompt, "Chí, Umunna, Omenalá, Dibia")
	assert.Contains(t, req.UserPrompt, "at most 5 sentences")
}

func TestConceptList(t *testing.T) {
	assert.Equal(t, "", conceptList(nil))
	assert.Equal(t, "a", conceptList([]string{"a"}))
	assert.Equal(t, "a and b", conceptList([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", conceptList([]string{"a", "b", "c"}))
}
