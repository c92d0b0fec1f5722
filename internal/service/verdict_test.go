package service

import (
	"testing"

	"github.com/Harshitk-cp/elders/internal/domain"
)

func TestResolveVerdict(t *testing.T) {
	tests := []struct {
		name       string
		challenged domain.PersonaID
		text       string
		want       domain.Verdict
	}{
		{"igbo challenged with yoruba doctrine", domain.PersonaIgbo, "fate and destiny guide better", domain.VerdictSuccess},
		{"yoruba challenged with igbo doctrine", domain.PersonaYoruba, "hard work and community decide outcomes", domain.VerdictSuccess},
		{"yoruba challenged with no counter term", domain.PersonaYoruba, "I simply disagree", domain.VerdictDefeated},
		{"own doctrine does not count", domain.PersonaIgbo, "effort and community matter", domain.VerdictDefeated},
		{"case insensitive", domain.PersonaIgbo, "DESTINY is real", domain.VerdictSuccess},
		{"accented keyword", domain.PersonaIgbo, "Your Orí was chosen", domain.VerdictSuccess},
		{"substring match", domain.PersonaYoruba, "willpower wins", domain.VerdictSuccess},
		{"empty text", domain.PersonaIgbo, "", domain.VerdictDefeated},
		{"whitespace text", domain.PersonaYoruba, "   \t", domain.VerdictDefeated},
		{"unknown persona", domain.PersonaID("akan"), "fate", domain.VerdictDefeated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVerdict(tt.challenged, tt.text)
			if got != tt.want {
				t.Errorf("ResolveVerdict(%q, %q) = %q, want %q", tt.challenged, tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchCounterKeywords(t *testing.T) {
	got := MatchCounterKeywords(domain.PersonaIgbo, "Fate, ritual and destiny")
	want := []string{"fate", "ritual", "destiny"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if got := MatchCounterKeywords(domain.PersonaYoruba, "nothing relevant"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}
