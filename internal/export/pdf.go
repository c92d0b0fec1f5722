// Package export renders a session transcript for download.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/persona"
	"github.com/jung-kurt/gofpdf"
)

const (
	lineHeight = 6.0
	timeLayout = "2006-01-02 15:04 MST"
)

type transcript struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// WritePDF renders the current cycle of snap followed by the concluded
// cycles in history (newest first) as a PDF document.
func WritePDF(w io.Writer, snap domain.Snapshot, history []domain.CycleRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Council of Elders transcript", true)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	t := &transcript{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	t.heading(16, "Council of Elders")
	t.text(fmt.Sprintf("Session %s", snap.SessionID))
	t.text(fmt.Sprintf("Generated %s", snap.UpdatedAt.UTC().Format(timeLayout)))
	t.scores(snap.Scores)

	if snap.Phase != domain.PhaseIdle {
		t.heading(13, "Current cycle")
		t.text(fmt.Sprintf("Phase: %s", snap.Phase))
		t.cycle(snap.Scenario, snap.Advice, snap.Critiques, snap.Challenge)
	}

	if len(history) > 0 {
		t.heading(13, "Concluded cycles")
		for _, c := range history {
			t.subheading(fmt.Sprintf("%s (%s)", c.ConcludedAt.UTC().Format(timeLayout), c.Outcome))
			if c.AcceptedPersona != nil {
				t.text("Accepted: " + displayName(*c.AcceptedPersona))
			}
			t.cycle(c.Scenario, c.Advice, c.Critiques, c.Challenge)
			t.scores(c.ScoresAfter)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}

func (t *transcript) cycle(scenario string, advice []domain.AdviceRecord, critiques []domain.CritiqueRecord, challenge *domain.ChallengeRecord) {
	t.labelled("Scenario", scenario)
	for _, a := range advice {
		t.labelled(displayName(a.PersonaID)+" advises", a.Text)
	}
	for _, c := range critiques {
		t.labelled(fmt.Sprintf("%s critiques the %s", displayName(c.CriticID), displayName(c.TargetID)), c.Text)
	}
	if challenge == nil {
		return
	}
	t.labelled("Challenge to the "+displayName(challenge.ChallengedID), challenge.ChallengeText)
	if challenge.DefenseText != "" {
		t.labelled("Defense", challenge.DefenseText)
	}
	if challenge.Verdict != nil {
		verdict := string(*challenge.Verdict)
		if len(challenge.MatchedKeywords) > 0 {
			verdict += " (" + strings.Join(challenge.MatchedKeywords, ", ") + ")"
		}
		t.labelled("Verdict", verdict)
	}
}

func (t *transcript) scores(s domain.ScoreBoard) {
	parts := make([]string, 0, len(domain.PersonaIDs))
	for _, p := range persona.All() {
		parts = append(parts, fmt.Sprintf("%s: %d", p.ScoreLabel, s.Get(p.ID)))
	}
	t.text(strings.Join(parts, "   "))
}

func (t *transcript) heading(size float64, s string) {
	t.pdf.Ln(2)
	t.pdf.SetFont("Helvetica", "B", size)
	t.pdf.MultiCell(0, lineHeight+2, t.tr(s), "", "L", false)
	t.pdf.Ln(1)
}

func (t *transcript) subheading(s string) {
	t.pdf.Ln(1)
	t.pdf.SetFont("Helvetica", "B", 11)
	t.pdf.MultiCell(0, lineHeight, t.tr(s), "", "L", false)
}

func (t *transcript) labelled(label, body string) {
	if body == "" {
		return
	}
	t.pdf.SetFont("Helvetica", "B", 10)
	t.pdf.MultiCell(0, lineHeight, t.tr(label+":"), "", "L", false)
	t.pdf.SetFont("Helvetica", "", 10)
	t.pdf.MultiCell(0, lineHeight, t.tr(body), "", "L", false)
	t.pdf.Ln(1)
}

func (t *transcript) text(s string) {
	t.pdf.SetFont("Helvetica", "", 10)
	t.pdf.MultiCell(0, lineHeight, t.tr(s), "", "L", false)
}

func displayName(id domain.PersonaID) string {
	p, err := persona.Get(id)
	if err != nil {
		return string(id)
	}
	return p.DisplayName
}
