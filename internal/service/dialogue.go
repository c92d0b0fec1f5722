package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/persona"
	"github.com/Harshitk-cp/elders/internal/prompt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
)

func transitionError(action string, phase domain.Phase) error {
	return fmt.Errorf("%w: %s is not allowed in phase %s", ErrInvalidTransition, action, phase)
}

// Dialogue is one user's session with the two personas. Every action holds
// the dialogue lock until it finishes, generation calls included, and
// commits its writes only after all of its generation calls have returned.
type Dialogue struct {
	mu  sync.Mutex
	id  uuid.UUID
	gen domain.Generator
	now func() time.Time

	phase            domain.Phase
	cycleID          uuid.UUID
	scenario         string
	advice           map[domain.PersonaID]domain.AdviceRecord
	critiques        map[domain.PersonaID]domain.CritiqueRecord  // keyed by critic
	critiqueFailures map[domain.PersonaID]domain.CritiqueFailure // keyed by critic
	accepted         domain.PersonaID
	challenge        *domain.ChallengeRecord
	scores           domain.ScoreBoard
	updatedAt        time.Time
}

// NewDialogue creates an idle dialogue with zeroed scores.
func NewDialogue(id uuid.UUID, gen domain.Generator) *Dialogue {
	d := &Dialogue{
		id:    id,
		gen:   gen,
		now:   time.Now,
		phase: domain.PhaseIdle,
	}
	d.updatedAt = d.now()
	return d
}

func (d *Dialogue) ID() uuid.UUID {
	return d.id
}

// Phase returns the current phase.
func (d *Dialogue) Phase() domain.Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Snapshot returns a deep copy of the dialogue state.
func (d *Dialogue) Snapshot() domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// SubmitScenario asks both personas for advice on text. Both answers are
// required; if either call fails nothing is stored and the dialogue stays idle.
func (d *Dialogue) SubmitScenario(ctx context.Context, text string) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseIdle {
		return domain.Snapshot{}, transitionError("submit scenario", d.phase)
	}
	scenario := strings.TrimSpace(text)
	if scenario == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: scenario text is required", ErrInvalidInput)
	}

	texts := make([]string, len(domain.PersonaIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range domain.PersonaIDs {
		req := prompt.Advice(persona.MustGet(id), scenario)
		g.Go(func() error {
			out, err := d.gen.Generate(gctx, req)
			if err != nil {
				return fmt.Errorf("generate %s advice: %w", id, err)
			}
			texts[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	now := d.now()
	d.cycleID = uuid.New()
	d.scenario = scenario
	d.advice = make(map[domain.PersonaID]domain.AdviceRecord, len(domain.PersonaIDs))
	for i, id := range domain.PersonaIDs {
		d.advice[id] = domain.AdviceRecord{
			PersonaID: id,
			CycleID:   d.cycleID,
			Text:      texts[i],
			CreatedAt: now,
		}
	}
	d.phase = domain.PhaseAdviceShown
	d.updatedAt = now
	return d.snapshotLocked(), nil
}

// AcceptPersona sides with id: its axis gains AcceptScore and the rival
// persona critiques the accepted advice.
func (d *Dialogue) AcceptPersona(ctx context.Context, id domain.PersonaID) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseAdviceShown {
		return domain.Snapshot{}, transitionError("accept persona", d.phase)
	}
	rival, err := persona.Other(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	critiques, failures, err := d.generateCritiques(ctx, []critiquePair{{critic: rival, target: id}})
	if err != nil {
		return domain.Snapshot{}, err
	}

	d.scores.Add(id, AcceptScore)
	d.accepted = id
	d.critiques = critiques
	d.critiqueFailures = failures
	d.phase = domain.PhaseReflectionShown
	d.updatedAt = d.now()
	return d.snapshotLocked(), nil
}

// ForceCritique skips acceptance and has each persona critique the other.
func (d *Dialogue) ForceCritique(ctx context.Context) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseAdviceShown {
		return domain.Snapshot{}, transitionError("force critique", d.phase)
	}

	critiques, failures, err := d.generateCritiques(ctx, []critiquePair{
		{critic: domain.PersonaYoruba, target: domain.PersonaIgbo},
		{critic: domain.PersonaIgbo, target: domain.PersonaYoruba},
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	d.critiques = critiques
	d.critiqueFailures = failures
	d.phase = domain.PhaseReflectionShown
	d.updatedAt = d.now()
	return d.snapshotLocked(), nil
}

// RetryCritiques regenerates the critiques that failed on the way into
// reflection. Existing critiques are never regenerated.
func (d *Dialogue) RetryCritiques(ctx context.Context) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseReflectionShown {
		return domain.Snapshot{}, transitionError("retry critiques", d.phase)
	}
	if len(d.critiqueFailures) == 0 {
		return d.snapshotLocked(), nil
	}

	pairs := make([]critiquePair, 0, len(d.critiqueFailures))
	for _, id := range domain.PersonaIDs {
		if f, ok := d.critiqueFailures[id]; ok {
			pairs = append(pairs, critiquePair{critic: f.CriticID, target: f.TargetID})
		}
	}

	critiques, failures, err := d.generateCritiques(ctx, pairs)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for critic, c := range critiques {
		d.critiques[critic] = c
		delete(d.critiqueFailures, critic)
	}
	for critic, f := range failures {
		d.critiqueFailures[critic] = f
	}
	d.updatedAt = d.now()
	return d.snapshotLocked(), nil
}

// Challenge opens the arena against persona id.
func (d *Dialogue) Challenge(id domain.PersonaID) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseReflectionShown {
		return domain.Snapshot{}, transitionError("challenge", d.phase)
	}
	if !id.Valid() {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", domain.ErrUnknownPersona, id)
	}
	if _, ok := d.advice[id]; !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: %s has no advice in this cycle", ErrInvalidTransition, id)
	}

	d.challenge = &domain.ChallengeRecord{ChallengedID: id}
	d.phase = domain.PhaseChallengeActive
	d.updatedAt = d.now()
	return d.snapshotLocked(), nil
}

// SubmitChallenge sends the user's argument to the challenged persona,
// records its defense and resolves the verdict in the same transition.
func (d *Dialogue) SubmitChallenge(ctx context.Context, text string) (domain.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseChallengeActive {
		return domain.Snapshot{}, transitionError("submit challenge", d.phase)
	}
	argument := strings.TrimSpace(text)
	if argument == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: challenge text is required", ErrInvalidInput)
	}

	challenged := d.challenge.ChallengedID
	p := persona.MustGet(challenged)
	req := prompt.ChallengeDefense(p, argument, d.scenario, d.advice[challenged].Text)

	defense, err := d.gen.Generate(ctx, req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("generate %s defense: %w", challenged, err)
	}

	matched := MatchCounterKeywords(challenged, argument)
	verdict := domain.VerdictDefeated
	if len(matched) > 0 {
		verdict = domain.VerdictSuccess
	}

	d.challenge = &domain.ChallengeRecord{
		ChallengedID:    challenged,
		ChallengeText:   argument,
		DefenseText:     defense,
		Verdict:         &verdict,
		MatchedKeywords: matched,
	}

	switch verdict {
	case domain.VerdictSuccess:
		rival, _ := persona.Other(challenged)
		d.scores.Add(rival, ChallengeSuccessRivalScore)
		d.scores.Add(challenged, ChallengeSuccessOwnScore)
	default:
		d.scores.Add(domain.PersonaYoruba, ChallengeDefeatedScore)
		d.scores.Add(domain.PersonaIgbo, ChallengeDefeatedScore)
	}

	d.phase = domain.PhaseChallengeResolved
	d.updatedAt = d.now()
	return d.snapshotLocked(), nil
}

// ConcludeBase ends the cycle from reflection without a challenge. Both axes
// gain ConcludeBaseScore. The concluded cycle is returned for the history.
func (d *Dialogue) ConcludeBase() (domain.Snapshot, *domain.CycleRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseReflectionShown {
		return domain.Snapshot{}, nil, transitionError("conclude base", d.phase)
	}

	d.scores.Add(domain.PersonaYoruba, ConcludeBaseScore)
	d.scores.Add(domain.PersonaIgbo, ConcludeBaseScore)
	record := d.cycleRecordLocked(domain.CycleOutcomeBase)
	d.clearCycleLocked()
	return d.snapshotLocked(), record, nil
}

// ConcludeCycle ends a resolved challenge and returns to idle. Scores are kept.
func (d *Dialogue) ConcludeCycle() (domain.Snapshot, *domain.CycleRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseChallengeResolved {
		return domain.Snapshot{}, nil, transitionError("conclude cycle", d.phase)
	}

	record := d.cycleRecordLocked(domain.CycleOutcomeChallenge)
	d.clearCycleLocked()
	return d.snapshotLocked(), record, nil
}

// ResetScores zeroes the scoreboard and drops any cycle in progress.
// Valid in every phase.
func (d *Dialogue) ResetScores() domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.scores = domain.ScoreBoard{}
	d.clearCycleLocked()
	return d.snapshotLocked()
}

type critiquePair struct {
	critic domain.PersonaID
	target domain.PersonaID
}

// generateCritiques runs one generation per pair concurrently. Pairs fail
// independently; an error is returned only when every pair failed.
func (d *Dialogue) generateCritiques(ctx context.Context, pairs []critiquePair) (map[domain.PersonaID]domain.CritiqueRecord, map[domain.PersonaID]domain.CritiqueFailure, error) {
	texts := make([]string, len(pairs))
	errs := make([]error, len(pairs))

	var g errgroup.Group
	for i, pair := range pairs {
		critic := persona.MustGet(pair.critic)
		target := persona.MustGet(pair.target)
		req, err := prompt.Critique(critic, target, d.scenario, d.advice[pair.target].Text)
		if err != nil {
			return nil, nil, err
		}
		g.Go(func() error {
			out, err := d.gen.Generate(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("generate %s critique: %w", pair.critic, err)
				return nil
			}
			texts[i] = out
			return nil
		})
	}
	_ = g.Wait()

	now := d.now()
	critiques := make(map[domain.PersonaID]domain.CritiqueRecord, len(pairs))
	failures := make(map[domain.PersonaID]domain.CritiqueFailure)
	var firstErr error
	for i, pair := range pairs {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			failures[pair.critic] = domain.CritiqueFailure{
				CriticID: pair.critic,
				TargetID: pair.target,
				Error:    errs[i].Error(),
			}
			continue
		}
		critiques[pair.critic] = domain.CritiqueRecord{
			CriticID:  pair.critic,
			TargetID:  pair.target,
			Text:      texts[i],
			CreatedAt: now,
		}
	}

	if len(critiques) == 0 {
		return nil, nil, firstErr
	}
	return critiques, failures, nil
}

func (d *Dialogue) cycleRecordLocked(outcome domain.CycleOutcome) *domain.CycleRecord {
	snap := d.snapshotLocked()
	return &domain.CycleRecord{
		ID:              d.cycleID,
		SessionID:       d.id,
		Scenario:        d.scenario,
		Outcome:         outcome,
		AcceptedPersona: snap.AcceptedPersona,
		Advice:          snap.Advice,
		Critiques:       snap.Critiques,
		Challenge:       snap.Challenge,
		ScoresAfter:     d.scores,
		ConcludedAt:     d.now(),
	}
}

func (d *Dialogue) clearCycleLocked() {
	d.phase = domain.PhaseIdle
	d.cycleID = uuid.Nil
	d.scenario = ""
	d.advice = nil
	d.critiques = nil
	d.critiqueFailures = nil
	d.accepted = ""
	d.challenge = nil
	d.updatedAt = d.now()
}

func (d *Dialogue) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID: d.id,
		CycleID:   d.cycleID,
		Phase:     d.phase,
		Scenario:  d.scenario,
		Scores:    d.scores,
		UpdatedAt: d.updatedAt,
	}

	for _, id := range domain.PersonaIDs {
		if a, ok := d.advice[id]; ok {
			snap.Advice = append(snap.Advice, a)
		}
		if c, ok := d.critiques[id]; ok {
			snap.Critiques = append(snap.Critiques, c)
		}
		if f, ok := d.critiqueFailures[id]; ok {
			snap.CritiqueFailures = append(snap.CritiqueFailures, f)
		}
	}

	// Upset and absent personas are display hints only.
	if d.accepted != "" {
		accepted := d.accepted
		snap.AcceptedPersona = &accepted
		if rival, err := persona.Other(accepted); err == nil {
			snap.UpsetPersona = &rival
		}
	}

	if d.challenge != nil {
		c := *d.challenge
		if c.Verdict != nil {
			v := *c.Verdict
			c.Verdict = &v
		}
		c.MatchedKeywords = append([]string(nil), c.MatchedKeywords...)
		snap.Challenge = &c
		if rival, err := persona.Other(c.ChallengedID); err == nil {
			snap.AbsentPersona = &rival
		}
	}

	return snap
}
