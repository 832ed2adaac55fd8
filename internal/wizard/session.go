// Package wizard drives the four-stage promo-video pipeline for one user
// session: Assets → Ideas → Refine → Generate.
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"promovideo/internal/assets"
	"promovideo/internal/domain/promo"
	"promovideo/internal/promptgen"
	"promovideo/internal/video"
)

// defaultDurationSeconds is used when the prompt is composed before the
// refinement gateway supplied a recommended duration and before the user
// chose one. Mid-range of the allowed 3..15 second window.
const defaultDurationSeconds = 8

var (
	ErrNoActiveConcept = errors.New("no concept selected")
	ErrWrongStage      = errors.New("action not valid in current stage")
	ErrUnknownConcept  = errors.New("unknown concept")
)

// Session is all in-memory state for one wizard run. It lives for the page
// session only; nothing is persisted.
type Session struct {
	ID        string
	CreatedAt time.Time

	Registry     *assets.Registry
	Orchestrator *video.Orchestrator

	mu            sync.Mutex
	stage         Stage
	concepts      []promo.VideoConcept
	activeConcept *promo.VideoConcept
	suggestions   *promo.RefinementSuggestions
	selections    promptgen.Selections
	prompt        string
	stageErr      string
	jobCancel     context.CancelFunc
}

func NewSession(registry *assets.Registry, orchestrator *video.Orchestrator) *Session {
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Registry:     registry,
		Orchestrator: orchestrator,
		stage:        StageAssets,
	}
}

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// SetConcepts records freshly generated concepts and enters the Ideas stage.
// Valid from Assets (first run) and from Ideas (regenerate).
func (s *Session) SetConcepts(concepts []promo.VideoConcept) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage > StageIdeas {
		return ErrWrongStage
	}
	s.concepts = concepts
	s.activeConcept = nil
	s.suggestions = nil
	s.stage = StageIdeas
	s.stageErr = ""
	return nil
}

// Concepts returns the current candidate concepts.
func (s *Session) Concepts() []promo.VideoConcept {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]promo.VideoConcept(nil), s.concepts...)
}

// ChooseConcept activates one of the generated concepts by index and moves to
// the Refine stage.
func (s *Session) ChooseConcept(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage < StageIdeas {
		return ErrWrongStage
	}
	if index < 0 || index >= len(s.concepts) {
		return ErrUnknownConcept
	}
	chosen := s.concepts[index]
	s.activeConcept = &chosen
	s.suggestions = nil
	s.selections = promptgen.Selections{}
	s.prompt = ""
	s.stage = StageRefine
	s.stageErr = ""
	return nil
}

// ActiveConcept returns the concept being refined, if any.
func (s *Session) ActiveConcept() (promo.VideoConcept, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeConcept == nil {
		return promo.VideoConcept{}, false
	}
	return *s.activeConcept, true
}

// SetSuggestions records the refinement suggestions for the active concept
// and seeds the duration selection with the recommended value.
func (s *Session) SetSuggestions(suggestions *promo.RefinementSuggestions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageRefine {
		return ErrWrongStage
	}
	s.suggestions = suggestions
	if s.selections.DurationSeconds == 0 {
		s.selections.DurationSeconds = suggestions.RecommendedSeconds
	}
	return nil
}

// Suggestions returns the stored refinement suggestions, if any.
func (s *Session) Suggestions() (*promo.RefinementSuggestions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suggestions == nil {
		return nil, false
	}
	copied := *s.suggestions
	return &copied, true
}

// UpdateSelections stores the user's refinement choices. Free-form values
// are accepted; they need not match the offered options.
func (s *Session) UpdateSelections(sel promptgen.Selections) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage < StageRefine {
		return ErrWrongStage
	}
	s.selections = sel
	// An edited prompt is stale once the selections change.
	s.prompt = ""
	return nil
}

// EnterGenerate moves to the Generate stage, composing the prompt from the
// current refinement selections unless the user already edited one.
func (s *Session) EnterGenerate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeConcept == nil {
		return "", ErrNoActiveConcept
	}
	if s.prompt == "" {
		sel := s.selections
		if sel.DurationSeconds <= 0 {
			sel.DurationSeconds = defaultDurationSeconds
		}
		s.prompt = promptgen.Compose(s.activeConcept.PromptSeed, sel)
	}
	s.stage = StageGenerate
	s.stageErr = ""
	return s.prompt, nil
}

// SetPrompt overrides the composed prompt with a user edit.
func (s *Session) SetPrompt(prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeConcept == nil {
		return ErrNoActiveConcept
	}
	s.prompt = prompt
	return nil
}

// Prompt returns the current composed (or edited) prompt.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// SetStageError records a stage-scoped user-visible error; it is cleared on
// every forward transition and on reset.
func (s *Session) SetStageError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stageErr = msg
}

// StageError returns the current stage-scoped error message.
func (s *Session) StageError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageErr
}

// BindJob stores the cancel function of the running generation goroutine so
// reset and teardown can abandon it.
func (s *Session) BindJob(cancel context.CancelFunc) {
	s.mu.Lock()
	prev := s.jobCancel
	s.jobCancel = cancel
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// Reset is the only backward transition and is total: it discards the
// concept, suggestions, composed prompt, generation job, and any transient
// error, returning to Assets. The asset registry is preserved.
func (s *Session) Reset() {
	s.mu.Lock()
	cancel := s.jobCancel
	s.jobCancel = nil
	s.concepts = nil
	s.activeConcept = nil
	s.suggestions = nil
	s.selections = promptgen.Selections{}
	s.prompt = ""
	s.stageErr = ""
	s.stage = StageAssets
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.Orchestrator.Abandon()
}

// Teardown releases everything the session owns. Called when the session
// expires or is deleted.
func (s *Session) Teardown() {
	s.mu.Lock()
	cancel := s.jobCancel
	s.jobCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.Orchestrator.Abandon()
	s.Registry.Close()
}
