// Package promo holds the wizard's shared domain types: video concepts,
// refinement suggestions, and the error taxonomy crossing component
// boundaries.
package promo

import (
	"errors"
	"fmt"
)

// VideoConcept is one candidate video idea produced by the idea gateway.
// Immutable once produced; exactly one is active per session.
type VideoConcept struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Visuals     string `json:"visualsSummary"`
	PromptSeed  string `json:"videoPrompt"`
}

// RefinementSuggestions are the categorized options offered for one concept.
// Each category carries exactly four entries.
type RefinementSuggestions struct {
	Styles             []string `json:"styleOptions"`
	Environments       []string `json:"environmentOptions"`
	Lighting           []string `json:"lightingOptions"`
	Details            []string `json:"detailOptions"`
	RecommendedSeconds int      `json:"recommendedDurationSeconds"`
}

// AspectRatio identifies a video frame format supported by the generator.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// Gateway errors. Transport, parsing and schema failures inside a gateway all
// collapse into the single opaque error for that gateway; retry is the
// caller's concern.
var (
	ErrIdeaGeneration = errors.New("idea generation failed")
	ErrRefinement     = errors.New("refinement generation failed")
)

// ValidationError reports bad local input (selection counts, empty prompt,
// upload quota). It never reaches a remote call and is always recoverable by
// correcting the input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FailureKind classifies a terminal video-generation failure for
// differentiated recovery.
type FailureKind string

const (
	// FailureQuota marks rate-limit or resource exhaustion. Non-fatal: the
	// user may retry later.
	FailureQuota FailureKind = "quota_exceeded"
	// FailureInvalidCredential marks a rejected API key. The stored
	// credential is forgotten before the error is surfaced.
	FailureInvalidCredential FailureKind = "invalid_credential"
	// FailureTimeout marks a job that did not complete within the maximum
	// polling window.
	FailureTimeout FailureKind = "timeout"
	// FailureUnclassified covers everything else.
	FailureUnclassified FailureKind = "unclassified"
)
