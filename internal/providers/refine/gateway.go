// Package refine wraps the refinement endpoint: one chosen concept in,
// categorized suggestion sets plus a recommended duration out.
package refine

import (
	"context"
	"fmt"
	"strings"

	"promovideo/internal/domain/promo"
	"promovideo/internal/infra"
	"promovideo/internal/providers/genai"
)

const optionsPerCategory = 4

const (
	minDurationSeconds = 3
	maxDurationSeconds = 15
)

type Gateway struct {
	client *genai.Client
	logger infra.Logger
}

func NewGateway(client *genai.Client, logger infra.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// Generate returns refinement suggestions for the active concept: four
// options per category and a recommended duration in [3,15] seconds. Any
// transport, parsing, or schema violation fails the whole call with
// promo.ErrRefinement; there are no truncated results.
func (g *Gateway) Generate(ctx context.Context, concept promo.VideoConcept) (*promo.RefinementSuggestions, error) {
	var suggestions promo.RefinementSuggestions
	if err := g.client.GenerateJSON(ctx, buildPrompt(concept), &suggestions); err != nil {
		g.logger.Warn().Err(err).Str("concept", concept.Title).Msg("refine: generation failed")
		return nil, promo.ErrRefinement
	}

	if err := validate(&suggestions); err != nil {
		g.logger.Warn().Err(err).Str("concept", concept.Title).Msg("refine: response rejected")
		return nil, promo.ErrRefinement
	}
	return &suggestions, nil
}

func buildPrompt(concept promo.VideoConcept) string {
	var b strings.Builder
	b.WriteString("A promo video will be produced from this concept.\n\n")
	b.WriteString("Title: ")
	b.WriteString(concept.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(concept.Description)
	b.WriteString("\n\nSuggest refinement options the user can pick from. ")
	fmt.Fprintf(&b, "Respond with a JSON object containing the string-array fields "+
		`"styleOptions", "environmentOptions", "lightingOptions" and "detailOptions" `+
		"(exactly %d entries each) plus the integer field "+
		`"recommendedDurationSeconds" between %d and %d.`,
		optionsPerCategory, minDurationSeconds, maxDurationSeconds)
	return b.String()
}

func validate(s *promo.RefinementSuggestions) error {
	for name, opts := range map[string][]string{
		"styleOptions":       s.Styles,
		"environmentOptions": s.Environments,
		"lightingOptions":    s.Lighting,
		"detailOptions":      s.Details,
	} {
		if len(opts) != optionsPerCategory {
			return fmt.Errorf("%s: expected %d entries, got %d", name, optionsPerCategory, len(opts))
		}
		for _, opt := range opts {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%s: empty entry", name)
			}
		}
	}
	if s.RecommendedSeconds < minDurationSeconds || s.RecommendedSeconds > maxDurationSeconds {
		return fmt.Errorf("recommendedDurationSeconds %d outside [%d,%d]", s.RecommendedSeconds, minDurationSeconds, maxDurationSeconds)
	}
	return nil
}
