// Package ideas wraps the idea-generation endpoint: product description plus
// feature tags in, three candidate video concepts out.
package ideas

import (
	"context"
	"fmt"
	"strings"

	"promovideo/internal/domain/promo"
	"promovideo/internal/infra"
	"promovideo/internal/providers/genai"
)

const conceptCount = 3

type Gateway struct {
	client *genai.Client
	logger infra.Logger
}

func NewGateway(client *genai.Client, logger infra.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// Generate returns exactly three video concepts for the given product
// description. Transport, parsing, and schema failures all surface as the
// single opaque promo.ErrIdeaGeneration; retry is the caller's concern.
func (g *Gateway) Generate(ctx context.Context, description string, features []string) ([]promo.VideoConcept, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, promo.Validationf("product description is required")
	}

	var concepts []promo.VideoConcept
	if err := g.client.GenerateJSON(ctx, buildPrompt(description, features), &concepts); err != nil {
		g.logger.Warn().Err(err).Msg("ideas: generation failed")
		return nil, promo.ErrIdeaGeneration
	}

	if err := validate(concepts); err != nil {
		g.logger.Warn().Err(err).Msg("ideas: response rejected")
		return nil, promo.ErrIdeaGeneration
	}
	return concepts, nil
}

func buildPrompt(description string, features []string) string {
	var b strings.Builder
	b.WriteString("You are a creative director for short product promo videos. ")
	b.WriteString("Propose ")
	fmt.Fprintf(&b, "%d distinct video concepts for the following product.\n\n", conceptCount)
	b.WriteString("Product: ")
	b.WriteString(description)
	b.WriteString("\n")
	if focus := joinFeatures(features); focus != "" {
		b.WriteString("Focus especially on: ")
		b.WriteString(focus)
		b.WriteString(".\n")
	}
	b.WriteString("\nRespond with a JSON array of exactly ")
	fmt.Fprintf(&b, "%d objects, each with the string fields ", conceptCount)
	b.WriteString(`"title", "description", "visualsSummary" and "videoPrompt". `)
	b.WriteString(`"videoPrompt" must be a self-contained prompt for a video generation model.`)
	return b.String()
}

func joinFeatures(features []string) string {
	kept := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, ", ")
}

func validate(concepts []promo.VideoConcept) error {
	if len(concepts) != conceptCount {
		return fmt.Errorf("expected %d concepts, got %d", conceptCount, len(concepts))
	}
	for i, c := range concepts {
		if strings.TrimSpace(c.Title) == "" ||
			strings.TrimSpace(c.Description) == "" ||
			strings.TrimSpace(c.Visuals) == "" ||
			strings.TrimSpace(c.PromptSeed) == "" {
			return fmt.Errorf("concept %d has empty fields", i)
		}
	}
	return nil
}
