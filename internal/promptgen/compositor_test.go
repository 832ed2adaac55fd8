package promptgen

import (
	"strings"
	"testing"
)

func TestComposeOnlyDuration(t *testing.T) {
	got := Compose("A calm pan across the product.", Selections{DurationSeconds: 7})
	want := "A calm pan across the product." + fidelityClause + " The video should be approximately 7 seconds long."
	if got != want {
		t.Fatalf("Compose mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestComposeAllClausesInOrder(t *testing.T) {
	got := Compose("Seed.", Selections{
		Style:           "cinematic",
		Environment:     "a modern living room",
		Lighting:        "warm morning light",
		Details:         "the matte finish",
		DurationSeconds: 10,
	})

	clauses := []string{
		"Seed.",
		"The visual style should be cinematic.",
		"The setting is a modern living room.",
		"The lighting should be warm morning light.",
		"Emphasize the matte finish.",
		"The video should be approximately 10 seconds long.",
	}
	last := -1
	for _, clause := range clauses {
		idx := strings.Index(got, clause)
		if idx < 0 {
			t.Fatalf("missing clause %q in %q", clause, got)
		}
		if idx < last {
			t.Fatalf("clause %q out of order in %q", clause, got)
		}
		last = idx
	}
}

func TestComposeAlwaysPinsProductShape(t *testing.T) {
	got := Compose("Seed.", Selections{Style: "anything", DurationSeconds: 5})
	if !strings.Contains(got, "60 cm wide, 90 cm tall") {
		t.Fatalf("fidelity clause missing from %q", got)
	}
	if !strings.Contains(got, "between 140 cm and 160 cm") {
		t.Fatalf("mounting bounds missing from %q", got)
	}
}

func TestComposeTrimsWhitespace(t *testing.T) {
	got := Compose("  Seed.  ", Selections{Style: "  ", DurationSeconds: 4})
	if strings.Contains(got, "visual style") {
		t.Fatalf("blank style must be omitted: %q", got)
	}
	if !strings.HasPrefix(got, "Seed.") {
		t.Fatalf("seed not trimmed: %q", got)
	}
}
