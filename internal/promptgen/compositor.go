// Package promptgen assembles the final video-generation prompt from the
// chosen concept and the user's refinement selections. Pure and
// deterministic: no network, no mutable state.
package promptgen

import (
	"fmt"
	"strings"
)

// fidelityClause pins the product's physical shape. The exact dimensions and
// wall-mounting height bounds must not be altered by any refinement.
const fidelityClause = " The product is a slim wall-mounted panel exactly 60 cm wide, 90 cm tall and 4 cm deep, mounted with its center between 140 cm and 160 cm above the floor; its proportions and mounting height must not be changed."

// Selections are the user's refinement choices. Free-form strings: they may
// diverge from the offered options. Empty fields are omitted from the prompt.
type Selections struct {
	Style           string
	Environment     string
	Lighting        string
	Details         string
	DurationSeconds int
}

// Compose builds the prompt text submitted to the video model. The concept
// seed comes first, then the fixed product-fidelity clause, then each
// non-empty optional clause in fixed order, and finally the duration clause,
// which is always present.
func Compose(seed string, sel Selections) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(seed))
	b.WriteString(fidelityClause)

	if v := strings.TrimSpace(sel.Style); v != "" {
		fmt.Fprintf(&b, " The visual style should be %s.", v)
	}
	if v := strings.TrimSpace(sel.Environment); v != "" {
		fmt.Fprintf(&b, " The setting is %s.", v)
	}
	if v := strings.TrimSpace(sel.Lighting); v != "" {
		fmt.Fprintf(&b, " The lighting should be %s.", v)
	}
	if v := strings.TrimSpace(sel.Details); v != "" {
		fmt.Fprintf(&b, " Emphasize %s.", v)
	}
	fmt.Fprintf(&b, " The video should be approximately %d seconds long.", sel.DurationSeconds)
	return b.String()
}
