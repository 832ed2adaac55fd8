package wizard

// Stage is the wizard's position in the four-step pipeline. Forward movement
// is gated on the prior stage's output artifact; Reset is the only backward
// transition.
type Stage int

const (
	StageAssets Stage = iota
	StageIdeas
	StageRefine
	StageGenerate
)

func (s Stage) String() string {
	switch s {
	case StageAssets:
		return "assets"
	case StageIdeas:
		return "ideas"
	case StageRefine:
		return "refine"
	case StageGenerate:
		return "generate"
	default:
		return "unknown"
	}
}
