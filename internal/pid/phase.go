package pid

import "fmt"

// Phase is the sub-phase of the twiddle cycle for the gain that is currently being tuned.
type Phase int

const (
	// PhaseTryIncrease nothing has been tried for the current gain yet,
	// the next Tune call will increase it by its step size.
	PhaseTryIncrease Phase = iota
	// PhaseTryDecrease the increase has been applied, if the next window
	// does not improve on the best error the gain is decreased instead.
	PhaseTryDecrease
	// PhaseEvaluate both directions have been applied, if the next window
	// does not improve on the best error the gain is reverted and its step shrinks.
	PhaseEvaluate
	// PhaseSettled the step sizes have converged, tuning is done.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseTryIncrease:
		return "TryIncrease"
	case PhaseTryDecrease:
		return "TryDecrease"
	case PhaseEvaluate:
		return "Evaluate"
	case PhaseSettled:
		return "Settled"
	default:
		return "Unknown"
	}
}

// MarshalText is used for json and yaml output of reports and api responses
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, phase := range []Phase{PhaseTryIncrease, PhaseTryDecrease, PhaseEvaluate, PhaseSettled} {
		if phase.String() == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %s", string(text))
}
