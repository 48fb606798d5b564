package l5descriptor

// Phase names a timed stage of descriptor extraction.
type Phase int

const (
	PhaseRead Phase = iota
	PhaseInterpolate
	PhaseCompute
	PhaseQuery
	PhaseWrite
	PhaseTotal
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "Reading"
	case PhaseInterpolate:
		return "Interpolation"
	case PhaseCompute:
		return "Compute"
	case PhaseQuery:
		return "Query"
	case PhaseWrite:
		return "Writing"
	case PhaseTotal:
		return "Total"
	default:
		return "Unknown"
	}
}

// Observer receives begin/end notifications around timed work. Observers
// must not change extraction results.
type Observer interface {
	Begin(p Phase, k Kind)
	End(p Phase, k Kind)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) Begin(Phase, Kind) {}
func (NopObserver) End(Phase, Kind)   {}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs o as the engine's timing observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = o
		}
	}
}
