package monitoring

import (
	"sort"
	"time"

	"github.com/banshee-data/motionfeat/internal/timeutil"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

type phaseKey struct {
	phase l5descriptor.Phase
	kind  l5descriptor.Kind
}

// PhaseTiming is the accumulated time of one phase for one channel kind.
// Pipeline-level phases use KindNone.
type PhaseTiming struct {
	Phase   l5descriptor.Phase
	Kind    l5descriptor.Kind
	Elapsed time.Duration
	Calls   int
}

// Name is the label used in the diagnostics summary, e.g. "Compute.hog".
func (t PhaseTiming) Name() string {
	if t.Kind == l5descriptor.KindNone {
		return t.Phase.String()
	}
	return t.Phase.String() + "." + t.Kind.String()
}

// PhaseTimers accumulates wall-clock time per phase and channel. It
// implements l5descriptor.Observer. Nested Begin calls for the same key
// are not supported.
type PhaseTimers struct {
	clock   timeutil.Clock
	started map[phaseKey]time.Time
	totals  map[phaseKey]*PhaseTiming
}

// NewPhaseTimers returns timers reading clock. A nil clock uses the real one.
func NewPhaseTimers(clock timeutil.Clock) *PhaseTimers {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &PhaseTimers{
		clock:   clock,
		started: make(map[phaseKey]time.Time),
		totals:  make(map[phaseKey]*PhaseTiming),
	}
}

// Begin marks the start of phase p for kind k.
func (t *PhaseTimers) Begin(p l5descriptor.Phase, k l5descriptor.Kind) {
	t.started[phaseKey{p, k}] = t.clock.Now()
}

// End adds the time since the matching Begin. An End without Begin is ignored.
func (t *PhaseTimers) End(p l5descriptor.Phase, k l5descriptor.Kind) {
	key := phaseKey{p, k}
	start, ok := t.started[key]
	if !ok {
		return
	}
	delete(t.started, key)
	total := t.totals[key]
	if total == nil {
		total = &PhaseTiming{Phase: p, Kind: k}
		t.totals[key] = total
	}
	total.Elapsed += t.clock.Since(start)
	total.Calls++
}

// Elapsed returns the accumulated time of phase p for kind k.
func (t *PhaseTimers) Elapsed(p l5descriptor.Phase, k l5descriptor.Kind) time.Duration {
	if total := t.totals[phaseKey{p, k}]; total != nil {
		return total.Elapsed
	}
	return 0
}

// Summary returns all recorded timings ordered by phase, then kind.
func (t *PhaseTimers) Summary() []PhaseTiming {
	out := make([]PhaseTiming, 0, len(t.totals))
	for _, total := range t.totals {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Phase != out[j].Phase {
			return out[i].Phase < out[j].Phase
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// RunCounts are the frame and call counters reported with the timings.
type RunCounts struct {
	Frames            int
	SkippedFrames     int
	ComputeDescriptor int
}

// Print writes the diagnostics summary through Logf.
func (t *PhaseTimers) Print(c RunCounts) {
	for _, s := range t.Summary() {
		Logf("Time.%s: %.3f s", s.Name(), s.Elapsed.Seconds())
	}
	total := t.Elapsed(l5descriptor.PhaseTotal, l5descriptor.KindNone).Seconds()
	fps := 0.0
	if total > 0 {
		fps = float64(c.Frames) / total
	}
	Logf("Fps: %.2f", fps)
	Logf("Calls.ComputeDescriptor: %d", c.ComputeDescriptor)
	Logf("Frames: %d", c.Frames)
	Logf("Frames.Skipped: %d", c.SkippedFrames)
}
