package monitoring

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motionfeat/internal/timeutil"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

func captureLogf(t *testing.T) *strings.Builder {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var b strings.Builder
	SetLogger(func(format string, v ...any) {
		fmt.Fprintf(&b, format+"\n", v...)
	})
	return &b
}

func TestSetLogger(t *testing.T) {
	b := captureLogf(t)
	Logf("hello %d", 1)
	assert.Equal(t, "hello 1\n", b.String())

	SetLogger(nil)
	Logf("dropped")
	assert.Equal(t, "hello 1\n", b.String())
}

func TestPhaseTimers_Accumulates(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	timers := NewPhaseTimers(clock)

	for i := 0; i < 3; i++ {
		timers.Begin(l5descriptor.PhaseCompute, l5descriptor.KindHOG)
		clock.Advance(10 * time.Millisecond)
		timers.End(l5descriptor.PhaseCompute, l5descriptor.KindHOG)
	}
	timers.Begin(l5descriptor.PhaseRead, l5descriptor.KindNone)
	clock.Advance(time.Second)
	timers.End(l5descriptor.PhaseRead, l5descriptor.KindNone)

	assert.Equal(t, 30*time.Millisecond, timers.Elapsed(l5descriptor.PhaseCompute, l5descriptor.KindHOG))
	assert.Equal(t, time.Second, timers.Elapsed(l5descriptor.PhaseRead, l5descriptor.KindNone))
	assert.Zero(t, timers.Elapsed(l5descriptor.PhaseQuery, l5descriptor.KindHOG))

	summary := timers.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, "Reading", summary[0].Name())
	assert.Equal(t, "Compute.hog", summary[1].Name())
	assert.Equal(t, 3, summary[1].Calls)
}

func TestPhaseTimers_EndWithoutBegin(t *testing.T) {
	timers := NewPhaseTimers(timeutil.NewMockClock(time.Unix(0, 0)))
	timers.End(l5descriptor.PhaseWrite, l5descriptor.KindNone)
	assert.Empty(t, timers.Summary())
}

func TestPhaseTimers_Print(t *testing.T) {
	b := captureLogf(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	timers := NewPhaseTimers(clock)

	timers.Begin(l5descriptor.PhaseTotal, l5descriptor.KindNone)
	clock.Advance(2 * time.Second)
	timers.End(l5descriptor.PhaseTotal, l5descriptor.KindNone)

	timers.Print(RunCounts{Frames: 50, SkippedFrames: 2, ComputeDescriptor: 7})

	out := b.String()
	assert.Contains(t, out, "Time.Total: 2.000 s\n")
	assert.Contains(t, out, "Fps: 25.00\n")
	assert.Contains(t, out, "Calls.ComputeDescriptor: 7\n")
	assert.Contains(t, out, "Frames: 50\n")
	assert.Contains(t, out, "Frames.Skipped: 2\n")
}

func TestPhaseTimers_IsObserver(t *testing.T) {
	var _ l5descriptor.Observer = NewPhaseTimers(nil)
}
