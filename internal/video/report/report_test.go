package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motionfeat/internal/monitoring"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

func sampleTimings() []monitoring.PhaseTiming {
	return []monitoring.PhaseTiming{
		{Phase: l5descriptor.PhaseRead, Elapsed: 120 * time.Millisecond, Calls: 10},
		{Phase: l5descriptor.PhaseCompute, Kind: l5descriptor.KindHOF, Elapsed: 40 * time.Millisecond, Calls: 10},
		{Phase: l5descriptor.PhaseTotal, Elapsed: 300 * time.Millisecond, Calls: 1},
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, Summary{Title: "run", Frames: 10}, sampleTimings()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "png signature")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Summary{Title: "run", Frames: 10, Patches: 4}, sampleTimings()))
	out := buf.String()
	assert.Contains(t, out, "Compute.hof")
	assert.Contains(t, out, "frames=10 patches=4")
}

func TestEmptyTimings(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePNG(&buf, Summary{}, nil), ErrNoTimings)
	assert.ErrorIs(t, WriteHTML(&buf, Summary{}, nil), ErrNoTimings)
}
