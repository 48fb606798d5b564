package l4histogram

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/motionfeat/internal/video/l2gradient"
	"github.com/banshee-data/motionfeat/internal/video/l3integral"
)

func flow(w, h int, dx float64) l2gradient.Pair {
	x := mat.NewDense(h, w, nil)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			x.Set(r, c, dx)
		}
	}
	return l2gradient.FromMotion(x, mat.NewDense(h, w, nil))
}

func newTestChannel(t *testing.T, ntCells, tStride int) *Channel {
	t.Helper()
	cfg := l3integral.NewConfig(8, false, ntCells, true).WithCells(1, 1)
	ch, err := NewChannel(cfg, tStride)
	require.NoError(t, err)
	return ch
}

func TestNewChannel_Invalid(t *testing.T) {
	_, err := NewChannel(l3integral.NewConfig(8, false, 3, true), 0)
	assert.Error(t, err)

	_, err = NewChannel(l3integral.NewConfig(0, false, 3, true), 5)
	assert.Error(t, err)
}

func TestChannel_RingLength(t *testing.T) {
	ch := newTestChannel(t, 3, 2)
	for i := 0; i < 20; i++ {
		ch.Update(flow(4, 4, 1))
		if ch.Pending() == 2 {
			ch.Accumulate()
			assert.Zero(t, ch.Pending())
		}
		assert.Equal(t, 3, ch.Cells())
		assert.Less(t, ch.Pending(), 2)
	}
	assert.Equal(t, 3, ch.Filled())
}

func TestChannel_AverageAndOrder(t *testing.T) {
	ch := newTestChannel(t, 3, 2)
	// strides of magnitude 1, 2, 3, 4: the window keeps the last three
	for _, m := range []float64{1, 2, 3, 4} {
		ch.Update(flow(2, 2, m))
		ch.Update(flow(2, 2, m))
		ch.Accumulate()
	}

	out := make([]float32, ch.Config().FullDim())
	ch.QueryPatch(image.Rect(0, 0, 2, 2), out)

	want := make([]float32, 24)
	want[0] = 2 * 4  // oldest: magnitude 2 over 4 pixels
	want[8] = 3 * 4  // middle
	want[16] = 4 * 4 // newest
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("QueryPatch mismatch (-want +got):\n%s", diff)
	}
}

func TestChannel_QueryIdempotent(t *testing.T) {
	ch := newTestChannel(t, 2, 1)
	ch.Update(flow(4, 4, 1))
	ch.Accumulate()
	ch.Update(flow(4, 4, 2))
	ch.Accumulate()

	rect := image.Rect(1, 1, 3, 4)
	first := make([]float32, ch.Config().FullDim())
	ch.QueryPatch(rect, first)
	second := make([]float32, ch.Config().FullDim())
	for i := range second {
		second[i] = 99
	}
	ch.QueryPatch(rect, second)
	assert.Equal(t, first, second)
}

func TestChannel_Advance(t *testing.T) {
	ch := newTestChannel(t, 2, 1)
	ch.Update(flow(2, 2, 1))
	ch.Accumulate()
	ch.Advance()
	assert.Equal(t, 2, ch.Filled())

	out := make([]float32, ch.Config().FullDim())
	ch.QueryPatch(image.Rect(0, 0, 2, 2), out)
	assert.InDelta(t, 4, out[0], 1e-6)
	assert.Zero(t, out[8], "advanced cell is empty")
}

func TestChannel_AccumulateEmptyPanics(t *testing.T) {
	ch := newTestChannel(t, 2, 1)
	assert.Panics(t, ch.Accumulate)
}

func TestChannel_QueryBufferLength(t *testing.T) {
	ch := newTestChannel(t, 2, 1)
	assert.Panics(t, func() { ch.QueryPatch(image.Rect(0, 0, 1, 1), make([]float32, 3)) })
}
