package l5descriptor

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/motionfeat/internal/video/l1frames"
	"github.com/banshee-data/motionfeat/internal/video/l2gradient"
	"github.com/banshee-data/motionfeat/internal/video/l4histogram"
)

// ErrMalformedFrame is returned by ProcessFrame for frames without a raw
// image or flagged as carrying no motion vectors.
var ErrMalformedFrame = errors.New("malformed frame")

// deriveFunc produces a channel's gradient pair for a frame. ok is false
// when the frame carries nothing for the channel.
type deriveFunc func(f *l1frames.Frame) (p l2gradient.Pair, ok bool)

type slot struct {
	kind   Kind
	ch     *l4histogram.Channel
	derive deriveFunc
	span   Span
}

// Stats counts engine activity since construction.
type Stats struct {
	Frames        int // effective frames processed
	Accumulations int // stride boundaries reached
	Advances      int // empty cells rotated in for channels without input
	Queries       int // QueryPatch calls
}

// Engine maintains one histogram channel per enabled descriptor kind over a
// sliding window of NtCells*TStride frames and packs their patch histograms
// into a single descriptor.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	slots  []slot
	layout []Span
	buf    []float32

	pts     []int // ring of the last NtCells*TStride effective PTS values
	ptsNext int
	ptsLen  int

	frames      int
	ready       bool
	warnedEarly bool
	obs         Observer
	stats       Stats
}

// NewEngine validates cfg and returns an engine with empty channels.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor engine: %w", err)
	}
	e := &Engine{
		cfg: cfg,
		pts: make([]int, cfg.NtCells*cfg.TStride),
		obs: NopObserver{},
	}
	for _, o := range opts {
		o(e)
	}

	offset := 0
	for _, k := range cfg.Enabled() {
		ch, err := l4histogram.NewChannel(cfg.For(k), cfg.TStride)
		if err != nil {
			return nil, fmt.Errorf("descriptor engine: %s: %w", k, err)
		}
		span := Span{Kind: k, Offset: offset, Len: cfg.For(k).FullDim()}
		offset += span.Len
		e.slots = append(e.slots, slot{kind: k, ch: ch, derive: deriverFor(k), span: span})
		e.layout = append(e.layout, span)
	}
	e.buf = make([]float32, offset)

	diagf("engine: channels=%v len=%d nt_cells=%d t_stride=%d frame=%v",
		cfg.Enabled(), len(e.buf), cfg.NtCells, cfg.TStride, cfg.FrameSize)
	return e, nil
}

func deriverFor(k Kind) deriveFunc {
	switch k {
	case KindHOG:
		return func(f *l1frames.Frame) (l2gradient.Pair, bool) {
			if f.RawImage == nil {
				return l2gradient.Pair{}, false
			}
			return l2gradient.Derive(f.RawImage), true
		}
	case KindHOF:
		return func(f *l1frames.Frame) (l2gradient.Pair, bool) {
			if f.DX == nil || f.DY == nil {
				return l2gradient.Pair{}, false
			}
			return l2gradient.FromMotion(f.DX, f.DY), true
		}
	case KindMBHX:
		return gridDeriver(func(f *l1frames.Frame) *mat.Dense { return f.DX })
	case KindMBHY:
		return gridDeriver(func(f *l1frames.Frame) *mat.Dense { return f.DY })
	case KindSpatialVariance:
		return regionDeriver(func(r *l1frames.RegionMaps) *mat.Dense { return r.SpatialVariance })
	case KindDC:
		return regionDeriver(func(r *l1frames.RegionMaps) *mat.Dense { return r.DC })
	case KindVerticalVariance:
		return regionDeriver(func(r *l1frames.RegionMaps) *mat.Dense { return r.VerticalVariance })
	case KindHorizontalVariance:
		return regionDeriver(func(r *l1frames.RegionMaps) *mat.Dense { return r.HorizontalVariance })
	}
	return func(*l1frames.Frame) (l2gradient.Pair, bool) { return l2gradient.Pair{}, false }
}

func gridDeriver(grid func(*l1frames.Frame) *mat.Dense) deriveFunc {
	return func(f *l1frames.Frame) (l2gradient.Pair, bool) {
		g := grid(f)
		if g == nil {
			return l2gradient.Pair{}, false
		}
		return l2gradient.Derive(g), true
	}
}

func regionDeriver(grid func(*l1frames.RegionMaps) *mat.Dense) deriveFunc {
	return func(f *l1frames.Frame) (l2gradient.Pair, bool) {
		if f.Regions == nil {
			return l2gradient.Pair{}, false
		}
		g := grid(f.Regions)
		if g == nil {
			return l2gradient.Pair{}, false
		}
		return l2gradient.Derive(g), true
	}
}

// ProcessFrame feeds f to every enabled channel. At each stride boundary
// the channels accumulate their pending frames, and the engine becomes ready
// once NtCells strides have been accumulated. Readiness holds only until the
// next call.
func (e *Engine) ProcessFrame(f *l1frames.Frame) error {
	if f.Malformed() {
		return ErrMalformedFrame
	}

	for i := range e.slots {
		s := &e.slots[i]
		e.obs.Begin(PhaseCompute, s.kind)
		if p, ok := s.derive(f); ok {
			s.ch.Update(p)
		}
		e.obs.End(PhaseCompute, s.kind)
	}

	e.pts[e.ptsNext] = f.PTS
	e.ptsNext = (e.ptsNext + 1) % len(e.pts)
	e.ptsLen = min(e.ptsLen+1, len(e.pts))
	e.frames++
	e.stats.Frames++
	e.ready = false

	if e.frames%e.cfg.TStride == 0 {
		for i := range e.slots {
			s := &e.slots[i]
			e.obs.Begin(PhaseCompute, s.kind)
			if s.ch.Pending() == 0 {
				s.ch.Advance()
				e.stats.Advances++
			} else {
				s.ch.Accumulate()
			}
			e.obs.End(PhaseCompute, s.kind)
		}
		e.stats.Accumulations++
		e.ready = e.frames >= e.cfg.NtCells*e.cfg.TStride
		diagf("stride %d complete at pts=%d ready=%v", e.stats.Accumulations, f.PTS, e.ready)
	}
	tracef("frame pts=%d count=%d ready=%v", f.PTS, e.frames, e.ready)
	return nil
}

// Ready reports whether the last processed frame completed a full window.
func (e *Engine) Ready() bool { return e.ready }

// Frames returns the number of effective frames processed.
func (e *Engine) Frames() int { return e.frames }

// Len is the packed descriptor length.
func (e *Engine) Len() int { return len(e.buf) }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Stats returns the engine counters.
func (e *Engine) Stats() Stats { return e.stats }

// Layout returns the spans of the enabled channels in packed order.
func (e *Engine) Layout() []Span {
	out := make([]Span, len(e.layout))
	copy(out, e.layout)
	return out
}

// Window returns the first and last PTS of the current window, or EndPTS
// for both before any frame.
func (e *Engine) Window() (start, end int) {
	if e.ptsLen == 0 {
		return l1frames.EndPTS, l1frames.EndPTS
	}
	n := len(e.pts)
	first := (e.ptsNext - e.ptsLen + n) % n
	last := (e.ptsNext - 1 + n) % n
	return e.pts[first], e.pts[last]
}

// QueryPatch returns the packed descriptor of rect, in descriptor grid
// coordinates. The returned slice is shared and overwritten by the next
// query. Querying before Ready yields a descriptor over partially empty
// temporal cells.
func (e *Engine) QueryPatch(rect image.Rectangle) []float32 {
	if !e.ready && !e.warnedEarly {
		opsf("patch query before the window is complete (frames=%d, need multiple of %d >= %d)",
			e.frames, e.cfg.TStride, e.cfg.NtCells*e.cfg.TStride)
		e.warnedEarly = true
	}
	for i := range e.slots {
		s := &e.slots[i]
		e.obs.Begin(PhaseQuery, s.kind)
		s.ch.QueryPatch(rect, e.buf[s.span.Offset:s.span.Offset+s.span.Len])
		e.obs.End(PhaseQuery, s.kind)
	}
	e.stats.Queries++
	return e.buf
}
