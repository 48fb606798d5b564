package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/banshee-data/motionfeat/internal/config"
	"github.com/banshee-data/motionfeat/internal/video/l1frames"
	"github.com/banshee-data/motionfeat/internal/video/l2regions"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

// Stats summarizes a run.
type Stats struct {
	FramesRead     int // frames returned by the source
	Frames         int // frames fed to the engine
	FilteredFrames int // dropped by the PTS filter
	SkippedFrames  int // malformed frames
	ReadyEvents    int // windows completed
	Patches        int // descriptors written
	Queries        int // engine patch queries
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver routes pipeline and engine timing notifications to o.
func WithObserver(o l5descriptor.Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.obs = o
		}
	}
}

// Runner extracts descriptors from a source into a sink.
type Runner struct {
	cfg    Config
	src    l1frames.Source
	sink   l5descriptor.Sink
	obs    l5descriptor.Observer
	engine *l5descriptor.Engine

	geom     l1frames.Geometry
	size     image.Point // descriptor grid
	cellSize int         // pixels per descriptor grid cell
	goodPTS  map[int]struct{}
}

// NewRunner validates cfg against the source geometry and builds the engine.
func NewRunner(cfg Config, src l1frames.Source, sink l5descriptor.Sink, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	r := &Runner{cfg: cfg, src: src, sink: sink, obs: l5descriptor.NopObserver{}}
	for _, o := range opts {
		o(r)
	}

	r.geom = src.Geometry()
	if r.geom.Grid.X <= 0 || r.geom.Grid.Y <= 0 {
		return nil, fmt.Errorf("pipeline: source grid %v must be positive", r.geom.Grid)
	}
	r.size = l1frames.InterpolatedSize(r.geom.Grid, cfg.Interpolation)
	r.cellSize = max(1, r.geom.Original.X/r.size.X)

	cfg.Engine.FrameSize = r.size
	engine, err := l5descriptor.NewEngine(cfg.Engine, l5descriptor.WithObserver(r.obs))
	if err != nil {
		return nil, err
	}
	r.engine = engine
	r.cfg = cfg

	if len(cfg.GoodPTS) > 0 {
		r.goodPTS = make(map[int]struct{}, len(cfg.GoodPTS))
		for _, pts := range cfg.GoodPTS {
			r.goodPTS[pts] = struct{}{}
		}
	}

	diagf("frame count: %d", r.geom.FrameCount)
	diagf("original frame size: %dx%d", r.geom.Original.X, r.geom.Original.Y)
	diagf("motion grid: %dx%d", r.geom.Grid.X, r.geom.Grid.Y)
	diagf("descriptor grid: %dx%d", r.size.X, r.size.Y)
	diagf("cell size: %d", r.cellSize)
	return r, nil
}

// Engine returns the runner's descriptor engine.
func (r *Runner) Engine() *l5descriptor.Engine { return r.engine }

// FrameSize returns the descriptor grid size.
func (r *Runner) FrameSize() image.Point { return r.size }

// CellSize returns the width in pixels of one descriptor grid cell.
func (r *Runner) CellSize() int { return r.cellSize }

// ScanGeometry returns the block size and strides, in grid cells, used to
// scan a patch of the given pixel size.
func (r *Runner) ScanGeometry(patch image.Point) (block, stride image.Point) {
	block = image.Pt(patch.X/r.cellSize, patch.Y/r.cellSize)
	stride = image.Pt(1, 1)
	if r.cfg.ScanStrideMode != config.ScanDense {
		stride = image.Pt(max(1, block.X/2), max(1, block.Y/2))
	}
	return block, stride
}

// Run reads the source to the end, or until ctx is cancelled between frames.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	r.obs.Begin(l5descriptor.PhaseTotal, l5descriptor.KindNone)
	defer r.obs.End(l5descriptor.PhaseTotal, l5descriptor.KindNone)

	counting := l5descriptor.SinkFunc(func(p l5descriptor.Patch, desc []float32) error {
		r.obs.Begin(l5descriptor.PhaseWrite, l5descriptor.KindNone)
		err := r.sink.WritePatch(p, desc)
		r.obs.End(l5descriptor.PhaseWrite, l5descriptor.KindNone)
		if err == nil {
			stats.Patches++
		}
		return err
	})

	for {
		if err := ctx.Err(); err != nil {
			return r.finish(stats), err
		}

		r.obs.Begin(l5descriptor.PhaseRead, l5descriptor.KindNone)
		f, err := r.src.Read()
		r.obs.End(l5descriptor.PhaseRead, l5descriptor.KindNone)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r.finish(stats), fmt.Errorf("read frame: %w", err)
		}
		stats.FramesRead++
		tracef("read frame pts=%d, mvs=%s, type=%c", f.PTS, yesNo(!f.NoMotionVectors), pictType(f.PictType))

		if r.goodPTS != nil {
			if _, ok := r.goodPTS[f.PTS]; !ok {
				stats.FilteredFrames++
				continue
			}
		}
		if f.Malformed() {
			stats.SkippedFrames++
			continue
		}

		l2regions.Extract(f, r.cfg.RegionBlockSize)

		r.obs.Begin(l5descriptor.PhaseInterpolate, l5descriptor.KindNone)
		l1frames.Interpolate(f, r.size, r.cfg.FlowScale)
		r.obs.End(l5descriptor.PhaseInterpolate, l5descriptor.KindNone)

		if err := r.engine.ProcessFrame(f); err != nil {
			return r.finish(stats), fmt.Errorf("frame %d: %w", f.PTS, err)
		}
		stats.Frames++

		if !r.engine.Ready() {
			continue
		}
		stats.ReadyEvents++
		for _, patch := range r.cfg.PatchSizes {
			block, stride := r.ScanGeometry(patch)
			if block.X <= 0 || block.Y <= 0 {
				opsf("patch %v is smaller than one %d pixel cell, skipped", patch, r.cellSize)
				continue
			}
			if err := r.engine.ScanDense(block.X, block.Y, stride.X, stride.Y, counting); err != nil {
				return r.finish(stats), fmt.Errorf("scan %v at pts %d: %w", patch, f.PTS, err)
			}
		}
	}

	stats = r.finish(stats)
	diagf("run complete: read=%d frames=%d skipped=%d filtered=%d patches=%d",
		stats.FramesRead, stats.Frames, stats.SkippedFrames, stats.FilteredFrames, stats.Patches)
	return stats, nil
}

func (r *Runner) finish(s Stats) Stats {
	s.Queries = r.engine.Stats().Queries
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func pictType(t byte) byte {
	if t == 0 {
		return '?'
	}
	return t
}
