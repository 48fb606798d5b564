package pipeline

import (
	"fmt"
	"image"

	"github.com/banshee-data/motionfeat/internal/config"
	"github.com/banshee-data/motionfeat/internal/video/l3integral"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

// Config drives a Runner. Engine.FrameSize is filled from the source
// geometry by NewRunner.
type Config struct {
	Engine          l5descriptor.Config
	PatchSizes      []image.Point // pixels
	ScanStrideMode  string
	Interpolation   bool
	FlowScale       float64
	RegionBlockSize int
	GoodPTS         []int
}

// ConfigFromExtract builds a runner configuration from a loaded ExtractConfig.
func ConfigFromExtract(c *config.ExtractConfig) Config {
	nt := c.GetNtCells()
	cells := c.GetSpatialCells()
	hist := func(bins int, signed, enabled bool) l3integral.Config {
		hc := l3integral.NewConfig(bins, signed, nt, enabled).WithCells(cells, cells)
		hc.MinMagnitude = c.GetMinFlowMagnitude()
		return hc
	}

	var patches []image.Point
	for _, p := range c.GetPatchSizes() {
		patches = append(patches, image.Pt(p[0], p[1]))
	}

	return Config{
		Engine: l5descriptor.Config{
			HOG:                hist(c.GetHogBins(), false, c.GetEnableHOG()),
			HOF:                hist(c.GetHofBins(), true, c.GetEnableHOF()),
			MBH:                hist(c.GetMbhBins(), false, c.GetEnableMBH()),
			SpatialVariance:    hist(c.GetAuxBins(), false, c.GetEnableSpatialVariance()),
			DC:                 hist(c.GetAuxBins(), false, c.GetEnableDC()),
			VerticalVariance:   hist(c.GetAuxBins(), false, c.GetEnableVerticalVariance()),
			HorizontalVariance: hist(c.GetAuxBins(), false, c.GetEnableHorizontalVariance()),
			NtCells:            nt,
			TStride:            c.GetTStride(),
		},
		PatchSizes:      patches,
		ScanStrideMode:  c.GetScanStrideMode(),
		Interpolation:   c.GetInterpolation(),
		FlowScale:       c.GetFlowScale(),
		RegionBlockSize: c.GetRegionBlockSize(),
		GoodPTS:         append([]int(nil), c.GoodPTS...),
	}
}

// Validate checks the runner settings. The engine configuration is
// validated by the engine itself.
func (c Config) Validate() error {
	if len(c.PatchSizes) == 0 {
		return fmt.Errorf("at least one patch size is required")
	}
	for i, p := range c.PatchSizes {
		if p.X <= 0 || p.Y <= 0 {
			return fmt.Errorf("patch size %d must be positive, got %v", i, p)
		}
	}
	switch c.ScanStrideMode {
	case config.ScanDense, config.ScanHalfBlock:
	default:
		return fmt.Errorf("unknown scan stride mode %q", c.ScanStrideMode)
	}
	if c.FlowScale <= 0 {
		return fmt.Errorf("flow scale must be positive, got %f", c.FlowScale)
	}
	if c.RegionBlockSize <= 0 {
		return fmt.Errorf("region block size must be positive, got %d", c.RegionBlockSize)
	}
	return nil
}
