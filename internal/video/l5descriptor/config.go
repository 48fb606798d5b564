package l5descriptor

import (
	"errors"
	"fmt"
	"image"

	"github.com/banshee-data/motionfeat/internal/video/l3integral"
)

// Config is the engine configuration. MBH configures both the x and y
// motion boundary channels.
type Config struct {
	HOG                l3integral.Config
	HOF                l3integral.Config
	MBH                l3integral.Config
	SpatialVariance    l3integral.Config
	DC                 l3integral.Config
	VerticalVariance   l3integral.Config
	HorizontalVariance l3integral.Config

	NtCells   int
	TStride   int
	FrameSize image.Point // descriptor grid, columns x rows
}

// DefaultConfig returns the configuration of the original extractor for a
// frame grid of the given size: hog, hof and mbh enabled with 2x2 spatial
// cells, 3 temporal cells of 5 frames, auxiliary channels disabled.
func DefaultConfig(frameSize image.Point) Config {
	const ntCells = 3
	return Config{
		HOG:                l3integral.NewConfig(8, false, ntCells, true),
		HOF:                l3integral.NewConfig(9, true, ntCells, true),
		MBH:                l3integral.NewConfig(8, false, ntCells, true),
		SpatialVariance:    l3integral.NewConfig(8, false, ntCells, false),
		DC:                 l3integral.NewConfig(8, false, ntCells, false),
		VerticalVariance:   l3integral.NewConfig(8, false, ntCells, false),
		HorizontalVariance: l3integral.NewConfig(8, false, ntCells, false),
		NtCells:            ntCells,
		TStride:            5,
		FrameSize:          frameSize,
	}
}

// For returns the histogram configuration used by channel k.
func (c Config) For(k Kind) l3integral.Config {
	switch k {
	case KindHOG:
		return c.HOG
	case KindHOF:
		return c.HOF
	case KindMBHX, KindMBHY:
		return c.MBH
	case KindSpatialVariance:
		return c.SpatialVariance
	case KindDC:
		return c.DC
	case KindVerticalVariance:
		return c.VerticalVariance
	case KindHorizontalVariance:
		return c.HorizontalVariance
	}
	return l3integral.Config{}
}

// Enabled returns the enabled channel kinds in packed order.
func (c Config) Enabled() []Kind {
	var kinds []Kind
	for _, k := range Kinds {
		if c.For(k).Enabled {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Validate checks the engine configuration.
func (c Config) Validate() error {
	if c.NtCells <= 0 {
		return fmt.Errorf("nt_cells must be positive, got %d", c.NtCells)
	}
	if c.TStride <= 0 {
		return fmt.Errorf("t_stride must be positive, got %d", c.TStride)
	}
	if c.FrameSize.X <= 0 || c.FrameSize.Y <= 0 {
		return fmt.Errorf("frame size must be positive, got %v", c.FrameSize)
	}
	kinds := c.Enabled()
	if len(kinds) == 0 {
		return errors.New("no descriptor channel enabled")
	}
	for _, k := range kinds {
		hc := c.For(k)
		if err := hc.Validate(); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if hc.NtCells != c.NtCells {
			return fmt.Errorf("%s: nt_cells %d does not match engine nt_cells %d", k, hc.NtCells, c.NtCells)
		}
	}
	return nil
}
