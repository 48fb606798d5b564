package l3integral

import "fmt"

// DefaultMinMagnitude is the flow magnitude at or below which a signed
// histogram votes into its zero-motion bin.
const DefaultMinMagnitude = 0.4

// Config describes one histogram feature type.
//
// Unsigned histograms spread Bins orientations over the full circle. Signed
// histograms reserve the last bin for vectors no longer than MinMagnitude and
// spread the remaining Bins-1 over the full circle.
type Config struct {
	Bins         int
	Signed       bool
	NtCells      int // temporal cells
	Enabled      bool
	XCells       int // spatial cells per patch, horizontally
	YCells       int // spatial cells per patch, vertically
	MinMagnitude float64
}

// NewConfig returns a Config with the 2x2 spatial grid used by the extractor.
func NewConfig(bins int, signed bool, ntCells int, enabled bool) Config {
	return Config{
		Bins:         bins,
		Signed:       signed,
		NtCells:      ntCells,
		Enabled:      enabled,
		XCells:       2,
		YCells:       2,
		MinMagnitude: DefaultMinMagnitude,
	}
}

// WithCells returns a copy of c with an x by y spatial grid.
func (c Config) WithCells(x, y int) Config {
	c.XCells = x
	c.YCells = y
	return c
}

// Dim is the length of one temporal cell's histogram.
func (c Config) Dim() int {
	return c.Bins * c.XCells * c.YCells
}

// FullDim is the descriptor length of the feature over all temporal cells.
func (c Config) FullDim() int {
	return c.Dim() * c.NtCells
}

// orientations is the number of bins that span the circle.
func (c Config) orientations() int {
	if c.Signed {
		return c.Bins - 1
	}
	return c.Bins
}

// Validate checks that the configuration can build and extract histograms.
func (c Config) Validate() error {
	if c.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	if c.Signed && c.Bins < 2 {
		return fmt.Errorf("signed histogram needs at least 2 bins, got %d", c.Bins)
	}
	if c.NtCells <= 0 {
		return fmt.Errorf("nt_cells must be positive, got %d", c.NtCells)
	}
	if c.XCells <= 0 || c.YCells <= 0 {
		return fmt.Errorf("spatial cells must be positive, got %dx%d", c.XCells, c.YCells)
	}
	if c.MinMagnitude < 0 {
		return fmt.Errorf("min magnitude must be non-negative, got %f", c.MinMagnitude)
	}
	return nil
}
