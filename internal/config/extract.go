package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical extraction defaults file.
const DefaultConfigPath = "config/extract.defaults.json"

// Scan stride modes accepted by scan_stride_mode.
const (
	ScanDense     = "dense"
	ScanHalfBlock = "half-block"
)

// ExtractConfig is the root configuration for descriptor extraction.
// Every field is optional; the Get* accessors supply the defaults used by
// the original extractor, so partial configs are safe.
type ExtractConfig struct {
	// Histogram bin counts
	HogBins *int `json:"hog_bins,omitempty"`
	HofBins *int `json:"hof_bins,omitempty"` // includes the zero-motion bin
	MbhBins *int `json:"mbh_bins,omitempty"`
	AuxBins *int `json:"aux_bins,omitempty"` // spatial/vertical/horizontal variance and dc

	// Temporal and spatial layout
	NtCells          *int     `json:"nt_cells,omitempty"`
	TStride          *int     `json:"t_stride,omitempty"`
	SpatialCells     *int     `json:"spatial_cells,omitempty"`
	MinFlowMagnitude *float64 `json:"min_flow_magnitude,omitempty"`
	RegionBlockSize  *int     `json:"region_block_size,omitempty"`

	// Dense scan
	PatchSizes     [][2]int `json:"patch_sizes,omitempty"` // pixels, [width, height]
	ScanStrideMode *string  `json:"scan_stride_mode,omitempty"`

	// Frame geometry
	Interpolation *bool    `json:"interpolation,omitempty"`
	FlowScale     *float64 `json:"flow_scale,omitempty"`

	// Channel switches
	EnableHOG                *bool `json:"enable_hog,omitempty"`
	EnableHOF                *bool `json:"enable_hof,omitempty"`
	EnableMBH                *bool `json:"enable_mbh,omitempty"`
	EnableSpatialVariance    *bool `json:"enable_spatial_variance,omitempty"`
	EnableDC                 *bool `json:"enable_dc,omitempty"`
	EnableVerticalVariance   *bool `json:"enable_vertical_variance,omitempty"`
	EnableHorizontalVariance *bool `json:"enable_horizontal_variance,omitempty"`

	// GoodPTS restricts processing to the listed presentation indices.
	GoodPTS []int `json:"good_pts,omitempty"`
}

// EmptyExtractConfig returns an ExtractConfig with all fields unset.
func EmptyExtractConfig() *ExtractConfig {
	return &ExtractConfig{}
}

// LoadExtractConfig loads an ExtractConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadExtractConfig(path string) (*ExtractConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExtractConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads DefaultConfigPath, searching the current directory
// and its parents up to the repository root.
func LoadDefaultConfig() (*ExtractConfig, error) {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	var lastErr error
	for _, path := range candidates {
		cfg, err := LoadExtractConfig(path)
		if err == nil {
			return cfg, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("cannot find %s: %w", DefaultConfigPath, lastErr)
}

// Validate checks that the configuration values are valid.
func (c *ExtractConfig) Validate() error {
	positive := []struct {
		name string
		v    *int
	}{
		{"hog_bins", c.HogBins},
		{"mbh_bins", c.MbhBins},
		{"aux_bins", c.AuxBins},
		{"nt_cells", c.NtCells},
		{"t_stride", c.TStride},
		{"spatial_cells", c.SpatialCells},
		{"region_block_size", c.RegionBlockSize},
	}
	for _, p := range positive {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, *p.v)
		}
	}

	// hof reserves its last bin for near-zero motion
	if c.HofBins != nil && *c.HofBins < 2 {
		return fmt.Errorf("hof_bins must be at least 2, got %d", *c.HofBins)
	}

	if c.MinFlowMagnitude != nil && *c.MinFlowMagnitude < 0 {
		return fmt.Errorf("min_flow_magnitude must be non-negative, got %f", *c.MinFlowMagnitude)
	}

	if c.FlowScale != nil && *c.FlowScale <= 0 {
		return fmt.Errorf("flow_scale must be positive, got %f", *c.FlowScale)
	}

	if c.ScanStrideMode != nil {
		switch *c.ScanStrideMode {
		case ScanDense, ScanHalfBlock:
		default:
			return fmt.Errorf("scan_stride_mode must be %q or %q, got %q", ScanDense, ScanHalfBlock, *c.ScanStrideMode)
		}
	}

	for i, size := range c.PatchSizes {
		if size[0] <= 0 || size[1] <= 0 {
			return fmt.Errorf("patch_sizes[%d] must be positive, got %dx%d", i, size[0], size[1])
		}
	}

	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetHogBins returns the hog_bins value or the default.
func (c *ExtractConfig) GetHogBins() int { return intOr(c.HogBins, 8) }

// GetHofBins returns the hof_bins value or the default (8 orientations + 1).
func (c *ExtractConfig) GetHofBins() int { return intOr(c.HofBins, 9) }

// GetMbhBins returns the mbh_bins value or the default.
func (c *ExtractConfig) GetMbhBins() int { return intOr(c.MbhBins, 8) }

// GetAuxBins returns the aux_bins value or the default.
func (c *ExtractConfig) GetAuxBins() int { return intOr(c.AuxBins, 8) }

// GetNtCells returns the nt_cells value or the default.
func (c *ExtractConfig) GetNtCells() int { return intOr(c.NtCells, 3) }

// GetTStride returns the t_stride value or the default.
func (c *ExtractConfig) GetTStride() int { return intOr(c.TStride, 5) }

// GetSpatialCells returns the spatial_cells value or the default.
func (c *ExtractConfig) GetSpatialCells() int { return intOr(c.SpatialCells, 2) }

// GetMinFlowMagnitude returns the min_flow_magnitude value or the default.
func (c *ExtractConfig) GetMinFlowMagnitude() float64 { return floatOr(c.MinFlowMagnitude, 0.4) }

// GetRegionBlockSize returns the region_block_size value or the default.
func (c *ExtractConfig) GetRegionBlockSize() int { return intOr(c.RegionBlockSize, 8) }

// GetPatchSizes returns the patch_sizes value or the default 32x32 and 48x48.
func (c *ExtractConfig) GetPatchSizes() [][2]int {
	if len(c.PatchSizes) == 0 {
		return [][2]int{{32, 32}, {48, 48}}
	}
	out := make([][2]int, len(c.PatchSizes))
	copy(out, c.PatchSizes)
	return out
}

// GetScanStrideMode returns the scan_stride_mode value or the default.
func (c *ExtractConfig) GetScanStrideMode() string {
	if c.ScanStrideMode == nil || *c.ScanStrideMode == "" {
		return ScanHalfBlock
	}
	return *c.ScanStrideMode
}

// GetInterpolation returns the interpolation value or the default.
func (c *ExtractConfig) GetInterpolation() bool { return boolOr(c.Interpolation, false) }

// GetFlowScale returns the flow_scale value or the default.
func (c *ExtractConfig) GetFlowScale() float64 { return floatOr(c.FlowScale, 1.0/8.0) }

// GetEnableHOG returns the enable_hog value or the default.
func (c *ExtractConfig) GetEnableHOG() bool { return boolOr(c.EnableHOG, true) }

// GetEnableHOF returns the enable_hof value or the default.
func (c *ExtractConfig) GetEnableHOF() bool { return boolOr(c.EnableHOF, true) }

// GetEnableMBH returns the enable_mbh value or the default.
func (c *ExtractConfig) GetEnableMBH() bool { return boolOr(c.EnableMBH, true) }

// GetEnableSpatialVariance returns the enable_spatial_variance value or the default.
func (c *ExtractConfig) GetEnableSpatialVariance() bool {
	return boolOr(c.EnableSpatialVariance, false)
}

// GetEnableDC returns the enable_dc value or the default.
func (c *ExtractConfig) GetEnableDC() bool { return boolOr(c.EnableDC, false) }

// GetEnableVerticalVariance returns the enable_vertical_variance value or the default.
func (c *ExtractConfig) GetEnableVerticalVariance() bool {
	return boolOr(c.EnableVerticalVariance, false)
}

// GetEnableHorizontalVariance returns the enable_horizontal_variance value or the default.
func (c *ExtractConfig) GetEnableHorizontalVariance() bool {
	return boolOr(c.EnableHorizontalVariance, false)
}

// SetBool is a helper for CLI overrides of the enable_* switches.
func SetBool(dst **bool, v bool) {
	*dst = &v
}
