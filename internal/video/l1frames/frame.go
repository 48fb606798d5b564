package l1frames

import (
	"image"

	"gonum.org/v1/gonum/mat"
)

// EndPTS is the presentation index that terminates a recorded frame log.
const EndPTS = -1

// Frame is one decoded video frame as delivered by a Source.
//
// RawImage is the luma plane in pixels. DX and DY hold the motion field on the
// motion-vector grid, DCTMap the per-pixel frequency-domain magnitudes laid
// out in 8x8 blocks. Any of them may be nil when the decoder had nothing to
// offer for this frame.
type Frame struct {
	PTS             int
	PictType        byte // 'I', 'P', 'B' or 0 when unknown
	RawImage        *mat.Dense
	DX              *mat.Dense
	DY              *mat.Dense
	DCTMap          *mat.Dense
	NoMotionVectors bool

	// Regions is filled by the region feature extractor when DCTMap is present.
	Regions *RegionMaps
}

// RegionMaps holds the four per-block auxiliary grids derived from DCTMap.
type RegionMaps struct {
	SpatialVariance    *mat.Dense
	DC                 *mat.Dense
	VerticalVariance   *mat.Dense
	HorizontalVariance *mat.Dense
}

// Malformed reports whether the frame must be skipped by the descriptor
// pipeline: no raw image, or the decoder flagged it as carrying no motion.
func (f *Frame) Malformed() bool {
	return f == nil || f.RawImage == nil || f.NoMotionVectors
}

// Geometry describes the frame sizes produced by a Source.
type Geometry struct {
	Original   image.Point // raw image size in pixels
	Grid       image.Point // motion-vector grid size
	FrameCount int         // total frames when known, 0 otherwise
}

// Source yields decoded frames in presentation order. Read returns io.EOF after
// the last frame.
type Source interface {
	Geometry() Geometry
	Read() (*Frame, error)
}

// Size returns the dimensions of m as an image.Point (columns, rows).
// A nil matrix has zero size.
func Size(m *mat.Dense) image.Point {
	if m == nil {
		return image.Point{}
	}
	r, c := m.Dims()
	return image.Pt(c, r)
}
