package l1frames

import (
	"image"
	"io"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// dctBlock is the transform block side used by the synthetic DCT map.
const dctBlock = 8

// SyntheticSource generates frames of a bright square drifting over a shaded
// background, with a matching block motion field and block-DCT magnitudes.
// It stands in for a decoder in demos and tests.
type SyntheticSource struct {
	// Configuration
	Width, Height    int     // raw image size in pixels
	CellSize         int     // pixels per motion vector
	SquareSize       int     // side of the moving square in pixels
	VelocityX        float64 // pixels per frame
	VelocityY        float64
	FrameCount       int
	KeyframeInterval int     // every n-th frame carries no motion vectors; 0 disables
	NoiseStdDev      float64 // motion field noise in pixels
	WithDCT          bool    // populate DCTMap

	next int
	rng  *rand.Rand
	dct  *fourier.DCT
}

// NewSyntheticSource creates a generator with the given raw frame size and
// frame count. The seed makes the motion noise reproducible.
func NewSyntheticSource(width, height, frames int, seed int64) *SyntheticSource {
	return &SyntheticSource{
		Width:            width,
		Height:           height,
		CellSize:         8,
		SquareSize:       min(width, height) / 3,
		VelocityX:        2,
		VelocityY:        1,
		FrameCount:       frames,
		KeyframeInterval: 12,
		NoiseStdDev:      0.1,
		WithDCT:          true,
		rng:              rand.New(rand.NewSource(seed)),
		dct:              fourier.NewDCT(dctBlock),
	}
}

// Geometry reports the raw size and the motion-vector grid size.
func (g *SyntheticSource) Geometry() Geometry {
	return Geometry{
		Original:   image.Pt(g.Width, g.Height),
		Grid:       image.Pt(g.Width/g.CellSize, g.Height/g.CellSize),
		FrameCount: g.FrameCount,
	}
}

// Read generates the next frame, or returns io.EOF after FrameCount frames.
func (g *SyntheticSource) Read() (*Frame, error) {
	if g.next >= g.FrameCount {
		return nil, io.EOF
	}
	pts := g.next
	g.next++

	keyframe := g.KeyframeInterval > 0 && pts%g.KeyframeInterval == 0
	frame := &Frame{
		PTS:             pts,
		PictType:        'P',
		RawImage:        g.rawImage(pts),
		NoMotionVectors: keyframe,
	}
	if keyframe {
		frame.PictType = 'I'
	} else {
		frame.DX, frame.DY = g.motionField(pts)
	}
	if g.WithDCT {
		frame.DCTMap = BlockDCTMagnitudes(frame.RawImage, g.dct)
	}
	return frame, nil
}

// squareOrigin returns the top-left corner of the square at frame pts,
// wrapping around the frame edges.
func (g *SyntheticSource) squareOrigin(pts int) (float64, float64) {
	spanX := float64(max(g.Width-g.SquareSize, 1))
	spanY := float64(max(g.Height-g.SquareSize, 1))
	x := math.Mod(float64(pts)*g.VelocityX, spanX)
	y := math.Mod(float64(pts)*g.VelocityY, spanY)
	return x, y
}

func (g *SyntheticSource) rawImage(pts int) *mat.Dense {
	img := mat.NewDense(g.Height, g.Width, nil)
	sx, sy := g.squareOrigin(pts)
	side := float64(g.SquareSize)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := 64 + 64*float64(x)/float64(g.Width)
			fx, fy := float64(x), float64(y)
			if fx >= sx && fx < sx+side && fy >= sy && fy < sy+side {
				v = 230
			}
			img.Set(y, x, v)
		}
	}
	return img
}

func (g *SyntheticSource) motionField(pts int) (*mat.Dense, *mat.Dense) {
	geom := g.Geometry()
	dx := mat.NewDense(geom.Grid.Y, geom.Grid.X, nil)
	dy := mat.NewDense(geom.Grid.Y, geom.Grid.X, nil)
	sx, sy := g.squareOrigin(pts)
	side := float64(g.SquareSize)
	for r := 0; r < geom.Grid.Y; r++ {
		for c := 0; c < geom.Grid.X; c++ {
			cx := (float64(c) + 0.5) * float64(g.CellSize)
			cy := (float64(r) + 0.5) * float64(g.CellSize)
			vx := g.rng.NormFloat64() * g.NoiseStdDev
			vy := g.rng.NormFloat64() * g.NoiseStdDev
			if cx >= sx && cx < sx+side && cy >= sy && cy < sy+side {
				vx += g.VelocityX
				vy += g.VelocityY
			}
			dx.Set(r, c, vx)
			dy.Set(r, c, vy)
		}
	}
	return dx, dy
}

// BlockDCTMagnitudes computes the separable DCT magnitudes of every full 8x8 block of img and lays
// the coefficients out in place, matching the decoder's dctMap convention
// (coefficient (u,v) of block (bj,bi) at pixel (bj*8+u, bi*8+v)).
// Partial blocks at the right and bottom edges are left at zero.
// A nil dct allocates a transform of the right size.
func BlockDCTMagnitudes(img *mat.Dense, dct *fourier.DCT) *mat.Dense {
	if dct == nil {
		dct = fourier.NewDCT(dctBlock)
	}
	rows, cols := img.Dims()
	out := mat.NewDense(rows, cols, nil)

	var block [dctBlock][dctBlock]float64
	src := make([]float64, dctBlock)
	dst := make([]float64, dctBlock)
	for bj := 0; bj+dctBlock <= rows; bj += dctBlock {
		for bi := 0; bi+dctBlock <= cols; bi += dctBlock {
			// rows first
			for u := 0; u < dctBlock; u++ {
				for v := 0; v < dctBlock; v++ {
					src[v] = img.At(bj+u, bi+v)
				}
				dct.Transform(dst, src)
				copy(block[u][:], dst)
			}
			// then columns
			for v := 0; v < dctBlock; v++ {
				for u := 0; u < dctBlock; u++ {
					src[u] = block[u][v]
				}
				dct.Transform(dst, src)
				for u := 0; u < dctBlock; u++ {
					out.Set(bj+u, bi+v, math.Abs(dst[u]))
				}
			}
		}
	}
	return out
}
