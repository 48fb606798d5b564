// Package l2regions derives per-block auxiliary feature grids from the
// frequency-domain magnitudes of a frame.
package l2regions

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/motionfeat/internal/video/l1frames"
)

// DefaultBlockSize is the side of the transform blocks in the DCT map.
const DefaultBlockSize = 8

// maxSeed is the starting value of the running maxima. Magnitudes are
// non-negative, so it only survives for degenerate block sizes.
const maxSeed float32 = -1000.0

// Extract fills frame.Regions from frame.DCTMap using blocks of side g.
// It is a no-op, leaving Regions nil, when the frame has no DCT map or the raw
// frame holds no full g x g block. Remainder strips are dropped.
// It reports whether region maps were produced.
func Extract(frame *l1frames.Frame, g int) bool {
	if frame == nil || frame.DCTMap == nil || frame.RawImage == nil || g <= 0 {
		return false
	}
	maps, ok := Compute(frame.DCTMap, l1frames.Size(frame.RawImage).Y, l1frames.Size(frame.RawImage).X, g)
	if !ok {
		return false
	}
	frame.Regions = maps
	return true
}

// Compute derives the four auxiliary grids of a DCT map whose frame is
// rows x cols pixels. Each output cell covers one g x g block:
//
//   - spatial variance: max over the block excluding row 0 and column 0
//   - dc: the block's (0,0) coefficient
//   - vertical variance: max over column 0 excluding row 0
//   - horizontal variance: max over row 0 excluding column 0
//
// Values are computed and stored at float32 precision.
func Compute(dct *mat.Dense, rows, cols, g int) (*l1frames.RegionMaps, bool) {
	dr, dc := dct.Dims()
	rows, cols = min(rows, dr), min(cols, dc)
	blkRows, blkCols := rows/g, cols/g
	if blkRows == 0 || blkCols == 0 {
		return nil, false
	}

	maps := &l1frames.RegionMaps{
		SpatialVariance:    mat.NewDense(blkRows, blkCols, nil),
		DC:                 mat.NewDense(blkRows, blkCols, nil),
		VerticalVariance:   mat.NewDense(blkRows, blkCols, nil),
		HorizontalVariance: mat.NewDense(blkRows, blkCols, nil),
	}

	at := func(r, c int) float32 { return float32(dct.At(r, c)) }
	for bj := 0; bj < blkRows; bj++ {
		for bi := 0; bi < blkCols; bi++ {
			r0, c0 := bj*g, bi*g

			spatial := maxSeed
			for j := 1; j < g; j++ {
				for i := 1; i < g; i++ {
					spatial = max(spatial, at(r0+j, c0+i))
				}
			}

			vertical := maxSeed
			for j := 1; j < g; j++ {
				vertical = max(vertical, at(r0+j, c0))
			}

			horizontal := maxSeed
			for i := 1; i < g; i++ {
				horizontal = max(horizontal, at(r0, c0+i))
			}

			maps.SpatialVariance.Set(bj, bi, float64(spatial))
			maps.DC.Set(bj, bi, float64(at(r0, c0)))
			maps.VerticalVariance.Set(bj, bi, float64(vertical))
			maps.HorizontalVariance.Set(bj, bi, float64(horizontal))
		}
	}
	return maps, true
}
