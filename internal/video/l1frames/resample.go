package l1frames

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// InterpolatedSize returns the descriptor grid size for a motion-vector grid.
// With interpolation each axis gains a sample between every pair of vectors.
func InterpolatedSize(grid image.Point, interpolate bool) image.Point {
	if !interpolate {
		return grid
	}
	return image.Pt(2*grid.X-1, 2*grid.Y-1)
}

// Interpolate brings the frame onto the descriptor grid: the motion field is
// resampled to size and multiplied by flowScale (pixels to grid cells), and the
// raw image is resampled to the same size so appearance and motion channels
// share coordinates. DCTMap and Regions are left untouched.
func Interpolate(f *Frame, size image.Point, flowScale float64) {
	if f.DX != nil {
		f.DX = Resize(f.DX, size)
		f.DX.Scale(flowScale, f.DX)
	}
	if f.DY != nil {
		f.DY = Resize(f.DY, size)
		f.DY.Scale(flowScale, f.DY)
	}
	if f.RawImage != nil && Size(f.RawImage) != size {
		f.RawImage = Resize(f.RawImage, size)
	}
}

// Resize resamples src to size (columns, rows) with bilinear interpolation.
// Corner samples map onto corner samples, so a (2w-1)x(2h-1) target places
// the original samples on even indices and midpoints on odd ones.
// When src already has the requested size a copy is returned.
func Resize(src *mat.Dense, size image.Point) *mat.Dense {
	rows, cols := src.Dims()
	dst := mat.NewDense(size.Y, size.X, nil)
	if rows == size.Y && cols == size.X {
		dst.Copy(src)
		return dst
	}

	sy := axisScale(rows, size.Y)
	sx := axisScale(cols, size.X)
	for y := 0; y < size.Y; y++ {
		fy := float64(y) * sy
		y0 := int(math.Floor(fy))
		y1 := min(y0+1, rows-1)
		wy := fy - float64(y0)
		for x := 0; x < size.X; x++ {
			fx := float64(x) * sx
			x0 := int(math.Floor(fx))
			x1 := min(x0+1, cols-1)
			wx := fx - float64(x0)

			top := src.At(y0, x0)*(1-wx) + src.At(y0, x1)*wx
			bottom := src.At(y1, x0)*(1-wx) + src.At(y1, x1)*wx
			dst.Set(y, x, top*(1-wy)+bottom*wy)
		}
	}
	return dst
}

func axisScale(from, to int) float64 {
	if to <= 1 || from <= 1 {
		return 0
	}
	return float64(from-1) / float64(to-1)
}
