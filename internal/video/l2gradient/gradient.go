// Package l2gradient computes the directional derivative fields that feed the
// histogram channels.
package l2gradient

import "gonum.org/v1/gonum/mat"

// Axis selects the derivative direction.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Pair is a horizontal/vertical derivative pair of equal shape.
type Pair struct {
	DX *mat.Dense
	DY *mat.Dense
}

// FromMotion wraps an existing motion field as a gradient pair.
func FromMotion(dx, dy *mat.Dense) Pair {
	return Pair{DX: dx, DY: dy}
}

// Derive returns the x and y derivatives of src.
func Derive(src *mat.Dense) Pair {
	return Pair{DX: Sobel(src, AxisX), DY: Sobel(src, AxisY)}
}

// Sobel applies the aperture-1 first derivative kernel [-1 0 1] along axis,
// with reflect-101 borders (index -1 maps to 1, n maps to n-2). An axis of
// length 1 has zero derivative.
func Sobel(src *mat.Dense, axis Axis) *mat.Dense {
	rows, cols := src.Dims()
	dst := mat.NewDense(rows, cols, nil)
	n := cols
	if axis == AxisY {
		n = rows
	}
	if n < 2 {
		return dst
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var v float64
			if axis == AxisX {
				v = src.At(r, reflect101(c+1, cols)) - src.At(r, reflect101(c-1, cols))
			} else {
				v = src.At(reflect101(r+1, rows), c) - src.At(reflect101(r-1, rows), c)
			}
			dst.Set(r, c, v)
		}
	}
	return dst
}

func reflect101(i, n int) int {
	switch {
	case i < 0:
		return -i
	case i >= n:
		return 2*n - 2 - i
	}
	return i
}
