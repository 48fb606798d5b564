package l2gradient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSobel_Ramp(t *testing.T) {
	// f(x, y) = 3x + 5y
	src := mat.NewDense(4, 5, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			src.Set(r, c, float64(3*c+5*r))
		}
	}

	dx := Sobel(src, AxisX)
	dy := Sobel(src, AxisY)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			wantX := 6.0
			if c == 0 || c == 4 {
				wantX = 0 // reflect-101 border
			}
			wantY := 10.0
			if r == 0 || r == 3 {
				wantY = 0
			}
			assert.Equal(t, wantX, dx.At(r, c), "dx(%d,%d)", r, c)
			assert.Equal(t, wantY, dy.At(r, c), "dy(%d,%d)", r, c)
		}
	}
}

func TestSobel_SingleColumn(t *testing.T) {
	src := mat.NewDense(3, 1, []float64{1, 2, 4})
	dx := Sobel(src, AxisX)
	dy := Sobel(src, AxisY)
	for r := 0; r < 3; r++ {
		assert.Zero(t, dx.At(r, 0))
	}
	assert.Equal(t, 3.0, dy.At(1, 0))
}

func TestDerive_And_FromMotion(t *testing.T) {
	src := mat.NewDense(3, 3, []float64{
		0, 1, 2,
		0, 1, 2,
		0, 1, 2,
	})
	p := Derive(src)
	assert.Equal(t, 2.0, p.DX.At(1, 1))
	assert.Equal(t, 0.0, p.DY.At(1, 1))

	m := FromMotion(src, p.DX)
	assert.Same(t, src, m.DX)
	assert.Same(t, p.DX, m.DY)
}

func TestReflect101(t *testing.T) {
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 2, reflect101(2, 5))
}
