package l2regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/motionfeat/internal/video/l1frames"
)

func TestCompute_ZeroGrid(t *testing.T) {
	dct := mat.NewDense(16, 24, nil)
	maps, ok := Compute(dct, 16, 24, 8)
	require.True(t, ok)

	for name, m := range map[string]*mat.Dense{
		"spatial":    maps.SpatialVariance,
		"dc":         maps.DC,
		"vertical":   maps.VerticalVariance,
		"horizontal": maps.HorizontalVariance,
	} {
		r, c := m.Dims()
		assert.Equal(t, 2, r, name)
		assert.Equal(t, 3, c, name)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				assert.Zero(t, m.At(i, j), "%s (%d,%d)", name, i, j)
			}
		}
	}
}

func TestCompute_BlockStatistics(t *testing.T) {
	const g = 4
	dct := mat.NewDense(g, 2*g, nil)
	// block 0
	dct.Set(0, 0, 10) // dc
	dct.Set(0, 2, 7)  // row 0 -> horizontal
	dct.Set(3, 0, 5)  // column 0 -> vertical
	dct.Set(2, 3, 9)  // interior -> spatial
	dct.Set(1, 1, 4)
	// block 1 only has interior energy
	dct.Set(1, g+1, 3)

	maps, ok := Compute(dct, g, 2*g, g)
	require.True(t, ok)

	assert.Equal(t, 10.0, maps.DC.At(0, 0))
	assert.Equal(t, 7.0, maps.HorizontalVariance.At(0, 0))
	assert.Equal(t, 5.0, maps.VerticalVariance.At(0, 0))
	assert.Equal(t, 9.0, maps.SpatialVariance.At(0, 0))

	assert.Equal(t, 0.0, maps.DC.At(0, 1))
	assert.Equal(t, 0.0, maps.HorizontalVariance.At(0, 1))
	assert.Equal(t, 0.0, maps.VerticalVariance.At(0, 1))
	assert.Equal(t, 3.0, maps.SpatialVariance.At(0, 1))
}

func TestCompute_DropsRemainder(t *testing.T) {
	dct := mat.NewDense(20, 27, nil)
	dct.Set(19, 26, 100) // inside the dropped strip
	maps, ok := Compute(dct, 20, 27, 8)
	require.True(t, ok)

	r, c := maps.DC.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.0, maps.SpatialVariance.At(1, 2))
}

func TestCompute_Float32Precision(t *testing.T) {
	dct := mat.NewDense(2, 2, []float64{0.1, 0, 0, 0})
	maps, ok := Compute(dct, 2, 2, 2)
	require.True(t, ok)
	assert.Equal(t, float64(float32(0.1)), maps.DC.At(0, 0))
}

func TestExtract(t *testing.T) {
	t.Run("no dct map is a no-op", func(t *testing.T) {
		f := &l1frames.Frame{RawImage: mat.NewDense(16, 16, nil)}
		assert.False(t, Extract(f, DefaultBlockSize))
		assert.Nil(t, f.Regions)
	})

	t.Run("frame smaller than a block", func(t *testing.T) {
		f := &l1frames.Frame{RawImage: mat.NewDense(4, 4, nil), DCTMap: mat.NewDense(4, 4, nil)}
		assert.False(t, Extract(f, DefaultBlockSize))
		assert.Nil(t, f.Regions)
	})

	t.Run("fills region maps", func(t *testing.T) {
		f := &l1frames.Frame{RawImage: mat.NewDense(16, 32, nil), DCTMap: mat.NewDense(16, 32, nil)}
		require.True(t, Extract(f, DefaultBlockSize))
		require.NotNil(t, f.Regions)
		r, c := f.Regions.DC.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 4, c)
	})
}
