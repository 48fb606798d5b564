package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motionfeat/internal/video/l1frames"
)

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mvlog")
	src := l1frames.NewSyntheticSource(32, 24, 7, 1)

	n, err := generate(path, src)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	rd, err := l1frames.OpenFile(path)
	require.NoError(t, err)
	defer rd.Close()
	assert.Equal(t, src.Geometry().Grid, rd.Geometry().Grid)

	count := 0
	for {
		_, err := rd.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 7, count)
}
