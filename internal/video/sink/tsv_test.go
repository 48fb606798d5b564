package sink

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

func TestDescriptorHeader(t *testing.T) {
	layout := []l5descriptor.Span{
		{Kind: l5descriptor.KindHOG, Offset: 0, Len: 96},
		{Kind: l5descriptor.KindHOF, Offset: 96, Len: 108},
		{Kind: l5descriptor.KindMBHX, Offset: 204, Len: 96},
		{Kind: l5descriptor.KindMBHY, Offset: 300, Len: 96},
		{Kind: l5descriptor.KindDC, Offset: 396, Len: 96},
	}
	assert.Equal(t, "#descr = hog (96) hof (108) mbh (96 + 96) dc (96)", DescriptorHeader(layout))
}

func TestTSVWriter_Row(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf, 0.125)

	p := l5descriptor.Patch{
		Rect:      image.Rect(4, 2, 8, 6),
		FrameSize: image.Pt(16, 12),
		StartPTS:  1,
		EndPTS:    16,
	}
	require.NoError(t, w.WritePatch(p, []float32{0, 1.5, 300}))
	require.NoError(t, w.Flush())

	want := "0.38\t0.33\t8\t1\t16\t32\t16\t32\t32\t0\t1.5\t300\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, w.Rows())
}

func TestTSVWriter_Header(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf, 1)
	require.NoError(t, w.WriteHeader([]l5descriptor.Span{{Kind: l5descriptor.KindHOF, Len: 24}}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#descr = hof (24)", lines[0])
	assert.Equal(t, TSVColumns, lines[1])
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTSVWriter_FlushError(t *testing.T) {
	w := NewTSVWriter(failWriter{}, 1)
	require.NoError(t, w.WritePatch(l5descriptor.Patch{FrameSize: image.Pt(1, 1)}, nil))
	assert.Error(t, w.Flush())
}
