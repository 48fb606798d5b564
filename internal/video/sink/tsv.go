// Package sink holds text output sinks for scanned descriptors.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

// TSVColumns is the column header written after the descriptor line.
const TSVColumns = "#x\ty\tpts\tStartPTS\tEndPTS\tXoffset\tYoffset\tPatchWidth\tPatchHeight\tdescr"

// TSVWriter writes one tab-separated line per patch: the patch centre
// normalized by the grid size, the window's mid, first and last PTS, the
// rectangle in pixels, then the descriptor values.
type TSVWriter struct {
	w         *bufio.Writer
	flowScale float64
	line      []byte
	rows      int
}

// NewTSVWriter returns a writer that converts grid coordinates to pixels by
// dividing by flowScale.
func NewTSVWriter(w io.Writer, flowScale float64) *TSVWriter {
	if flowScale <= 0 {
		flowScale = 1
	}
	return &TSVWriter{w: bufio.NewWriter(w), flowScale: flowScale}
}

// DescriptorHeader formats the "#descr" line for a packed layout. The two
// mbh spans are reported together.
func DescriptorHeader(layout []l5descriptor.Span) string {
	var b strings.Builder
	b.WriteString("#descr =")
	for i := 0; i < len(layout); i++ {
		s := layout[i]
		if s.Kind == l5descriptor.KindMBHX && i+1 < len(layout) && layout[i+1].Kind == l5descriptor.KindMBHY {
			fmt.Fprintf(&b, " mbh (%d + %d)", s.Len, layout[i+1].Len)
			i++
			continue
		}
		fmt.Fprintf(&b, " %s (%d)", s.Kind, s.Len)
	}
	return b.String()
}

// WriteHeader writes the descriptor and column header lines.
func (t *TSVWriter) WriteHeader(layout []l5descriptor.Span) error {
	if _, err := fmt.Fprintf(t.w, "%s\n%s\n", DescriptorHeader(layout), TSVColumns); err != nil {
		return fmt.Errorf("write tsv header: %w", err)
	}
	return nil
}

// WritePatch implements l5descriptor.Sink.
func (t *TSVWriter) WritePatch(p l5descriptor.Patch, desc []float32) error {
	r := p.Rect
	cx := r.Min.X + r.Dx()/2
	cy := r.Min.Y + r.Dy()/2

	b := t.line[:0]
	b = strconv.AppendFloat(b, float64(cx)/float64(p.FrameSize.X), 'f', 2, 64)
	b = append(b, '\t')
	b = strconv.AppendFloat(b, float64(cy)/float64(p.FrameSize.Y), 'f', 2, 64)
	for _, v := range []int{
		(p.StartPTS + p.EndPTS) / 2,
		p.StartPTS,
		p.EndPTS,
		int(float64(r.Min.X) / t.flowScale),
		int(float64(r.Min.Y) / t.flowScale),
		int(float64(r.Dx()) / t.flowScale),
		int(float64(r.Dy()) / t.flowScale),
	} {
		b = append(b, '\t')
		b = strconv.AppendInt(b, int64(v), 10)
	}
	for _, v := range desc {
		b = append(b, '\t')
		b = strconv.AppendFloat(b, float64(v), 'g', -1, 32)
	}
	b = append(b, '\n')
	t.line = b

	if _, err := t.w.Write(b); err != nil {
		return fmt.Errorf("write tsv row: %w", err)
	}
	t.rows++
	return nil
}

// Rows returns the number of patch lines written.
func (t *TSVWriter) Rows() int { return t.rows }

// Flush writes buffered output to the underlying writer.
func (t *TSVWriter) Flush() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("flush tsv: %w", err)
	}
	return nil
}
