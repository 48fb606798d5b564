package l5descriptor

import (
	"fmt"
	"image"
)

// Patch describes one scanned rectangle.
type Patch struct {
	Rect      image.Rectangle // descriptor grid coordinates
	FrameSize image.Point
	StartPTS  int
	EndPTS    int
}

// Sink consumes scanned descriptors. desc is only valid during the call.
type Sink interface {
	WritePatch(p Patch, desc []float32) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(p Patch, desc []float32) error

func (f SinkFunc) WritePatch(p Patch, desc []float32) error { return f(p, desc) }

// ScanDense queries every blockW x blockH rectangle on the stride lattice,
// column by column, and hands each descriptor to sink. A rectangle is scanned
// only when it ends strictly inside the frame. The first sink error stops
// the scan.
func (e *Engine) ScanDense(blockW, blockH, xStride, yStride int, sink Sink) error {
	if blockW <= 0 || blockH <= 0 {
		return fmt.Errorf("scan block must be positive, got %dx%d", blockW, blockH)
	}
	if xStride <= 0 || yStride <= 0 {
		return fmt.Errorf("scan stride must be positive, got %dx%d", xStride, yStride)
	}
	size := e.cfg.FrameSize
	start, end := e.Window()
	n := 0
	for x := 0; x+blockW < size.X; x += xStride {
		for y := 0; y+blockH < size.Y; y += yStride {
			p := Patch{
				Rect:      image.Rect(x, y, x+blockW, y+blockH),
				FrameSize: size,
				StartPTS:  start,
				EndPTS:    end,
			}
			if err := sink.WritePatch(p, e.QueryPatch(p.Rect)); err != nil {
				return fmt.Errorf("write patch %v: %w", p.Rect, err)
			}
			n++
		}
	}
	tracef("scan %dx%d stride %dx%d: %d patches", blockW, blockH, xStride, yStride, n)
	return nil
}
