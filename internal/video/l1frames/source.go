package l1frames

import "io"

// SliceSource replays an in-memory sequence of frames.
type SliceSource struct {
	geom   Geometry
	frames []*Frame
	next   int
}

// NewSliceSource creates a Source over frames with the given geometry.
func NewSliceSource(geom Geometry, frames []*Frame) *SliceSource {
	if geom.FrameCount == 0 {
		geom.FrameCount = len(frames)
	}
	return &SliceSource{geom: geom, frames: frames}
}

// Geometry returns the geometry passed at construction.
func (s *SliceSource) Geometry() Geometry {
	return s.geom
}

// Read returns the next frame, or io.EOF when the slice is exhausted.
func (s *SliceSource) Read() (*Frame, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}
