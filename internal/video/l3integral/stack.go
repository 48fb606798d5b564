package l3integral

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Stack holds one integral image per orientation bin. Each plane has
// (Height+1)x(Width+1) entries; entry (y, x) is the sum of votes in rows
// [0, y) and columns [0, x).
type Stack struct {
	Bins   int
	Width  int
	Height int
	planes [][]float64
}

// NewStack returns a zeroed stack for a width x height grid.
func NewStack(bins, width, height int) *Stack {
	s := &Stack{Bins: bins, Width: width, Height: height, planes: make([][]float64, bins)}
	n := (width + 1) * (height + 1)
	for b := range s.planes {
		s.planes[b] = make([]float64, n)
	}
	return s
}

// Bounds is the rectangle covered by the stack.
func (s *Stack) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Add adds o into s elementwise. Both stacks must have the same shape.
func (s *Stack) Add(o *Stack) {
	if o.Bins != s.Bins || o.Width != s.Width || o.Height != s.Height {
		panic("l3integral: stack shape mismatch")
	}
	for b := range s.planes {
		floats.Add(s.planes[b], o.planes[b])
	}
}

// Scale multiplies every entry by f.
func (s *Stack) Scale(f float64) {
	for b := range s.planes {
		floats.Scale(f, s.planes[b])
	}
}

// Sum returns the total vote of bin inside r. r must lie within Bounds.
func (s *Stack) Sum(bin int, r image.Rectangle) float64 {
	p := s.planes[bin]
	w := s.Width + 1
	return p[r.Max.Y*w+r.Max.X] - p[r.Min.Y*w+r.Max.X] - p[r.Max.Y*w+r.Min.X] + p[r.Min.Y*w+r.Min.X]
}

// Build bins the gradient field (dx, dy) by orientation and returns the
// integral images of the votes. dx and dy must have the same shape.
func Build(cfg Config, dx, dy *mat.Dense) *Stack {
	rows, cols := dx.Dims()
	s := NewStack(cfg.Bins, cols, rows)
	n := cfg.orientations()
	binWidth := 2 * math.Pi / float64(n)
	w := cols + 1

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			gx, gy := dx.At(y, x), dy.At(y, x)
			m := math.Hypot(gx, gy)
			idx := (y+1)*w + x + 1
			if cfg.Signed && m <= cfg.MinMagnitude {
				s.planes[cfg.Bins-1][idx] += 1
				continue
			}
			theta := math.Atan2(gy, gx)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			f := theta / binWidth
			lo := math.Floor(f)
			frac := f - lo
			b0 := int(lo) % n
			b1 := (b0 + 1) % n
			s.planes[b0][idx] += m * (1 - frac)
			s.planes[b1][idx] += m * frac
		}
	}

	for _, p := range s.planes {
		integrate(p, cols, rows)
	}
	return s
}

// integrate turns a vote plane, stored offset by one row and column, into
// its integral image in place.
func integrate(p []float64, cols, rows int) {
	w := cols + 1
	for y := 1; y <= rows; y++ {
		row := p[y*w : (y+1)*w]
		for x := 1; x <= cols; x++ {
			row[x] += row[x-1]
		}
		floats.Add(row, p[(y-1)*w:y*w])
	}
}

// Extract adds the spatial cell histograms of rect into out, laid out as
// out[(iy*XCells+ix)*Bins+b]. rect is clamped to the stack and split into
// XCells x YCells cells. A nil stack contributes nothing. out must hold at
// least cfg.Dim() values.
func Extract(s *Stack, rect image.Rectangle, cfg Config, out []float32) {
	if s == nil {
		return
	}
	r := rect.Intersect(s.Bounds())
	if r.Empty() {
		return
	}
	out = out[:cfg.Dim()]
	rw, rh := r.Dx(), r.Dy()
	for iy := 0; iy < cfg.YCells; iy++ {
		y0 := r.Min.Y + iy*rh/cfg.YCells
		y1 := r.Min.Y + (iy+1)*rh/cfg.YCells
		for ix := 0; ix < cfg.XCells; ix++ {
			x0 := r.Min.X + ix*rw/cfg.XCells
			x1 := r.Min.X + (ix+1)*rw/cfg.XCells
			cell := image.Rect(x0, y0, x1, y1)
			base := (iy*cfg.XCells + ix) * cfg.Bins
			for b := 0; b < cfg.Bins && b < s.Bins; b++ {
				out[base+b] += float32(s.Sum(b, cell))
			}
		}
	}
}
