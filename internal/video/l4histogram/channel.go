package l4histogram

import (
	"fmt"
	"image"

	"github.com/banshee-data/motionfeat/internal/video/l2gradient"
	"github.com/banshee-data/motionfeat/internal/video/l3integral"
)

// Channel is the sliding temporal window of one histogram feature.
type Channel struct {
	cfg     l3integral.Config
	tStride int

	pending []l2gradient.Pair
	cells   []*l3integral.Stack // ring; cells[next] is the oldest
	next    int
	filled  int
}

// NewChannel returns an empty channel that averages tStride frames per
// temporal cell.
func NewChannel(cfg l3integral.Config, tStride int) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("histogram channel: %w", err)
	}
	if tStride <= 0 {
		return nil, fmt.Errorf("histogram channel: t_stride must be positive, got %d", tStride)
	}
	return &Channel{
		cfg:     cfg,
		tStride: tStride,
		pending: make([]l2gradient.Pair, 0, tStride),
		cells:   make([]*l3integral.Stack, cfg.NtCells),
	}, nil
}

// Update queues a gradient pair for the current stride.
func (c *Channel) Update(p l2gradient.Pair) {
	c.pending = append(c.pending, p)
}

// Accumulate builds the pending pairs into one stack averaged over tStride
// and rotates it into the window, replacing the oldest cell. It panics when
// nothing is pending.
func (c *Channel) Accumulate() {
	if len(c.pending) == 0 {
		panic("l4histogram: Accumulate with no pending frames")
	}
	sum := l3integral.Build(c.cfg, c.pending[0].DX, c.pending[0].DY)
	for _, p := range c.pending[1:] {
		sum.Add(l3integral.Build(c.cfg, p.DX, p.DY))
	}
	sum.Scale(1 / float64(c.tStride))

	clear(c.pending)
	c.pending = c.pending[:0]
	c.push(sum)
}

// Advance rotates an empty cell into the window. Used for strides in which
// the channel received no pairs.
func (c *Channel) Advance() {
	c.pending = c.pending[:0]
	c.push(nil)
}

func (c *Channel) push(s *l3integral.Stack) {
	c.cells[c.next] = s
	c.next = (c.next + 1) % len(c.cells)
	c.filled = min(c.filled+1, len(c.cells))
}

// QueryPatch writes the histogram of rect over the window into out, oldest
// temporal cell first. out must have length Config().FullDim(). Querying
// does not change the channel.
func (c *Channel) QueryPatch(rect image.Rectangle, out []float32) {
	dim := c.cfg.Dim()
	if len(out) != dim*len(c.cells) {
		panic(fmt.Sprintf("l4histogram: query buffer has %d values, want %d", len(out), dim*len(c.cells)))
	}
	clear(out)
	for i := range c.cells {
		s := c.cells[(c.next+i)%len(c.cells)]
		l3integral.Extract(s, rect, c.cfg, out[i*dim:(i+1)*dim])
	}
}

// Pending returns the number of pairs queued for the current stride.
func (c *Channel) Pending() int { return len(c.pending) }

// Cells returns the window length, always NtCells.
func (c *Channel) Cells() int { return len(c.cells) }

// Filled returns how many cells hold an accumulated stride, up to NtCells.
func (c *Channel) Filled() int { return c.filled }

// Config returns the channel's histogram configuration.
func (c *Channel) Config() l3integral.Config { return c.cfg }
