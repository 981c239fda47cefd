// Package canvas provides an in-memory diagram surface. It renders nodes after a
// configurable delay and, when virtualization is on, only exposes nodes that
// intersect the current viewport.
package canvas

import (
	"math"
	"sync"
	"time"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

type Options struct {
	Width  float64
	Height float64
	// RenderDelay is how long after mounting nodes become visible to lookups.
	RenderDelay time.Duration
	Virtualize  bool
	Now         func() time.Time
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 800}
}

// Change is one recorded viewport write.
type Change struct {
	Viewport diagram.Viewport
	Duration time.Duration
	// Fit is set when the change came from FitView.
	Fit *diagram.FitViewOptions
}

type Canvas struct {
	opts Options

	mu        sync.RWMutex
	nodes     map[string]diagram.Node
	order     []string
	mountedAt time.Time
	viewport  diagram.Viewport
	history   []Change
}

var _ diagram.Surface = (*Canvas)(nil)

func New(nodes []diagram.Node, opts Options) *Canvas {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Canvas{opts: opts, viewport: diagram.Viewport{Zoom: 1}}
	c.Mount(nodes)
	return c
}

// Mount replaces the node set and restarts the render clock.
func (c *Canvas) Mount(nodes []diagram.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = make(map[string]diagram.Node, len(nodes))
	c.order = c.order[:0]
	for _, n := range nodes {
		if _, dup := c.nodes[n.ID]; !dup {
			c.order = append(c.order, n.ID)
		}
		c.nodes[n.ID] = n
	}
	c.mountedAt = c.opts.Now()
}

// Nodes returns every mounted node in mount order, rendered or not.
func (c *Canvas) Nodes() []diagram.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]diagram.Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

func (c *Canvas) Viewport() diagram.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport
}

func (c *Canvas) SetViewport(v diagram.Viewport, t diagram.Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = v.Clamped()
	c.history = append(c.history, Change{Viewport: c.viewport, Duration: t.Duration})
}

func (c *Canvas) Size() (float64, float64) {
	return c.opts.Width, c.opts.Height
}

// Node returns a rendered node. Nodes are hidden until the render delay has
// passed and, with virtualization, while they lie outside the viewport.
func (c *Canvas) Node(id string) (diagram.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	if !ok {
		return diagram.Node{}, false
	}
	if c.opts.Now().Sub(c.mountedAt) < c.opts.RenderDelay {
		return diagram.Node{}, false
	}
	if c.opts.Virtualize && !c.inView(n) {
		return diagram.Node{}, false
	}
	return n, true
}

func (c *Canvas) inView(n diagram.Node) bool {
	w, h := n.Size()
	z := c.viewport.Zoom
	left := n.Position.X*z + c.viewport.X
	top := n.Position.Y*z + c.viewport.Y
	return left+w*z > 0 && left < c.opts.Width && top+h*z > 0 && top < c.opts.Height
}

// FitView frames the bounding box of the requested nodes, or of all nodes when none are named.
func (c *Canvas) FitView(opts diagram.FitViewOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := opts.Nodes
	if len(ids) == 0 {
		ids = c.order
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for _, id := range ids {
		n, ok := c.nodes[id]
		if !ok {
			continue
		}
		found = true
		w, h := n.Size()
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	if !found {
		return
	}

	bw, bh := maxX-minX, maxY-minY
	scale := 1 + 2*opts.Padding
	zoom := diagram.ClampZoom(math.Min(c.opts.Width/(bw*scale), c.opts.Height/(bh*scale)))
	v := diagram.Viewport{
		X:    c.opts.Width/2 - (minX+bw/2)*zoom,
		Y:    c.opts.Height/2 - (minY+bh/2)*zoom,
		Zoom: zoom,
	}
	c.viewport = v
	fit := opts
	fit.Nodes = append([]string(nil), opts.Nodes...)
	c.history = append(c.history, Change{Viewport: v, Duration: opts.Duration, Fit: &fit})
}

// History returns the recorded viewport writes, oldest first.
func (c *Canvas) History() []Change {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Change(nil), c.history...)
}

func (c *Canvas) Fits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, ch := range c.history {
		if ch.Fit != nil {
			n++
		}
	}
	return n
}
