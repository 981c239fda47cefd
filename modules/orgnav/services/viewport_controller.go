package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

const (
	CenterDuration    = 300 * time.Millisecond
	PanDuration       = 200 * time.Millisecond
	FitDuration       = 300 * time.Millisecond
	DefaultFitPadding = 0.2
)

// ViewportController is the only writer of the surface viewport.
// Every operation is fire-and-forget: the latest call wins, and when no surface
// is attached the call is a logged no-op.
type ViewportController struct {
	log *logrus.Logger

	mu      sync.RWMutex
	surface diagram.Surface
}

func NewViewportController(log *logrus.Logger) *ViewportController {
	return &ViewportController{log: log}
}

// Attach binds the controller to a mounted surface.
func (c *ViewportController) Attach(s diagram.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface = s
}

// Detach drops the surface, e.g. when the diagram is unmounted.
func (c *ViewportController) Detach() {
	c.Attach(nil)
}

func (c *ViewportController) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface != nil
}

func (c *ViewportController) acquire(ctx context.Context, op string) (diagram.Surface, bool) {
	c.mu.RLock()
	s := c.surface
	c.mu.RUnlock()
	if s == nil {
		getMetrics().viewportOps.WithLabelValues(op, "unavailable").Inc()
		logWithFields(ctx, c.log, logrus.WarnLevel, "orgnav.viewport.surface_unavailable", logrus.Fields{"op": op})
		return nil, false
	}
	getMetrics().viewportOps.WithLabelValues(op, "applied").Inc()
	return s, true
}

// Viewport reads the live viewport.
func (c *ViewportController) Viewport() (diagram.Viewport, bool) {
	c.mu.RLock()
	s := c.surface
	c.mu.RUnlock()
	if s == nil {
		return diagram.Viewport{}, false
	}
	return s.Viewport(), true
}

// Node looks a node up on the attached surface.
func (c *ViewportController) Node(id string) (diagram.Node, bool) {
	c.mu.RLock()
	s := c.surface
	c.mu.RUnlock()
	if s == nil {
		return diagram.Node{}, false
	}
	return s.Node(id)
}

// Nodes lists every node mounted on the surface, or nil when the surface
// cannot enumerate them.
func (c *ViewportController) Nodes() []diagram.Node {
	c.mu.RLock()
	s := c.surface
	c.mu.RUnlock()
	lister, ok := s.(diagram.NodeLister)
	if !ok {
		return nil
	}
	return lister.Nodes()
}

// CenteredOn computes the viewport that centers node on a screen of the given size at zoom.
func CenteredOn(node diagram.Node, screenW, screenH, zoom float64) diagram.Viewport {
	w, h := node.Size()
	return diagram.Viewport{
		X:    -node.Position.X*zoom + screenW/2 - w*zoom/2,
		Y:    -node.Position.Y*zoom + screenH/2 - h*zoom/2,
		Zoom: zoom,
	}
}

func (c *ViewportController) CenterOnNode(ctx context.Context, node diagram.Node, d time.Duration) {
	s, ok := c.acquire(ctx, "center")
	if !ok {
		return
	}
	current := s.Viewport().Clamped()
	w, h := s.Size()
	s.SetViewport(CenteredOn(node, w, h, current.Zoom), diagram.Transition{Duration: d})
}

// FitToNodes fits a subset of nodes. A single node is centered instead.
func (c *ViewportController) FitToNodes(ctx context.Context, ids []string, padding float64) {
	switch len(ids) {
	case 0:
		logWithFields(ctx, c.log, logrus.WarnLevel, "orgnav.viewport.fit_empty", nil)
		return
	case 1:
		node, ok := c.Node(ids[0])
		if !ok && c.Available() {
			logWithFields(ctx, c.log, logrus.WarnLevel, "orgnav.viewport.node_missing", logrus.Fields{"node_id": ids[0]})
			return
		}
		c.CenterOnNode(ctx, node, CenterDuration)
		return
	}
	s, ok := c.acquire(ctx, "fit_nodes")
	if !ok {
		return
	}
	s.FitView(diagram.FitViewOptions{
		Padding:  normalizePadding(padding),
		Nodes:    append([]string(nil), ids...),
		Duration: FitDuration,
	})
}

func (c *ViewportController) FitToScreen(ctx context.Context, padding float64) {
	s, ok := c.acquire(ctx, "fit_screen")
	if !ok {
		return
	}
	s.FitView(diagram.FitViewOptions{Padding: normalizePadding(padding), Duration: FitDuration})
}

func (c *ViewportController) PanBy(ctx context.Context, dx, dy float64) {
	s, ok := c.acquire(ctx, "pan_by")
	if !ok {
		return
	}
	v := s.Viewport().Clamped()
	v.X += dx
	v.Y += dy
	s.SetViewport(v, diagram.Transition{Duration: PanDuration})
}

// PanTo sets an absolute viewport. A nil zoom keeps the current one.
func (c *ViewportController) PanTo(ctx context.Context, x, y float64, zoom *float64) {
	s, ok := c.acquire(ctx, "pan_to")
	if !ok {
		return
	}
	z := s.Viewport().Zoom
	if zoom != nil {
		z = *zoom
	}
	s.SetViewport(diagram.Viewport{X: x, Y: y, Zoom: z}.Clamped(), diagram.Transition{Duration: CenterDuration})
}

// ZoomBy scales the zoom around the screen center.
func (c *ViewportController) ZoomBy(ctx context.Context, factor float64) {
	s, ok := c.acquire(ctx, "zoom_by")
	if !ok {
		return
	}
	if factor <= 0 {
		return
	}
	v := s.Viewport().Clamped()
	w, h := s.Size()
	next := diagram.ClampZoom(v.Zoom * factor)
	cx, cy := w/2, h/2
	// keep the diagram point under the screen center fixed
	ratio := next / v.Zoom
	v.X = cx - (cx-v.X)*ratio
	v.Y = cy - (cy-v.Y)*ratio
	v.Zoom = next
	s.SetViewport(v, diagram.Transition{Duration: PanDuration})
}

func normalizePadding(p float64) float64 {
	if p <= 0 {
		return DefaultFitPadding
	}
	return p
}
