// Package diagram describes the rendering surface the navigation engine drives.
// The surface owns nodes, their positions and the viewport; the engine only reads
// nodes and requests viewport changes.
package diagram

import (
	"math"
	"time"
)

const (
	MinZoom = 0.1
	MaxZoom = 3.0

	// Used when a node does not report its measured size.
	DefaultNodeWidth  = 150.0
	DefaultNodeHeight = 40.0
)

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type NodeData struct {
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Short    string  `json:"short,omitempty" yaml:"short,omitempty"`
	ParentID *string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Level    *int    `json:"level,omitempty" yaml:"level,omitempty"`
	Depth    *int    `json:"depth,omitempty" yaml:"depth,omitempty"`
	Kind     string  `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// ExplicitLevel returns the level carried by the node metadata, if any.
func (d NodeData) ExplicitLevel() (int, bool) {
	if d.Level != nil {
		return *d.Level, true
	}
	if d.Depth != nil {
		return *d.Depth, true
	}
	return 0, false
}

type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Position Point    `json:"position" yaml:"position"`
	Width    float64  `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64  `json:"height,omitempty" yaml:"height,omitempty"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Size returns the node dimensions, falling back to the defaults for unmeasured nodes.
func (n Node) Size() (float64, float64) {
	w, h := n.Width, n.Height
	if w <= 0 {
		w = DefaultNodeWidth
	}
	if h <= 0 {
		h = DefaultNodeHeight
	}
	return w, h
}

type Viewport struct {
	X    float64 `json:"x" toml:"x" yaml:"x"`
	Y    float64 `json:"y" toml:"y" yaml:"y"`
	Zoom float64 `json:"zoom" toml:"zoom" yaml:"zoom"`
}

// Clamped returns v with its zoom inside [MinZoom, MaxZoom].
func (v Viewport) Clamped() Viewport {
	v.Zoom = ClampZoom(v.Zoom)
	return v
}

// ClampZoom limits zoom to [MinZoom, MaxZoom]. NaN maps to 1.
func ClampZoom(zoom float64) float64 {
	switch {
	case math.IsNaN(zoom):
		return 1
	case zoom < MinZoom:
		return MinZoom
	case zoom > MaxZoom:
		return MaxZoom
	default:
		return zoom
	}
}

type Transition struct {
	Duration time.Duration
}

type FitViewOptions struct {
	Padding  float64
	Nodes    []string
	Duration time.Duration
}

// Surface is the capability exposed by the diagram renderer.
type Surface interface {
	Viewport() Viewport
	SetViewport(v Viewport, t Transition)
	Node(id string) (Node, bool)
	FitView(opts FitViewOptions)
	// Size reports the on-screen size of the surface in pixels.
	Size() (width, height float64)
}

// NodeLister is implemented by surfaces that can enumerate their mounted nodes,
// rendered or not.
type NodeLister interface {
	Nodes() []Node
}
