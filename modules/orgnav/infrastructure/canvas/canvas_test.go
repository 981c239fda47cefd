package canvas

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func node(id string, x, y float64) diagram.Node {
	return diagram.Node{ID: id, Position: diagram.Point{X: x, Y: y}}
}

func TestCanvas_NodeHiddenUntilRendered(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New([]diagram.Node{node("unit-1", 0, 0)}, Options{RenderDelay: 250 * time.Millisecond, Now: clock.Now})

	_, ok := c.Node("unit-1")
	require.False(t, ok)

	clock.Advance(250 * time.Millisecond)
	n, ok := c.Node("unit-1")
	require.True(t, ok)
	require.Equal(t, "unit-1", n.ID)

	_, ok = c.Node("unit-2")
	require.False(t, ok)
}

func TestCanvas_VirtualizationHidesOffscreenNodes(t *testing.T) {
	c := New([]diagram.Node{
		node("near", 10, 10),
		node("far", 5000, 5000),
	}, Options{Width: 800, Height: 600, Virtualize: true})

	_, ok := c.Node("near")
	require.True(t, ok)
	_, ok = c.Node("far")
	require.False(t, ok)

	c.FitView(diagram.FitViewOptions{Padding: 0.2})
	_, ok = c.Node("far")
	require.True(t, ok)
	require.Equal(t, 1, c.Fits())
}

func TestCanvas_SetViewportClampsAndRecords(t *testing.T) {
	c := New(nil, Options{})
	c.SetViewport(diagram.Viewport{X: 1, Y: 2, Zoom: 12}, diagram.Transition{Duration: time.Second})

	require.Equal(t, diagram.Viewport{X: 1, Y: 2, Zoom: diagram.MaxZoom}, c.Viewport())
	history := c.History()
	require.Len(t, history, 1)
	require.Equal(t, time.Second, history[0].Duration)
	require.Nil(t, history[0].Fit)
}

func TestCanvas_FitViewCentersBoundingBox(t *testing.T) {
	c := New([]diagram.Node{
		{ID: "a", Position: diagram.Point{X: 0, Y: 0}, Width: 100, Height: 100},
		{ID: "b", Position: diagram.Point{X: 300, Y: 100}, Width: 100, Height: 100},
		{ID: "c", Position: diagram.Point{X: 9000, Y: 9000}, Width: 100, Height: 100},
	}, Options{Width: 800, Height: 400})

	c.FitView(diagram.FitViewOptions{Nodes: []string{"a", "b"}})

	// bounding box 400x200 fits the 800x400 screen at zoom 2
	v := c.Viewport()
	require.InDelta(t, 2.0, v.Zoom, 1e-9)
	require.InDelta(t, 0.0, v.X, 1e-9)
	require.InDelta(t, 0.0, v.Y, 1e-9)

	h := c.History()
	require.Len(t, h, 1)
	require.Equal(t, []string{"a", "b"}, h[0].Fit.Nodes)
}

func TestCanvas_FitViewIgnoresUnknownNodes(t *testing.T) {
	c := New([]diagram.Node{node("a", 0, 0)}, Options{})
	c.FitView(diagram.FitViewOptions{Nodes: []string{"missing"}})
	require.Empty(t, c.History())
	require.Equal(t, 1.0, c.Viewport().Zoom)
}

func TestLayout(t *testing.T) {
	one, two := 1, 2
	d := entities.NewDataset([]entities.Unit{
		{ID: 1, Name: "Dirección", Kind: entities.UnitKindDirection},
		{ID: 2, Name: "Finanzas", ParentID: &one, Kind: entities.UnitKindDepartment},
		{ID: 3, Name: "Tesorería", ParentID: &two, Kind: entities.UnitKindArea},
		{ID: 4, Name: "Legal", ParentID: &one, Kind: entities.UnitKindDepartment},
	}, nil, nil, nil)

	nodes := Layout(d, LayoutOptions{})
	require.Len(t, nodes, 4)
	require.Nil(t, nodes[0].Data.ParentID)
	require.Equal(t, "unit-1", *nodes[1].Data.ParentID)
	require.Nil(t, nodes[2].Data.Level)
	require.Equal(t, diagram.Point{X: 0, Y: 2 * RowGap}, nodes[2].Position)
	require.Equal(t, diagram.Point{X: ColumnGap, Y: RowGap}, nodes[3].Position)
	require.Equal(t, "department", nodes[1].Data.Kind)

	scoped := Layout(d, LayoutOptions{Scope: entities.NewFilterSet(2, 3), ExplicitLevels: true})
	require.Len(t, scoped, 2)
	require.Nil(t, scoped[0].Data.ParentID)
	require.Equal(t, 1, *scoped[0].Data.Level)
	require.Equal(t, 2, *scoped[1].Data.Level)
}
