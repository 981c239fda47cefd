package canvas

import (
	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

const (
	ColumnGap = 200.0
	RowGap    = 120.0
)

type LayoutOptions struct {
	// Scope hides units outside the filter. Edges to hidden parents are dropped.
	Scope entities.FilterSet
	// ExplicitLevels stamps each node with its depth. Without it consumers
	// derive levels from the parent links.
	ExplicitLevels bool
}

// Layout places units on a grid: one row per depth, dataset order within a row.
func Layout(d *entities.Dataset, opts LayoutOptions) []diagram.Node {
	columns := make(map[int]int)
	nodes := make([]diagram.Node, 0, len(d.Units))
	for _, u := range d.Units {
		if !opts.Scope.Allows(u.ID) {
			continue
		}
		depth := len(d.Ancestors(u.ID))
		col := columns[depth]
		columns[depth] = col + 1

		data := diagram.NodeData{
			Label: u.Name,
			Short: u.ShortName,
			Kind:  u.Kind.String(),
		}
		if u.ParentID != nil && opts.Scope.Allows(*u.ParentID) {
			if _, ok := d.Unit(*u.ParentID); ok {
				parent := diagram.UnitNodeID(*u.ParentID)
				data.ParentID = &parent
			}
		}
		if opts.ExplicitLevels {
			level := depth
			data.Level = &level
		}
		nodes = append(nodes, diagram.Node{
			ID:       diagram.UnitNodeID(u.ID),
			Position: diagram.Point{X: float64(col) * ColumnGap, Y: float64(depth) * RowGap},
			Width:    diagram.DefaultNodeWidth,
			Height:   diagram.DefaultNodeHeight,
			Data:     data,
		})
	}
	return nodes
}
