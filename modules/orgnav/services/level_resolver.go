package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

// LevelResolver derives hierarchy depth from parent references.
// Results are computed per call and never cached.
type LevelResolver struct {
	catalog *Catalog
	log     *logrus.Logger
}

func NewLevelResolver(catalog *Catalog, log *logrus.Logger) *LevelResolver {
	return &LevelResolver{catalog: catalog, log: log}
}

// LevelOf returns the depth of a unit; roots, unknown units and units with a
// dangling parent are at level 0.
func (r *LevelResolver) LevelOf(unitID int) int {
	return r.levelOf(context.Background(), r.catalog.Dataset(), unitID)
}

func (r *LevelResolver) levelOf(ctx context.Context, d *entities.Dataset, unitID int) int {
	depth := 0
	u, ok := d.Unit(unitID)
	for ok && !u.IsRoot() {
		parent, found := d.Unit(*u.ParentID)
		if !found {
			break
		}
		if depth >= entities.MaxHierarchyDepth {
			logWithFields(ctx, r.log, logrus.WarnLevel, "orgnav.level.cycle_guard", logrus.Fields{
				"unit_id": unitID,
				"bound":   entities.MaxHierarchyDepth,
			})
			return depth
		}
		depth++
		u = parent
	}
	return depth
}

// UnitLevels computes the level of every unit allowed by scope.
func (r *LevelResolver) UnitLevels(ctx context.Context, scope entities.FilterSet) map[int]int {
	d := r.catalog.Dataset()
	out := make(map[int]int, len(d.Units))
	for _, u := range d.Units {
		if !scope.Allows(u.ID) {
			continue
		}
		out[u.ID] = r.levelOf(ctx, d, u.ID)
	}
	return out
}

// LevelOfNode returns the explicit level of a node, or the level derived from
// the visible node set. Nodes outside the set fall back to their unit's level.
func (r *LevelResolver) LevelOfNode(node diagram.Node, nodes []diagram.Node) int {
	if lvl, ok := node.Data.ExplicitLevel(); ok {
		return lvl
	}
	if lvl, ok := r.NodeLevels(nodes)[node.ID]; ok {
		return lvl
	}
	if id, ok := diagram.ParseEntityRef(node.ID).NumericID(); ok {
		return r.LevelOf(id)
	}
	return 0
}

// NodeLevels assigns a level to every node. Explicit level metadata wins; the
// remaining nodes get their breadth-first distance from the nearest root.
func (r *LevelResolver) NodeLevels(nodes []diagram.Node) map[string]int {
	levels := make(map[string]int, len(nodes))
	fallback := false
	for _, n := range nodes {
		if lvl, ok := n.Data.ExplicitLevel(); ok {
			levels[n.ID] = lvl
			continue
		}
		fallback = true
	}
	if !fallback {
		return levels
	}
	for id, lvl := range bfsLevels(nodes) {
		if _, ok := levels[id]; !ok {
			levels[id] = lvl
		}
	}
	return levels
}

func bfsLevels(nodes []diagram.Node) map[string]int {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}

	children := make(map[string][]string, len(nodes))
	roots := make([]string, 0, 4)
	for _, n := range nodes {
		parent := n.Data.ParentID
		if parent == nil || *parent == n.ID {
			roots = append(roots, n.ID)
			continue
		}
		if _, ok := present[*parent]; !ok {
			roots = append(roots, n.ID)
			continue
		}
		children[*parent] = append(children[*parent], n.ID)
	}

	levels := make(map[string]int, len(nodes))
	walk := func(start string) {
		if _, seen := levels[start]; seen {
			return
		}
		levels[start] = 0
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, child := range children[cur] {
				if _, seen := levels[child]; seen {
					continue
				}
				levels[child] = levels[cur] + 1
				queue = append(queue, child)
			}
		}
	}

	for _, id := range roots {
		walk(id)
	}
	// nodes caught in parent cycles have no root; each starts its own traversal
	for _, n := range nodes {
		walk(n.ID)
	}
	return levels
}
