package mappers

import (
	"sort"
	"strings"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
)

// DatasetToOutline flattens the units inside scope into a pre-order outline.
// Units whose parent is missing or filtered out become roots; units caught in a
// parent cycle are appended after the reachable tree.
func DatasetToOutline(d *entities.Dataset, scope entities.FilterSet, selectedUnitID *int) *viewmodels.Outline {
	units := make([]entities.Unit, 0, len(d.Units))
	for _, u := range d.Units {
		if scope.Allows(u.ID) {
			units = append(units, u)
		}
	}
	byID := make(map[int]entities.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	positions := make(map[int]int, len(units))
	for _, p := range d.Positions {
		positions[p.UnitID]++
	}
	people := make(map[int]int, len(units))
	for _, p := range d.People {
		if _, unit, ok := d.PersonPlacement(p.ID); ok {
			people[unit.ID]++
		}
	}

	isRoot := func(u entities.Unit) bool {
		if u.ParentID == nil {
			return true
		}
		_, ok := byID[*u.ParentID]
		return !ok
	}

	childrenByParent := make(map[int][]entities.Unit, len(units))
	roots := make([]entities.Unit, 0, 4)
	for _, u := range units {
		if isRoot(u) {
			roots = append(roots, u)
			continue
		}
		childrenByParent[*u.ParentID] = append(childrenByParent[*u.ParentID], u)
	}
	for parentID := range childrenByParent {
		sortUnits(childrenByParent[parentID])
	}
	sortUnits(roots)

	out := make([]viewmodels.OutlineRow, 0, len(units))
	visited := make(map[int]struct{}, len(units))
	var walk func(u entities.Unit, depth int)
	walk = func(u entities.Unit, depth int) {
		if _, ok := visited[u.ID]; ok {
			return
		}
		visited[u.ID] = struct{}{}

		out = append(out, viewmodels.OutlineRow{
			ID:          diagram.UnitNodeID(u.ID),
			UnitID:      u.ID,
			Name:        u.Name,
			ShortName:   u.ShortName,
			Kind:        u.Kind.String(),
			Depth:       depth,
			Positions:   positions[u.ID],
			People:      people[u.ID],
			HasChildren: len(childrenByParent[u.ID]) > 0,
			Selected:    selectedUnitID != nil && *selectedUnitID == u.ID,
		})
		for _, child := range childrenByParent[u.ID] {
			walk(child, depth+1)
		}
	}

	for _, r := range roots {
		walk(r, 0)
	}

	if len(visited) != len(byID) {
		remaining := make([]entities.Unit, 0, len(byID)-len(visited))
		for _, u := range units {
			if _, ok := visited[u.ID]; !ok {
				remaining = append(remaining, u)
			}
		}
		sortUnits(remaining)
		for _, u := range remaining {
			walk(u, 0)
		}
	}

	return &viewmodels.Outline{Rows: out}
}

func sortUnits(units []entities.Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		ni := strings.TrimSpace(units[i].Name)
		nj := strings.TrimSpace(units[j].Name)
		if ni != nj {
			return ni < nj
		}
		return units[i].ID < units[j].ID
	})
}
