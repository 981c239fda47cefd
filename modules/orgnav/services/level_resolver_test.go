package services

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/canvas"
)

func TestLevelResolver_LevelOf_Chain(t *testing.T) {
	log, _ := newTestLogger()
	d := entities.NewDataset([]entities.Unit{
		{ID: 1, Name: "a", Kind: entities.UnitKindDirection},
		{ID: 2, Name: "b", ParentID: intPtr(1), Kind: entities.UnitKindArea},
		{ID: 3, Name: "c", ParentID: intPtr(2), Kind: entities.UnitKindTeam},
	}, nil, nil, nil)
	r := NewLevelResolver(NewCatalog(d), log)

	require.Equal(t, 0, r.LevelOf(1))
	require.Equal(t, 1, r.LevelOf(2))
	require.Equal(t, 2, r.LevelOf(3))
	require.Equal(t, 0, r.LevelOf(99))
}

func TestLevelResolver_DanglingParentIsRoot(t *testing.T) {
	log, _ := newTestLogger()
	d := entities.NewDataset([]entities.Unit{
		{ID: 5, Name: "orphan", ParentID: intPtr(77), Kind: entities.UnitKindOther},
		{ID: 6, Name: "child", ParentID: intPtr(5), Kind: entities.UnitKindOther},
	}, nil, nil, nil)
	r := NewLevelResolver(NewCatalog(d), log)

	require.Equal(t, 0, r.LevelOf(5))
	require.Equal(t, 1, r.LevelOf(6))
}

func TestLevelResolver_CycleGuard(t *testing.T) {
	log, hook := newTestLogger()
	d := entities.NewDataset([]entities.Unit{
		{ID: 1, Name: "a", ParentID: intPtr(2), Kind: entities.UnitKindArea},
		{ID: 2, Name: "b", ParentID: intPtr(1), Kind: entities.UnitKindArea},
	}, nil, nil, nil)
	r := NewLevelResolver(NewCatalog(d), log)

	require.Equal(t, entities.MaxHierarchyDepth, r.LevelOf(1))

	warnings := entriesWith(hook, logrus.WarnLevel, "orgnav.level.cycle_guard")
	require.Len(t, warnings, 1)
	require.Equal(t, 1, warnings[0].Data["unit_id"])
	require.Equal(t, entities.MaxHierarchyDepth, warnings[0].Data["bound"])
}

func TestLevelResolver_UnitLevelsHonorsScope(t *testing.T) {
	log, _ := newTestLogger()
	r := NewLevelResolver(NewCatalog(orgDataset()), log)

	all := r.UnitLevels(context.Background(), nil)
	require.Equal(t, map[int]int{1: 0, 2: 1, 3: 1, 4: 2}, all)

	scoped := r.UnitLevels(context.Background(), entities.NewFilterSet(2, 4))
	require.Equal(t, map[int]int{2: 1, 4: 2}, scoped)
}

func TestLevelResolver_NodeLevels_FallbackBFS(t *testing.T) {
	log, _ := newTestLogger()
	r := NewLevelResolver(NewCatalog(nil), log)
	nodes := []diagram.Node{
		{ID: "root"},
		{ID: "a", Data: diagram.NodeData{ParentID: strPtr("root")}},
		{ID: "b", Data: diagram.NodeData{ParentID: strPtr("root")}},
		{ID: "a1", Data: diagram.NodeData{ParentID: strPtr("a")}},
		{ID: "b1", Data: diagram.NodeData{ParentID: strPtr("b")}},
	}

	require.Equal(t, map[string]int{"root": 0, "a": 1, "b": 1, "a1": 2, "b1": 2}, r.NodeLevels(nodes))
	require.Equal(t, 2, r.LevelOfNode(nodes[3], nodes))
}

func TestLevelResolver_NodeLevels_ExplicitWins(t *testing.T) {
	log, _ := newTestLogger()
	r := NewLevelResolver(NewCatalog(nil), log)
	nodes := []diagram.Node{
		{ID: "root"},
		{ID: "a", Data: diagram.NodeData{ParentID: strPtr("root"), Level: intPtr(4)}},
		{ID: "a1", Data: diagram.NodeData{ParentID: strPtr("a"), Depth: intPtr(7)}},
		{ID: "b", Data: diagram.NodeData{ParentID: strPtr("missing")}},
	}

	require.Equal(t, map[string]int{"root": 0, "a": 4, "a1": 7, "b": 0}, r.NodeLevels(nodes))
}

func TestLevelResolver_NodeLevels_CycleTerminates(t *testing.T) {
	log, _ := newTestLogger()
	r := NewLevelResolver(NewCatalog(nil), log)
	nodes := []diagram.Node{
		{ID: "x", Data: diagram.NodeData{ParentID: strPtr("y")}},
		{ID: "y", Data: diagram.NodeData{ParentID: strPtr("x")}},
		{ID: "self", Data: diagram.NodeData{ParentID: strPtr("self")}},
	}

	require.Equal(t, map[string]int{"x": 0, "y": 1, "self": 0}, r.NodeLevels(nodes))
}

func TestLevelResolver_LevelOfNode_FallsBackToUnit(t *testing.T) {
	log, _ := newTestLogger()
	r := NewLevelResolver(NewCatalog(orgDataset()), log)

	require.Equal(t, 2, r.LevelOfNode(diagram.Node{ID: "unit-4"}, nil))
	require.Equal(t, 0, r.LevelOfNode(diagram.Node{ID: "free-form"}, nil))
}

// randomForest builds units 1..len(seeds)+1; unit i hangs from seeds[i-2] % i,
// where 0 makes it a root.
func randomForest(seeds []int) *entities.Dataset {
	units := []entities.Unit{{ID: 1, Name: "u1", Kind: entities.UnitKindOther}}
	for i, seed := range seeds {
		id := i + 2
		u := entities.Unit{ID: id, Name: "u", Kind: entities.UnitKindOther}
		if p := seed % id; p != 0 {
			u.ParentID = intPtr(p)
		}
		units = append(units, u)
	}
	return entities.NewDataset(units, nil, nil, nil)
}

func TestLevelResolver_FallbackAgreesWithParentWalk(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	log, _ := newTestLogger()

	properties.Property("bfs levels match parent walk", prop.ForAll(
		func(seeds []int) bool {
			d := randomForest(seeds)
			r := NewLevelResolver(NewCatalog(d), log)
			nodes := canvas.Layout(d, canvas.LayoutOptions{})
			levels := r.NodeLevels(nodes)
			for _, u := range d.Units {
				if levels[diagram.UnitNodeID(u.ID)] != r.LevelOf(u.ID) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(9, gen.IntRange(0, 1000)),
	))

	properties.Property("levels stay within the cycle bound", prop.ForAll(
		func(parents []int) bool {
			units := make([]entities.Unit, len(parents))
			for i, p := range parents {
				units[i] = entities.Unit{ID: i + 1, Name: "u", ParentID: intPtr(p), Kind: entities.UnitKindOther}
			}
			r := NewLevelResolver(NewCatalog(entities.NewDataset(units, nil, nil, nil)), log)
			for _, u := range units {
				if lvl := r.LevelOf(u.ID); lvl < 0 || lvl > entities.MaxHierarchyDepth {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(15, gen.IntRange(1, 15)),
	))

	properties.TestingRun(t)
}
