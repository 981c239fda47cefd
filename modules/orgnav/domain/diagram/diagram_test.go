package diagram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEntityRef(t *testing.T) {
	cases := []struct {
		raw      string
		typ      EntityType
		bare     string
		prefixed bool
	}{
		{raw: "unit-12", typ: EntityUnit, bare: "12", prefixed: true},
		{raw: "position-7", typ: EntityPosition, bare: "7", prefixed: true},
		{raw: " person-5 ", typ: EntityPerson, bare: "5", prefixed: true},
		{raw: "42", typ: EntityUnit, bare: "42"},
		{raw: "unit-", typ: EntityUnit, bare: "unit-"},
		{raw: "node-a", typ: EntityUnit, bare: "node-a"},
	}
	for _, tc := range cases {
		got := ParseEntityRef(tc.raw)
		require.Equal(t, tc.typ, got.Type, tc.raw)
		require.Equal(t, tc.bare, got.Bare, tc.raw)
		require.Equal(t, tc.prefixed, got.Prefixed, tc.raw)
	}

	id, ok := ParseEntityRef("position-7").NumericID()
	require.True(t, ok)
	require.Equal(t, 7, id)
	_, ok = ParseEntityRef("node-a").NumericID()
	require.False(t, ok)
}

func TestClampZoom(t *testing.T) {
	require.Equal(t, MaxZoom, ClampZoom(10))
	require.Equal(t, MinZoom, ClampZoom(-2))
	require.Equal(t, MinZoom, ClampZoom(0))
	require.Equal(t, 1.5, ClampZoom(1.5))
	require.Equal(t, 1.0, ClampZoom(math.NaN()))
	require.Equal(t, MaxZoom, ClampZoom(math.Inf(1)))
}

func TestNodeSize_Defaults(t *testing.T) {
	w, h := Node{}.Size()
	require.Equal(t, DefaultNodeWidth, w)
	require.Equal(t, DefaultNodeHeight, h)

	w, h = Node{Width: 300, Height: 90}.Size()
	require.Equal(t, 300.0, w)
	require.Equal(t, 90.0, h)
}

func TestNodeData_ExplicitLevel(t *testing.T) {
	lvl, depth := 2, 5
	got, ok := NodeData{Level: &lvl, Depth: &depth}.ExplicitLevel()
	require.True(t, ok)
	require.Equal(t, 2, got)

	got, ok = NodeData{Depth: &depth}.ExplicitLevel()
	require.True(t, ok)
	require.Equal(t, 5, got)

	_, ok = NodeData{}.ExplicitLevel()
	require.False(t, ok)
}
