package persistence

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

func TestLoadNodes(t *testing.T) {
	nodes, err := LoadNodes(filepath.Join("testdata", "nodes.yaml"))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	require.Equal(t, "unit-1", nodes[0].ID)
	require.Equal(t, diagram.Point{X: 400, Y: 0}, nodes[0].Position)
	require.Equal(t, 180.0, nodes[0].Width)
	require.Nil(t, nodes[0].Data.ParentID)

	require.Equal(t, "unit-1", *nodes[1].Data.ParentID)
	_, explicit := nodes[1].Data.ExplicitLevel()
	require.False(t, explicit)

	lvl, explicit := nodes[2].Data.ExplicitLevel()
	require.True(t, explicit)
	require.Equal(t, 2, lvl)
}

func TestDecodeNodes_Rejects(t *testing.T) {
	cases := map[string]string{
		"blank id":  "nodes:\n  - id: ' '\n",
		"duplicate": "nodes:\n  - id: a\n  - id: a\n",
		"unknown":   "nodes:\n  - id: a\n    colour: red\n",
		"syntax":    "nodes: [\n",
	}
	for name, doc := range cases {
		_, err := DecodeNodes(strings.NewReader(doc))
		require.Error(t, err, name)
	}
}

func TestDecodeNodes_Empty(t *testing.T) {
	nodes, err := DecodeNodes(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, nodes)
}
