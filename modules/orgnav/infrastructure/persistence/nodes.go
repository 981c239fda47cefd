package persistence

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

// Node files carry the positions computed by the diagram renderer:
//
//	nodes:
//	  - id: unit-1
//	    position: {x: 0, y: 0}
//	    width: 180
//	    data: {label: Dirección General}
//	  - id: unit-2
//	    position: {x: -120, y: 160}
//	    data: {label: Finanzas, parent_id: unit-1}
type nodesDocument struct {
	Nodes []diagram.Node `yaml:"nodes"`
}

// DecodeNodes reads a node set in file order. Ids must be unique and non-blank.
func DecodeNodes(r io.Reader) ([]diagram.Node, error) {
	var doc nodesDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode nodes")
	}

	seen := make(map[string]struct{}, len(doc.Nodes))
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		n.ID = strings.TrimSpace(n.ID)
		if n.ID == "" {
			return nil, fmt.Errorf("decode nodes: node %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("decode nodes: node %q defined twice", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return doc.Nodes, nil
}

func LoadNodes(path string) ([]diagram.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open nodes %s", path)
	}
	defer f.Close()
	return DecodeNodes(f)
}
