package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/relink/pkg/dag"
)

// ErrDuplicateNode is returned by [ReadJSON] when two nodes share an ID.
var ErrDuplicateNode = errors.New("duplicate node")

// ReadJSON decodes a JSON graph from r.
//
// Every node needs a non-empty "id"; "meta" is optional. Edges must
// reference listed nodes. Cycles are accepted here and reported when the
// graph is ordered.
func ReadJSON(r io.Reader) (*dag.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New()
	for _, n := range data.Nodes {
		if g.HasNode(n.ID) {
			return nil, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNode)
		}
		if err := g.AddNode(n.ID, n.Meta); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*dag.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
