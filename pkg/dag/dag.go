package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is matched by the error returned from [Graph.Order]
	// and [Graph.Layers] when the graph contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes, such as the
// package version or whether the package was found outdated.
type Metadata map[string]any

// Node is a package in the graph.
type Node struct {
	ID   string
	Meta Metadata // never nil for nodes returned by the graph
}

// Edge is a dependency: From depends on To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph with set semantics: adding an existing node or
// edge again is a no-op. Nodes remember their insertion order, which is the
// tie-breaker for every ordered result.
//
// The zero value is not usable - use New or Build.
type Graph struct {
	ids      []string
	nodes    map[string]*Node
	index    map[string]int
	outgoing map[string]map[string]struct{} // node -> dependencies
	incoming map[string]map[string]struct{} // node -> dependents
	edges    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		index:    make(map[string]int),
		outgoing: make(map[string]map[string]struct{}),
		incoming: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node. Adding an existing ID merges meta into the existing
// node's metadata and keeps its original position. Returns ErrInvalidNodeID
// for an empty ID.
func (g *Graph) AddNode(id string, meta Metadata) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if n, ok := g.nodes[id]; ok {
		maps.Copy(n.Meta, meta)
		return nil
	}
	m := Metadata{}
	maps.Copy(m, meta)
	g.nodes[id] = &Node{ID: id, Meta: m}
	g.index[id] = len(g.ids)
	g.ids = append(g.ids, id)
	g.outgoing[id] = make(map[string]struct{})
	g.incoming[id] = make(map[string]struct{})
	return nil
}

// AddEdge records that from depends on to. Both nodes must exist. Adding an
// existing edge is a no-op. Self-edges are allowed and form a cycle.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	if _, ok := g.outgoing[from][to]; ok {
		return nil
	}
	g.outgoing[from][to] = struct{}{}
	g.incoming[to][from] = struct{}{}
	g.edges++
	return nil
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether from depends on to.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.outgoing[from][to]
	return ok
}

// Node returns the node with the given ID and true, or a zero Node and false.
// The returned Meta map is the graph's own; modifications affect the graph.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.ids) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Children returns the dependencies of id in insertion order.
func (g *Graph) Children(id string) []string { return g.sorted(g.outgoing[id]) }

// Parents returns the dependents of id in insertion order.
func (g *Graph) Parents(id string) []string { return g.sorted(g.incoming[id]) }

// OutDegree returns the number of dependencies of id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of dependents of id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Edges returns every edge, ordered by source then target insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, from := range g.ids {
		for _, to := range g.Children(from) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, id := range g.ids {
		_ = c.AddNode(id, g.nodes[id].Meta)
	}
	for _, e := range g.Edges() {
		_ = c.AddEdge(e.From, e.To)
	}
	return c
}

// sorted returns the members of set ordered by insertion order.
func (g *Graph) sorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ids := slices.Collect(maps.Keys(set))
	slices.SortFunc(ids, func(a, b string) int { return g.index[a] - g.index[b] })
	return ids
}
