// Package nodelink exports a package dependency graph as a node-link diagram.
//
// # Usage
//
// Convert a graph to DOT, then render it:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true, Outdated: broken})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// Edges point from a package to its dependencies. With Detailed set, every
// node is labelled with its version and the rebuild round it belongs to.
// When the graph has a cycle, the nodes and edges on the cycle are drawn in
// red instead and no rounds are shown.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz in
// process; no system installation is needed.
package nodelink
