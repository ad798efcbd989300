package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relink/pkg/dag"
)

// Format is an output format understood by [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat returns the format for a file extension such as ".svg".
func ParseFormat(ext string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(ext, "."))); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	case "gv":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("unsupported graph format %q (want .dot, .svg or .png)", ext)
}

// Options configures diagram generation.
type Options struct {
	// Detailed adds the version and rebuild round to node labels.
	Detailed bool

	// Outdated marks packages that need a rebuild; they are filled.
	Outdated map[string]bool
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g *dag.Graph, opts Options) string {
	levels, err := g.Levels()
	var onCycle map[string]bool
	var cycleEdges map[dag.Edge]bool
	if ce := (*dag.CycleError)(nil); errors.As(err, &ce) {
		onCycle, cycleEdges = cycleSets(ce.Cycle)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, levels, opts.Detailed))}
		switch {
		case onCycle[id]:
			attrs = append(attrs, "color=red", "fontcolor=red")
		case opts.Outdated[id] || n.Meta["outdated"] == true:
			attrs = append(attrs, "fillcolor=\"#f4c7a1\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if cycleEdges[e] {
			fmt.Fprintf(&buf, "  %q -> %q [color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, levels map[string]int, detailed bool) string {
	if !detailed {
		return n.ID
	}

	var parts []string
	if lvl, ok := levels[n.ID]; ok {
		parts = append(parts, fmt.Sprintf("round: %d", lvl+1))
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == "outdated" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	if len(parts) == 0 {
		return n.ID
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// cycleSets returns the nodes and edges of a cycle path a -> b -> ... -> a.
func cycleSets(cycle []string) (map[string]bool, map[dag.Edge]bool) {
	nodes := make(map[string]bool, len(cycle))
	edges := make(map[dag.Edge]bool, len(cycle))
	for i, id := range cycle {
		nodes[id] = true
		if i+1 < len(cycle) {
			edges[dag.Edge{From: id, To: cycle[i+1]}] = true
		}
	}
	return nodes, edges
}

// Render renders DOT source with Graphviz. FormatDOT returns dot unchanged.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	if format == FormatDOT {
		return []byte(dot), nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported graph format %q", format)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element so the drawing scales from
// the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
