package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/digraph/transform"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the kind and metadata in vertex labels.
	// When false, only the label (or id) is shown.
	Detailed bool
}

// ToDOT converts a hierarchy to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using
// [RenderSVG].
//
// Expanded vertices become cluster subgraphs holding their inner graph;
// collapsed synthetic vertices are drawn as folders. Spliced edges are
// dashed and recorded back edges are drawn in red against the layout
// direction.
func ToDOT(root *digraph.Vertex, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root.Inner() != nil {
		writeLevel(&buf, root, opts, "  ")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeLevel(buf *bytes.Buffer, owner *digraph.Vertex, opts Options, indent string) {
	g := owner.Inner()
	for _, v := range g.Vertices() {
		if v.Expanded && v.HasInner() {
			fmt.Fprintf(buf, "%ssubgraph \"cluster_%d\" {\n", indent, v.ID)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(v, opts.Detailed))
			fmt.Fprintf(buf, "%s  style=\"rounded,dashed\";\n", indent)
			writeLevel(buf, v, opts, indent+"  ")
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s%s [%s];\n", indent, nodeID(v.ID), strings.Join(fmtAttrs(v, opts.Detailed), ", "))
	}
	for _, e := range g.Edges() {
		attrs := edgeAttrs(g, e)
		if e.Meta[digraph.MetaSpliced] == true {
			attrs = append(attrs, "style=dashed")
		}
		writeEdge(buf, indent, g, e, attrs)
	}
	if back, ok := owner.Meta[transform.MetaBack].([]digraph.Edge); ok {
		for _, e := range back {
			writeEdge(buf, indent, g, e, append(edgeAttrs(g, e), "color=red", "constraint=false"))
		}
	}
}

func writeEdge(buf *bytes.Buffer, indent string, g *digraph.Graph, e digraph.Edge, attrs []string) {
	fmt.Fprintf(buf, "%s%s -> %s", indent, nodeID(anchor(g, e.From)), nodeID(anchor(g, e.To)))
	if len(attrs) > 0 {
		fmt.Fprintf(buf, " [%s]", strings.Join(attrs, ", "))
	}
	buf.WriteString(";\n")
}

// edgeAttrs clips edges touching a cluster at the cluster border.
func edgeAttrs(g *digraph.Graph, e digraph.Edge) []string {
	var attrs []string
	if v := g.Vertex(e.From); v != nil && v.Expanded && v.HasInner() {
		attrs = append(attrs, fmt.Sprintf("ltail=\"cluster_%d\"", v.ID))
	}
	if v := g.Vertex(e.To); v != nil && v.Expanded && v.HasInner() {
		attrs = append(attrs, fmt.Sprintf("lhead=\"cluster_%d\"", v.ID))
	}
	return attrs
}

// anchor returns the vertex drawn for id. Expanded vertices are clusters,
// which cannot be edge endpoints, so their first drawn descendant is used.
func anchor(g *digraph.Graph, id int) int {
	v := g.Vertex(id)
	for v != nil && v.Expanded && v.HasInner() {
		v = v.Inner().Vertices()[0]
	}
	if v == nil {
		return id
	}
	return v.ID
}

func nodeID(id int) string { return fmt.Sprintf("\"v%d\"", id) }

func fmtLabel(v *digraph.Vertex, detailed bool) string {
	name := v.Label
	if name == "" {
		name = "#" + strconv.Itoa(v.ID)
	}
	if !detailed {
		return name
	}

	parts := []string{"kind: " + v.Kind.String()}
	for _, k := range slices.Sorted(maps.Keys(v.Meta)) {
		if k == transform.MetaBack || k == transform.MetaMembers {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.Meta[k]))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(v *digraph.Vertex, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(v, detailed))}
	switch {
	case v.Kind.IsSynthetic():
		attrs = append(attrs, "shape=folder", "fillcolor=lightgrey")
	case v.Kind == digraph.KindLoop:
		attrs = append(attrs, "shape=ellipse")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
