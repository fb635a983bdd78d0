// Package nodelink renders hierarchies as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz drawings of the visible hierarchy, where
// vertices appear as boxes connected by arrows and expanded vertices are
// drawn as clusters around their inner graph. It complements the engine's
// own box layout (see pkg/render/boxes) when a conventional diagram is
// preferred.
//
// # Usage
//
// Convert a hierarchy to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//
// The generated DOT uses top-to-bottom layout (rankdir=TB). Spliced edges
// are dashed; back edges removed to lay out cyclic components are red.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
