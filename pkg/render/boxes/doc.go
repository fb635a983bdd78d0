// Package boxes renders engine layouts as SVG.
//
// Where pkg/render/nodelink asks Graphviz to place vertices, this package
// draws the coordinates computed by pkg/layout directly: every [graph.Box]
// becomes a rectangle at its absolute position, expanded vertices become
// dashed frames around their members, and level edges are drawn as
// arrows. Spliced edges are dashed and back edges red.
//
//	l := graph.ExportLayout(root)
//	svg := boxes.RenderSVG(l, boxes.WithEdges())
package boxes
