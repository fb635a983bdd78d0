// Package render groups the output formats of a nested view.
//
// Two renderers consume the same derived view:
//
//   - [boxes] draws a computed [graph.Layout] as nested rectangles. It needs
//     no graph, so a layout.json written by one process can be drawn by
//     another.
//   - [nodelink] emits Graphviz DOT with expanded vertices as clusters, and
//     renders it to SVG through go-graphviz.
//
//	res, _ := runner.Redraw(ctx, h, view, layout.DefaultOptions())
//	svg := boxes.RenderSVG(res.Layout, boxes.WithEdges())
//	dot := nodelink.ToDOT(res.Root, nodelink.Options{Detailed: true})
//
// [boxes]: github.com/matzehuels/foldgraph/pkg/render/boxes
// [nodelink]: github.com/matzehuels/foldgraph/pkg/render/nodelink
// [graph.Layout]: github.com/matzehuels/foldgraph/pkg/graph#Layout
package render
