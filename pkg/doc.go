// Package pkg holds the libraries behind foldgraph, a drawing engine for
// large control-flow and call graphs.
//
// # Overview
//
// A graph is drawn as nested boxes. Strongly connected components are
// folded into component vertices that can be drawn open or closed, and
// vertices can be hidden so their in- and out-neighbours are joined
// directly. The packages split into three areas:
//
//  1. [digraph] and [digraph/transform] - the hierarchical graph, the
//     hidden overlay and the derivations that turn it into a view
//  2. [layout] - box geometry for a derived view
//  3. [pipeline], [cache], [graph] and the renderers - orchestration,
//     caching, serialization and output
//
// # Data Flow
//
//	graph.json
//	     ↓
//	[graph] ReadGraphFile → digraph.Hierarchical, Hide/Unhide
//	     ↓
//	[digraph/transform] VisibleGraph → DropPassThrough → Compress → Layer
//	     ↓
//	[layout] Layout (child assignment, bounding boxes, positions)
//	     ↓
//	[render/boxes] SVG, [render/nodelink] DOT, or layout JSON
//
// [pipeline] runs the whole chain with caching and is shared by the CLI
// and the HTTP API.
//
// # Quick Start
//
//	h, _ := graph.ReadGraphFile("cfg.json")
//	_ = h.Hide(12)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Redraw(ctx, h, pipeline.View{ExpandAll: true}, layout.DefaultOptions())
//	svg := boxes.RenderSVG(res.Layout)
//
// [digraph]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/digraph
// [digraph/transform]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/digraph/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/graph
// [render/boxes]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/render/boxes
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/foldgraph/pkg/render/nodelink
package pkg
