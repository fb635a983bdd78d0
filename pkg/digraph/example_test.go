package digraph_test

import (
	"fmt"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

func ExampleGraph_basic() {
	// A small call graph: main → parse → lex, main → eval
	g := digraph.New()
	_ = g.AddVertex(digraph.NewVertex(1, "main", digraph.KindMethod))
	_ = g.AddVertex(digraph.NewVertex(2, "parse", digraph.KindMethod))
	_ = g.AddVertex(digraph.NewVertex(3, "lex", digraph.KindMethod))
	_ = g.AddVertex(digraph.NewVertex(4, "eval", digraph.KindMethod))
	_ = g.Connect(1, 2)
	_ = g.Connect(2, 3)
	_ = g.Connect(1, 4)

	fmt.Println("Vertices:", g.Len())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Callees of main:", g.OutNeighbors(1))
	fmt.Println("Sources:", g.Sources())
	// Output:
	// Vertices: 4
	// Edges: 3
	// Callees of main: [parse#2 eval#4]
	// Sources: [main#1]
}

func ExampleGraph_droppedEdge() {
	g := digraph.New()
	_ = g.AddVertex(digraph.NewVertex(1, "main", digraph.KindMethod))
	err := g.Connect(1, 99)

	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Error:", err != nil)
	fmt.Println("Warnings:", len(g.Warnings()))
	// Output:
	// Edges: 0
	// Error: true
	// Warnings: 1
}

func ExampleHierarchical_Hide() {
	h := digraph.Build(
		[]*digraph.Vertex{
			digraph.NewVertex(0, "A", digraph.KindPlain),
			digraph.NewVertex(1, "B", digraph.KindPlain),
			digraph.NewVertex(2, "C", digraph.KindPlain),
		},
		[]digraph.Edge{{From: 0, To: 1}, {From: 1, To: 2}},
	)

	_ = h.Hide(1)
	for _, e := range h.VisibleEdges() {
		fmt.Printf("%d -> %d spliced=%v\n", e.From, e.To, e.Meta[digraph.MetaSpliced] == true)
	}

	_ = h.Unhide(1)
	fmt.Println("Visible edges:", len(h.VisibleEdges()))
	// Output:
	// 0 -> 2 spliced=true
	// Visible edges: 2
}
