package transform

import (
	"fmt"
	"slices"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"pgregory.net/rapid"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

var names = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

func hierarchy(n int, edges [][2]int) *digraph.Hierarchical {
	vs := make([]*digraph.Vertex, n)
	for i := range vs {
		label := fmt.Sprint(i)
		if i < len(names) {
			label = names[i]
		}
		vs[i] = digraph.NewVertex(i, label, digraph.KindPlain)
	}
	es := make([]digraph.Edge, len(edges))
	for i, e := range edges {
		es[i] = digraph.Edge{From: e[0], To: e[1]}
	}
	return digraph.Build(vs, es)
}

func randomEdges(t *rapid.T, n int) [][2]int {
	pairs := rapid.SliceOfN(rapid.IntRange(0, n*n-1), 0, 3*n).Draw(t, "edges")
	out := make([][2]int, len(pairs))
	for i, p := range pairs {
		out[i] = [2]int{p / n, p % n}
	}
	return out
}

func ids(vs []*digraph.Vertex) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

// gonumGraph mirrors g without self loops, which simple graphs reject.
func gonumGraph(g *digraph.Graph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for _, id := range g.IDs() {
		dg.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(e.From), simple.Node(e.To)))
	}
	return dg
}

func canonical(comps [][]int) [][]int {
	out := make([][]int, len(comps))
	for i, c := range comps {
		out[i] = slices.Sorted(slices.Values(c))
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

func TestSCC_CycleWithTail(t *testing.T) {
	// A→B→C→A, A→D
	h := hierarchy(4, [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}})
	got := StronglyConnectedComponents(h.Graph())
	want := [][]int{{3}, {0, 1, 2}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("StronglyConnectedComponents() = %v, want %v", got, want)
	}
}

func TestSCC(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  [][]int
	}{
		{"empty", 0, nil, nil},
		{"single", 1, nil, [][]int{{0}}},
		{"self loop is singleton", 1, [][2]int{{0, 0}}, [][]int{{0}}},
		{"chain", 3, [][2]int{{0, 1}, {1, 2}}, [][]int{{2}, {1}, {0}}},
		{"two cycles", 4, [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 3}, {3, 2}}, [][]int{{2, 3}, {0, 1}}},
		{"nested cycles", 4, [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 1}}, [][]int{{0, 1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StronglyConnectedComponents(hierarchy(tt.n, tt.edges).Graph())
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("StronglyConnectedComponents() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSCC_DeepCycle(t *testing.T) {
	const n = 50000
	edges := make([][2]int, n)
	for i := range edges {
		edges[i] = [2]int{i, (i + 1) % n}
	}
	comps := StronglyConnectedComponents(hierarchy(n, edges).Graph())
	if len(comps) != 1 || len(comps[0]) != n {
		t.Fatalf("got %d components, want one of size %d", len(comps), n)
	}
}

func TestSCC_MatchesGonum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		g := hierarchy(n, randomEdges(t, n)).Graph()

		got := canonical(StronglyConnectedComponents(g))

		var oracle [][]int
		for _, comp := range topo.TarjanSCC(gonumGraph(g)) {
			var c []int
			for _, node := range comp {
				c = append(c, int(node.ID()))
			}
			oracle = append(oracle, c)
		}
		want := canonical(oracle)

		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("components = %v, gonum = %v", got, want)
		}
	})
}
