package layout

import (
	stderrors "errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/digraph/transform"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

func level(n int, edges [][2]int) *digraph.Vertex {
	vs := make([]*digraph.Vertex, n)
	for i := range vs {
		vs[i] = digraph.NewVertex(i, fmt.Sprint(i), digraph.KindPlain)
	}
	es := make([]digraph.Edge, len(edges))
	for i, e := range edges {
		es[i] = digraph.Edge{From: e[0], To: e[1]}
	}
	return digraph.Build(vs, es).Root()
}

type box struct{ x, y, w, h float64 }

func geometry(root *digraph.Vertex) map[int]box {
	out := make(map[int]box)
	digraph.Walk(root, func(v *digraph.Vertex, _ int) bool {
		out[v.ID] = box{v.X, v.Y, v.Width, v.Height}
		return true
	})
	return out
}

func TestLayout_Geometry(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		root  box
		want  map[int]box
	}{
		{
			name:  "chain",
			n:     3,
			edges: [][2]int{{0, 1}, {1, 2}},
			root:  box{0, 10, 3, 7},
			want:  map[int]box{0: {1, 1, 1, 1}, 1: {1, 3, 1, 1}, 2: {1, 5, 1, 1}},
		},
		{
			name:  "fan out",
			n:     3,
			edges: [][2]int{{0, 1}, {0, 2}},
			root:  box{0, 10, 5, 5},
			want:  map[int]box{0: {2, 1, 1, 1}, 1: {1, 3, 1, 1}, 2: {3, 3, 1, 1}},
		},
		{
			name:  "diamond places join under last parent",
			n:     4,
			edges: [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}},
			root:  box{0, 10, 5, 7},
			want:  map[int]box{0: {2, 1, 1, 1}, 1: {1, 3, 1, 1}, 2: {3, 3, 1, 1}, 3: {3, 5, 1, 1}},
		},
		{
			name:  "forest",
			n:     2,
			edges: nil,
			root:  box{0, 10, 5, 3},
			want:  map[int]box{0: {1, 1, 1, 1}, 1: {3, 1, 1, 1}},
		},
		{
			name:  "self loop ignored",
			n:     2,
			edges: [][2]int{{0, 1}, {1, 1}},
			root:  box{0, 10, 3, 5},
			want:  map[int]box{0: {1, 1, 1, 1}, 1: {1, 3, 1, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := level(tt.n, tt.edges)
			if err := Layout(root); err != nil {
				t.Fatalf("Layout() error = %v", err)
			}
			got := geometry(root)
			if got[digraph.RootID] != tt.root {
				t.Errorf("root = %+v, want %+v", got[digraph.RootID], tt.root)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("vertex %d = %+v, want %+v", id, got[id], want)
				}
			}
		})
	}
}

func TestLayout_EmptyRoot(t *testing.T) {
	root := level(0, nil)
	if err := Layout(root, WithBoxSize(4, 2)); err != nil {
		t.Fatal(err)
	}
	if root.Width != 4 || root.Height != 2 || root.Y != DefaultRootOffset {
		t.Errorf("root = %vx%v at y %v", root.Width, root.Height, root.Y)
	}
}

func TestLayout_Errors(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  error
		code  errors.Code
	}{
		{"two cycle", 2, [][2]int{{0, 1}, {1, 0}}, ErrCyclicLevel, errors.ErrCodeCyclicLevel},
		{"cycle below source", 3, [][2]int{{0, 1}, {1, 2}, {2, 1}}, ErrCyclicLevel, errors.ErrCodeCyclicLevel},
		{"unreachable cycle", 3, [][2]int{{1, 2}, {2, 1}}, ErrUnvisited, errors.ErrCodeUnvisited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Layout(level(tt.n, tt.edges))
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("Layout() error = %v, want %v", err, tt.want)
			}
			if errors.GetCode(err) != tt.code {
				t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), tt.code)
			}
		})
	}
}

// expandedComponent returns a layered A→B→C→A, A→D hierarchy with the
// component expanded and its cycle broken.
func expandedComponent(t *testing.T) *digraph.Vertex {
	t.Helper()
	root, _ := transform.Layer(level(4, [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}}))
	comp := root.Inner().Vertex(4)
	comp.Expanded = true
	transform.BreakCycles(comp.Inner())
	return root
}

func TestLayout_ExpandedComponent(t *testing.T) {
	root := expandedComponent(t)
	if err := Layout(root); err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	comp := root.Inner().Vertex(4)
	// Inner chain 0→1→2: 1 wide, 5 tall, plus margins.
	if comp.Width != 3 || comp.Height != 7 {
		t.Errorf("component size = %vx%v, want 3x7", comp.Width, comp.Height)
	}
	d := root.Inner().Vertex(3)
	if d.Y != comp.Y+comp.Height+DefaultPadding {
		t.Errorf("D.Y = %v, want directly below the component", d.Y)
	}
	if a := comp.Inner().Vertex(0); a.X != 1 || a.Y != 1 {
		t.Errorf("A at (%v,%v), want (1,1) relative to the component", a.X, a.Y)
	}
}

func TestLayout_CollapsedIgnoresInner(t *testing.T) {
	root := expandedComponent(t)
	root.Inner().Vertex(4).Expanded = false
	if err := Layout(root); err != nil {
		t.Fatal(err)
	}
	comp := root.Inner().Vertex(4)
	if comp.Width != DefaultBoxWidth || comp.Height != DefaultBoxHeight {
		t.Errorf("collapsed size = %vx%v, want the base box", comp.Width, comp.Height)
	}
}

func TestLayout_CyclicExpandedComponent(t *testing.T) {
	root, _ := transform.Layer(level(2, [][2]int{{0, 1}, {1, 0}}))
	root.Inner().Vertex(2).Expanded = true
	if err := Layout(root); !stderrors.Is(err, ErrCyclicLevel) {
		t.Errorf("Layout() error = %v, want ErrCyclicLevel", err)
	}
}

func TestAssignChildren(t *testing.T) {
	root := level(5, [][2]int{{0, 2}, {1, 2}, {2, 3}, {0, 4}})
	tree, err := AssignChildren(root.Inner())
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(tree.Roots) != "[0 1]" {
		t.Errorf("Roots = %v, want [0 1]", tree.Roots)
	}
	// 2 waits for both sources and is placed under 1, the last to reach it.
	want := map[int]string{0: "[4]", 1: "[2]", 2: "[3]"}
	for id, w := range want {
		if got := fmt.Sprint(tree.Children[id]); got != w {
			t.Errorf("Children[%d] = %s, want %s", id, got, w)
		}
	}
}

func randomDAG(t *rapid.T) *digraph.Vertex {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	var edges [][2]int
	for _, p := range rapid.SliceOfN(rapid.IntRange(0, n*n-1), 0, 3*n).Draw(t, "edges") {
		from, to := p/n, p%n
		if from < to {
			edges = append(edges, [2]int{from, to})
		}
	}
	return level(n, edges)
}

func TestLayout_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := randomDAG(t)
		if err := Layout(root); err != nil {
			t.Fatalf("Layout() error = %v", err)
		}
		first := geometry(root)

		// Deterministic.
		if err := Layout(root); err != nil {
			t.Fatal(err)
		}
		if again := geometry(root); fmt.Sprint(again) != fmt.Sprint(first) {
			t.Fatalf("second layout differs")
		}

		// Boxes stay inside the root and never overlap.
		vs := root.Inner().Vertices()
		for i, a := range vs {
			if a.X < 0 || a.Y < 0 || a.X+a.Width > root.Width || a.Y+a.Height > root.Height {
				t.Fatalf("vertex %d at %+v escapes root %vx%v", a.ID, first[a.ID], root.Width, root.Height)
			}
			for _, b := range vs[i+1:] {
				if a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height {
					t.Fatalf("vertices %d and %d overlap", a.ID, b.ID)
				}
			}
		}

		// Bounding boxes are monotone.
		tree, err := AssignChildren(root.Inner())
		if err != nil {
			t.Fatal(err)
		}
		tree.place(root.Inner(), DefaultOptions())
		for _, v := range vs {
			w, _ := tree.BoundingBox(v.ID)
			sum := 0.0
			for _, c := range tree.Children[v.ID] {
				cw, _ := tree.BoundingBox(c)
				sum += cw + DefaultPadding
			}
			if w < v.Width || (len(tree.Children[v.ID]) > 0 && w < sum-DefaultPadding) {
				t.Fatalf("vertex %d bbox width %v below own %v or children %v", v.ID, w, v.Width, sum-DefaultPadding)
			}
		}
	})
}

func TestLayout_ParallelMatchesSequential(t *testing.T) {
	build := func() *digraph.Vertex {
		// Three independent cycles, each collapsed into an expanded component.
		root, _ := transform.Layer(level(9, [][2]int{
			{0, 1}, {1, 2}, {2, 0},
			{3, 4}, {4, 5}, {5, 3},
			{6, 7}, {7, 8}, {8, 6},
			{0, 3}, {0, 6},
		}))
		for _, v := range root.Inner().Vertices() {
			if v.Kind == digraph.KindComponent {
				v.Expanded = true
				transform.BreakCycles(v.Inner())
			}
		}
		return root
	}

	seq, par := build(), build()
	if err := Layout(seq); err != nil {
		t.Fatal(err)
	}
	if err := Layout(par, WithParallel(4)); err != nil {
		t.Fatal(err)
	}
	if a, b := fmt.Sprint(geometry(seq)), fmt.Sprint(geometry(par)); a != b {
		t.Errorf("parallel layout differs:\n%s\n%s", a, b)
	}
}
