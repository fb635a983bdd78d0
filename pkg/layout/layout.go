package layout

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

var (
	// ErrCyclicLevel is returned when a level contains a cycle, so some
	// vertex's residual in-degree never reaches zero. Collapse strongly
	// connected components before layout.
	ErrCyclicLevel = stderrors.New("layout: level is not acyclic")

	// ErrUnvisited is returned when a vertex is not reached from any source
	// of its level.
	ErrUnvisited = stderrors.New("layout: vertex not reached from a source")
)

// Layout computes geometry for root and every vertex below it, writing
// Width, Height, X and Y in place.
//
// Every vertex first gets the base box size. Then root's inner graph is laid
// out level by level: the inner graphs of expanded vertices are laid out
// first, which sizes those vertices to enclose their content; collapsed
// vertices keep the base box. Each level is arranged as a forest whose
// trees come from a topological assignment of children, with children
// centred below their parent. X and Y are relative to the enclosing
// vertex's box; root itself is placed at (0, RootOffset).
//
// Every level must be acyclic apart from self loops. A cycle yields an
// error wrapping [ErrCyclicLevel]; a vertex that cannot be reached yields
// [ErrUnvisited]. Layout is deterministic: the same hierarchy always
// produces the same geometry.
func Layout(root *digraph.Vertex, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	digraph.Walk(root, func(v *digraph.Vertex, _ int) bool {
		v.X, v.Y = 0, 0
		v.Width, v.Height = o.BoxWidth, o.BoxHeight
		return true
	})

	if err := layoutLevel(root, o); err != nil {
		return err
	}
	root.Y += o.RootOffset
	return nil
}

// layoutLevel lays out parent's inner graph and sizes parent to enclose it.
func layoutLevel(parent *digraph.Vertex, o Options) error {
	g := parent.Inner()
	if g == nil || g.Len() == 0 {
		parent.Width, parent.Height = o.BoxWidth, o.BoxHeight
		return nil
	}

	var nested []*digraph.Vertex
	for _, v := range g.Vertices() {
		if v.Expanded && v.HasInner() {
			nested = append(nested, v)
		}
	}
	if o.Parallel > 1 && len(nested) > 1 {
		var eg errgroup.Group
		eg.SetLimit(o.Parallel)
		for _, v := range nested {
			eg.Go(func() error { return layoutLevel(v, o) })
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	} else {
		for _, v := range nested {
			if err := layoutLevel(v, o); err != nil {
				return err
			}
		}
	}

	t, err := AssignChildren(g)
	if err != nil {
		return fmt.Errorf("lay out %s: %w", parent, err)
	}
	w, h := t.place(g, o)
	parent.Width = w + 2*o.Margin
	parent.Height = h + 2*o.Margin
	return nil
}

// Tree is the spanning forest of one level used for placement. Every
// vertex appears exactly once, as a root or as the child of the
// predecessor that was processed last.
type Tree struct {
	Roots    []int         // Source vertices in ascending id order
	Children map[int][]int // Children in discovery order

	bboxW, bboxH map[int]float64
}

// AssignChildren computes the placement forest of g with a Kahn-style
// breadth-first pass from its sources.
//
// Each vertex keeps a residual in-degree: its number of in-neighbours
// other than itself, minus one for the edge it was discovered through. It
// becomes a child of the predecessor that brings the residual to zero, so a
// vertex with several predecessors is placed once, below the last of them.
func AssignChildren(g *digraph.Graph) (*Tree, error) {
	const (
		white = iota
		gray
		black
	)

	t := &Tree{Children: make(map[int][]int, g.Len())}
	state := make(map[int]int, g.Len())
	residual := make(map[int]int)
	var queue []int

	for _, v := range g.Sources() {
		state[v.ID] = gray
		t.Roots = append(t.Roots, v.ID)
		queue = append(queue, v.ID)
	}

	var bad []int
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range g.OutEdges(v) {
			w := e.To
			if w == v {
				continue
			}
			switch state[w] {
			case white:
				state[w] = gray
				r := g.InDegree(w) - 1
				if g.HasSelfLoop(w) {
					r--
				}
				if r > 0 {
					residual[w] = r
					continue
				}
				t.Children[v] = append(t.Children[v], w)
				queue = append(queue, w)
			case gray:
				r, waiting := residual[w]
				if !waiting {
					// w was already placed, so this edge closes a cycle.
					bad = append(bad, w)
					continue
				}
				if r--; r > 0 {
					residual[w] = r
					continue
				}
				delete(residual, w)
				t.Children[v] = append(t.Children[v], w)
				queue = append(queue, w)
			case black:
				bad = append(bad, w)
			}
		}
		state[v] = black
	}

	bad = append(bad, slices.Collect(maps.Keys(residual))...)
	if len(bad) > 0 {
		slices.Sort(bad)
		return nil, errors.Wrap(errors.ErrCodeCyclicLevel, ErrCyclicLevel,
			"vertices %v", slices.Compact(bad))
	}

	var unvisited []int
	for _, id := range g.IDs() {
		if state[id] != black {
			unvisited = append(unvisited, id)
		}
	}
	if len(unvisited) > 0 {
		return nil, errors.Wrap(errors.ErrCodeUnvisited, ErrUnvisited, "vertices %v", unvisited)
	}
	return t, nil
}

// preorder returns the tree's vertices with every parent before its
// children.
func (t *Tree) preorder() []int {
	var out []int
	stack := slices.Clone(t.Roots)
	slices.Reverse(stack)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, v)
		kids := t.Children[v]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// BoundingBox returns the width and height of the subtree rooted at id
// after placement.
func (t *Tree) BoundingBox(id int) (float64, float64) {
	return t.bboxW[id], t.bboxH[id]
}

// place sizes every subtree bottom-up, then positions vertices top-down.
// It returns the size of the whole forest.
func (t *Tree) place(g *digraph.Graph, o Options) (float64, float64) {
	order := t.preorder()
	t.bboxW = make(map[int]float64, len(order))
	t.bboxH = make(map[int]float64, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		v := g.Vertex(order[i])
		kids := t.Children[v.ID]
		if len(kids) == 0 {
			t.bboxW[v.ID], t.bboxH[v.ID] = v.Width, v.Height
			continue
		}
		var sum, tallest float64
		for _, c := range kids {
			sum += t.bboxW[c] + o.Padding
			tallest = max(tallest, t.bboxH[c])
		}
		t.bboxW[v.ID] = max(v.Width, sum-o.Padding)
		t.bboxH[v.ID] = v.Height + o.Padding + tallest
	}

	type slot struct {
		id        int
		left, top float64
	}
	var (
		stack          []slot
		width, tallest float64
	)
	for _, r := range t.Roots {
		stack = append(stack, slot{r, o.Margin + width, o.Margin})
		width += t.bboxW[r] + o.Padding
		tallest = max(tallest, t.bboxH[r])
	}
	width -= o.Padding

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := g.Vertex(s.id)
		kids := t.Children[s.id]

		var span float64
		for _, c := range kids {
			span += t.bboxW[c] + o.Padding
		}
		span -= o.Padding
		var shift float64
		if len(kids) > 0 && v.Width >= span {
			shift = (v.Width - span) / 2
		}
		acc := 0.0
		for _, c := range kids {
			stack = append(stack, slot{c, s.left + shift + acc, s.top + v.Height + o.Padding})
			acc += t.bboxW[c] + o.Padding
		}

		v.X = s.left + (t.bboxW[s.id]-v.Width)/2
		v.Y = s.top
	}
	return width, tallest
}
