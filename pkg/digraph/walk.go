package digraph

import (
	"fmt"
	"io"
	"strings"
)

// Walk visits root and every vertex nested below it in pre-order. Inner
// vertices are visited in ascending id order. depth is 0 for root. If fn
// returns false the vertex's inner graph is skipped.
func Walk(root *Vertex, fn func(v *Vertex, depth int) bool) {
	type item struct {
		v     *Vertex
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur.v, cur.depth) || cur.v.inner == nil {
			continue
		}
		inner := cur.v.inner.Vertices()
		for i := len(inner) - 1; i >= 0; i-- {
			stack = append(stack, item{inner[i], cur.depth + 1})
		}
	}
}

// Index maps every vertex id in the hierarchy below root (root included)
// to its vertex.
func Index(root *Vertex) map[int]*Vertex {
	idx := make(map[int]*Vertex)
	Walk(root, func(v *Vertex, _ int) bool {
		idx[v.ID] = v
		return true
	})
	return idx
}

// IDSource hands out vertex ids that are unused in a set of hierarchies.
// Synthetic vertices (components, groups, roots) take their ids from it so
// that ids stay unique and are never reused.
type IDSource struct {
	next int
}

// NewIDSource returns a source whose first id is one greater than the
// largest id found below any of the given roots.
func NewIDSource(roots ...*Vertex) *IDSource {
	s := &IDSource{}
	for _, r := range roots {
		if r == nil {
			continue
		}
		Walk(r, func(v *Vertex, _ int) bool {
			s.Reserve(v.ID)
			return true
		})
	}
	return s
}

// Reserve marks id as used.
func (s *IDSource) Reserve(id int) {
	if id >= s.next {
		s.next = id + 1
	}
}

// Next returns a fresh id.
func (s *IDSource) Next() int {
	id := s.next
	s.next++
	return id
}

// Dump writes an indented listing of the hierarchy below root with each
// level's edges, for debugging.
func Dump(w io.Writer, root *Vertex) error {
	var b strings.Builder
	Walk(root, func(v *Vertex, depth int) bool {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s [%s]", indent, v, v.Kind)
		if v.Expanded {
			b.WriteString(" expanded")
		}
		if v.Width > 0 || v.Height > 0 {
			fmt.Fprintf(&b, " (%g,%g %gx%g)", v.X, v.Y, v.Width, v.Height)
		}
		b.WriteByte('\n')
		if v.outer != nil {
			for _, e := range v.outer.OutEdges(v.ID) {
				fmt.Fprintf(&b, "%s  -> %d\n", indent, e.To)
			}
		}
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}
