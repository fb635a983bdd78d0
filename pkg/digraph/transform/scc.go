package transform

import (
	"slices"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

// StronglyConnectedComponents partitions g's vertices into strongly
// connected components using Tarjan's algorithm.
//
// The traversal uses an explicit work stack, so call depth does not grow
// with the graph. Roots and neighbours are visited in ascending id order,
// which makes the result deterministic. Components are returned in the
// order Tarjan completes them (reverse topological order of the condensed
// graph) and each component's ids are sorted. Self loops do not affect the
// result; a vertex with only a self loop is a singleton component.
func StronglyConnectedComponents(g *digraph.Graph) [][]int {
	var (
		index   = make(map[int]int, g.Len())
		low     = make(map[int]int, g.Len())
		onStack = make(map[int]bool, g.Len())
		stack   []int
		next    int
		comps   [][]int
	)

	type frame struct {
		id   int
		succ []digraph.Edge
		i    int
	}

	visit := func(id int) *frame {
		index[id] = next
		low[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true
		return &frame{id: id, succ: g.OutEdges(id)}
	}

	for _, root := range g.IDs() {
		if _, seen := index[root]; seen {
			continue
		}
		work := []*frame{visit(root)}

		for len(work) > 0 {
			f := work[len(work)-1]
			if f.i < len(f.succ) {
				w := f.succ[f.i].To
				f.i++
				if w == f.id {
					continue
				}
				if _, seen := index[w]; !seen {
					work = append(work, visit(w))
				} else if onStack[w] {
					low[f.id] = min(low[f.id], index[w])
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].id
				low[parent] = min(low[parent], low[f.id])
			}
			if low[f.id] != index[f.id] {
				continue
			}

			var comp []int
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp = append(comp, top)
				if top == f.id {
					break
				}
			}
			slices.Sort(comp)
			comps = append(comps, comp)
		}
	}
	return comps
}
