package digraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

// RootID is the id of the synthetic root vertex of a [Hierarchical] graph.
// Input vertex ids are non-negative, so it never collides with them.
const RootID = -1

// MetaSpliced marks visible edges synthesized by [Hierarchical.Hide].
const MetaSpliced = "spliced"

// Hierarchical is an immutable graph rooted at a synthetic [KindRoot]
// vertex, plus a mutable "visible" adjacency overlay.
//
// The immutable graph is the root's inner graph and is never modified after
// construction. Hiding a vertex removes it from the overlay and splices its
// visible in-neighbours directly to its visible out-neighbours, so
// reachability among the remaining vertices is preserved. Unhiding rebuilds
// the overlay from the immutable adjacency, so restoration does not depend
// on the order of earlier operations.
type Hierarchical struct {
	root   *Vertex
	hidden map[int]bool
	visOut map[int]map[int]bool
	visIn  map[int]map[int]bool
}

// NewHierarchical wraps g under a fresh root vertex. It fails if g is
// already the inner graph of another vertex.
func NewHierarchical(g *Graph) (*Hierarchical, error) {
	root := NewVertex(RootID, "root", KindRoot)
	if err := root.SetInner(g); err != nil {
		return nil, err
	}
	h := &Hierarchical{root: root, hidden: make(map[int]bool)}
	h.reset()
	return h, nil
}

// Build creates the immutable hierarchical graph from analysis vertices and
// edges. Nil or duplicate vertices and edges with unknown endpoints are
// dropped; the reasons are available from Graph().Warnings().
func Build(vertices []*Vertex, edges []Edge, opts ...Option) *Hierarchical {
	g := New(opts...)
	for _, v := range vertices {
		_ = g.AddVertex(v)
	}
	for _, e := range edges {
		_ = g.AddEdge(e)
	}
	h, _ := NewHierarchical(g)
	return h
}

// Root returns the synthetic root vertex.
func (h *Hierarchical) Root() *Vertex { return h.root }

// Graph returns the immutable graph.
func (h *Hierarchical) Graph() *Graph { return h.root.inner }

func (h *Hierarchical) reset() {
	g := h.root.inner
	h.visOut = make(map[int]map[int]bool, g.Len())
	h.visIn = make(map[int]map[int]bool, g.Len())
	for id := range g.vertices {
		h.visOut[id] = make(map[int]bool, len(g.out[id]))
		h.visIn[id] = make(map[int]bool, len(g.in[id]))
	}
	for from, row := range g.out {
		for to := range row {
			h.visOut[from][to] = true
			h.visIn[to][from] = true
		}
	}
}

// Hide removes id from the visible overlay, connecting each visible
// in-neighbour to each visible out-neighbour. Self loops are never
// synthesized. Hiding an already hidden vertex is a no-op.
func (h *Hierarchical) Hide(id int) error {
	if !h.Graph().Has(id) {
		return errors.Wrap(errors.ErrCodeVertexNotFound, ErrUnknownVertex, "hide %d", id)
	}
	if h.hidden[id] {
		return nil
	}
	h.hidden[id] = true
	h.splice(id)
	return nil
}

func (h *Hierarchical) splice(id int) {
	ins, outs := h.visIn[id], h.visOut[id]
	for u := range ins {
		if u == id {
			continue
		}
		for w := range outs {
			if w == id || w == u {
				continue
			}
			h.visOut[u][w] = true
			h.visIn[w][u] = true
		}
	}
	for u := range ins {
		delete(h.visOut[u], id)
	}
	for w := range outs {
		delete(h.visIn[w], id)
	}
	delete(h.visOut, id)
	delete(h.visIn, id)
}

// Unhide makes id visible again. The overlay is rebuilt from the immutable
// adjacency and every vertex that is still hidden is spliced out again in
// ascending id order. Unhiding a visible vertex is a no-op.
func (h *Hierarchical) Unhide(id int) error {
	if !h.Graph().Has(id) {
		return errors.Wrap(errors.ErrCodeVertexNotFound, ErrUnknownVertex, "unhide %d", id)
	}
	if !h.hidden[id] {
		return nil
	}
	delete(h.hidden, id)
	h.reset()
	for _, other := range slices.Sorted(maps.Keys(h.hidden)) {
		h.splice(other)
	}
	return nil
}

// UnhideAll restores the overlay to an exact copy of the immutable
// adjacency.
func (h *Hierarchical) UnhideAll() {
	clear(h.hidden)
	h.reset()
}

// IsHidden reports whether id is currently hidden.
func (h *Hierarchical) IsHidden(id int) bool { return h.hidden[id] }

// IsVisible reports whether v is not hidden. It is suitable as the keep
// predicate of a visibility filter.
func (h *Hierarchical) IsVisible(v *Vertex) bool { return !h.hidden[v.ID] }

// Hidden returns the hidden vertex ids in ascending order.
func (h *Hierarchical) Hidden() []int { return slices.Sorted(maps.Keys(h.hidden)) }

// VisibleVertices returns the vertices of the immutable graph that are not
// hidden, ordered by id.
func (h *Hierarchical) VisibleVertices() []*Vertex {
	var out []*Vertex
	for _, v := range h.Graph().Vertices() {
		if !h.hidden[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

// VisibleOutNeighbors returns id's out-neighbours in the overlay, ordered
// by id. Hidden or unknown ids yield an empty result.
func (h *Hierarchical) VisibleOutNeighbors(id int) []*Vertex {
	return h.overlayNeighbors(h.visOut[id])
}

// VisibleInNeighbors returns id's in-neighbours in the overlay, ordered by
// id.
func (h *Hierarchical) VisibleInNeighbors(id int) []*Vertex {
	return h.overlayNeighbors(h.visIn[id])
}

func (h *Hierarchical) overlayNeighbors(row map[int]bool) []*Vertex {
	out := make([]*Vertex, 0, len(row))
	for _, id := range slices.Sorted(maps.Keys(row)) {
		out = append(out, h.Graph().Vertex(id))
	}
	return out
}

// VisibleEdges returns the overlay edges ordered by (From, To). Edges that
// exist in the immutable graph carry its metadata; spliced edges carry
// [MetaSpliced].
func (h *Hierarchical) VisibleEdges() []Edge {
	g := h.Graph()
	var out []Edge
	for _, from := range slices.Sorted(maps.Keys(h.visOut)) {
		for _, to := range slices.Sorted(maps.Keys(h.visOut[from])) {
			if e, ok := g.Edge(from, to); ok {
				out = append(out, e)
				continue
			}
			out = append(out, Edge{From: from, To: to, Meta: Metadata{MetaSpliced: true}})
		}
	}
	return out
}

// VisibleGraph materializes the overlay as a new flat graph of vertex
// copies.
func (h *Hierarchical) VisibleGraph() *Graph {
	g := New(WithLogger(h.Graph().logger))
	for _, v := range h.VisibleVertices() {
		_ = g.AddVertex(v.Copy())
	}
	for _, e := range h.VisibleEdges() {
		_ = g.AddEdge(Edge{From: e.From, To: e.To, Meta: maps.Clone(e.Meta)})
	}
	return g
}
