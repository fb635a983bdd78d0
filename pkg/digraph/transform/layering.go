package transform

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

// MetaMembers is the metadata key holding the member count of component
// and group vertices.
const MetaMembers = "members"

// LayerOption configures [Layer].
type LayerOption func(*layerConfig)

type layerConfig struct {
	ids   *digraph.IDSource
	label func(id int) string
}

// WithIDSource makes [Layer] allocate component ids from ids instead of a
// source derived from the input hierarchy. Use it when several derived
// hierarchies must not reuse each other's synthetic ids.
func WithIDSource(ids *digraph.IDSource) LayerOption {
	return func(c *layerConfig) { c.ids = ids }
}

// WithComponentLabel sets the label function for component vertices. The
// default labels a component "SCC-<id>".
func WithComponentLabel(fn func(id int) string) LayerOption {
	return func(c *layerConfig) { c.label = fn }
}

// Layer collapses every strongly connected component of root's inner graph
// into a single vertex, producing a new root whose inner graph is acyclic
// apart from self loops on singleton vertices.
//
// # Construction
//
// Components with more than one member become a [digraph.KindComponent]
// vertex whose inner graph holds upgraded copies of the members and the
// edges among them. Singleton components become an upgraded copy of the
// vertex at the top level. Every original edge is then placed exactly once:
// inside the component when both endpoints share one, otherwise between
// the two enclosing top-level vertices. Parallel edges produced this way
// collapse into one.
//
// Component vertices are created in ascending order of their smallest
// member id, so ids and labels are stable across runs.
//
// # Idempotence
//
// On an acyclic level every component is a singleton and the result is a
// structural copy of the input.
//
// The returned [Mapping] maps every input vertex to its copy. Component
// vertices have no old counterpart; use [digraph.Vertex.Leaves] to expand
// them to their members.
func Layer(root *digraph.Vertex, opts ...LayerOption) (*digraph.Vertex, *Mapping) {
	cfg := layerConfig{label: func(id int) string { return fmt.Sprintf("SCC-%d", id) }}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ids == nil {
		cfg.ids = digraph.NewIDSource(root)
	}

	g := root.Inner()
	if g == nil {
		g = digraph.New()
	}
	newRoot := root.Copy()
	top := newRoot.EnsureInner(digraph.WithLogger(g.Logger()))
	m := NewMapping(root, newRoot)
	m.Add(root.ID, newRoot.ID)

	comps := StronglyConnectedComponents(g)
	slices.SortFunc(comps, func(a, b []int) int { return cmp.Compare(a[0], b[0]) })

	copies := make(map[int]*digraph.Vertex, g.Len())
	enclosing := make(map[int]*digraph.Vertex, g.Len())

	for _, comp := range comps {
		if len(comp) == 1 {
			c := digraph.Upgrade(g.Vertex(comp[0]))
			_ = top.AddVertex(c)
			copies[c.ID] = c
			enclosing[c.ID] = c
			m.Add(c.ID, c.ID)
			continue
		}

		id := cfg.ids.Next()
		cv := digraph.NewVertex(id, cfg.label(id), digraph.KindComponent)
		cv.Meta[MetaMembers] = len(comp)
		inner := cv.EnsureInner(digraph.WithLogger(g.Logger()))
		for _, member := range comp {
			c := digraph.Upgrade(g.Vertex(member))
			_ = inner.AddVertex(c)
			copies[c.ID] = c
			enclosing[c.ID] = cv
			m.Add(c.ID, c.ID)
		}
		_ = top.AddVertex(cv)
	}

	for _, e := range g.Edges() {
		from, to := enclosing[e.From], enclosing[e.To]
		switch {
		case from != to:
			_ = top.AddEdge(digraph.Edge{From: from.ID, To: to.ID, Meta: maps.Clone(e.Meta)})
		case from == copies[e.From]:
			// self loop on a singleton
			_ = top.AddEdge(digraph.Edge{From: from.ID, To: to.ID, Meta: maps.Clone(e.Meta)})
		default:
			_ = from.Inner().AddEdge(digraph.Edge{From: e.From, To: e.To, Meta: maps.Clone(e.Meta)})
		}
	}
	return newRoot, m
}

// Decompose builds the layered hierarchy of h's immutable graph. It is the
// entry point used when no visibility filter precedes layering.
func Decompose(h *digraph.Hierarchical, opts ...LayerOption) (*digraph.Vertex, *Mapping) {
	return Layer(h.Root(), opts...)
}
