package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

// =============================================================================
// Graph - Analysis Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for analysis graphs.
// Used for input files, API requests, and cache keys.
//
// Vertices may carry a nested graph, which becomes the vertex's inner
// graph. This lets an analysis ship pre-grouped structure (for example
// methods holding their loops).
type Graph struct {
	Vertices []Vertex `json:"vertices" bson:"vertices"`
	Edges    []Edge   `json:"edges" bson:"edges"`
}

// Vertex is the serialized form of [digraph.Vertex].
type Vertex struct {
	ID       int            `json:"id" bson:"id"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"`
	Kind     string         `json:"kind,omitempty" bson:"kind,omitempty"` // "plain" when empty
	Expanded bool           `json:"expanded,omitempty" bson:"expanded,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	Inner    *Graph         `json:"inner,omitempty" bson:"inner,omitempty"`
}

// Edge is a directed edge between two vertex ids of the same level.
type Edge struct {
	From int            `json:"from" bson:"from"`
	To   int            `json:"to" bson:"to"`
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// digraph ↔ Graph Conversion
// =============================================================================

// FromGraph converts a graph and its inner graphs to the serialization
// format. Vertices and edges are ordered by id for deterministic output.
func FromGraph(g *digraph.Graph) Graph {
	out := Graph{
		Vertices: make([]Vertex, 0, g.Len()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
	}
	for _, v := range g.Vertices() {
		vj := Vertex{
			ID:       v.ID,
			Label:    v.Label,
			Expanded: v.Expanded,
			Meta:     cleanMeta(v.Meta),
		}
		if v.Kind != digraph.KindPlain {
			vj.Kind = v.Kind.String()
		}
		if v.Inner() != nil && v.Inner().Len() > 0 {
			inner := FromGraph(v.Inner())
			vj.Inner = &inner
		}
		out.Vertices = append(out.Vertices, vj)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Meta: cleanMeta(e.Meta)})
	}
	return out
}

// FromHierarchical converts the immutable graph of h.
func FromHierarchical(h *digraph.Hierarchical) Graph {
	return FromGraph(h.Graph())
}

// ToGraph converts a serialized graph to a [digraph.Graph].
//
// Invalid vertex ids, labels and kinds are fatal and returned as coded
// errors. Edges with unknown endpoints and duplicate vertices are dropped
// as usual and show up in the graph's warnings.
func ToGraph(gj Graph, opts ...digraph.Option) (*digraph.Graph, error) {
	g := digraph.New(opts...)
	for _, vj := range gj.Vertices {
		if err := errors.ValidateVertexID(vj.ID); err != nil {
			return nil, err
		}
		if err := errors.ValidateLabel(vj.Label); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", vj.ID, err)
		}
		kind, err := digraph.ParseKind(vj.Kind)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", vj.ID, err)
		}
		v := digraph.NewVertex(vj.ID, vj.Label, kind)
		v.Expanded = vj.Expanded
		maps.Copy(v.Meta, vj.Meta)
		if vj.Inner != nil {
			inner, err := ToGraph(*vj.Inner, digraph.WithLogger(g.Logger()))
			if err != nil {
				return nil, fmt.Errorf("inner graph of %d: %w", vj.ID, err)
			}
			_ = v.SetInner(inner)
		}
		_ = g.AddVertex(v)
	}
	for _, ej := range gj.Edges {
		_ = g.AddEdge(digraph.Edge{From: ej.From, To: ej.To, Meta: maps.Clone(ej.Meta)})
	}
	return g, nil
}

// ToHierarchical converts a serialized graph into an immutable
// hierarchical graph.
func ToHierarchical(gj Graph, opts ...digraph.Option) (*digraph.Hierarchical, error) {
	g, err := ToGraph(gj, opts...)
	if err != nil {
		return nil, err
	}
	return digraph.NewHierarchical(g)
}

// cleanMeta returns a copy of m, or nil if m is empty.
func cleanMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
