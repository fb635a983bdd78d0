package digraph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

// Metadata stores arbitrary domain attributes attached to vertices and
// edges, such as the method signature of a method vertex or the statement
// index of a loop. Metadata maps are never nil after a vertex or edge is
// added to a graph.
type Metadata map[string]any

// Kind is the closed set of vertex variants.
type Kind int

const (
	// KindPlain is an ordinary analysis vertex with no special role.
	KindPlain Kind = iota
	// KindMethod represents a method or compilation unit.
	KindMethod
	// KindLoop represents a loop inside a method.
	KindLoop
	// KindComponent wraps the members of a strongly connected component.
	// Its inner graph holds the members and the edges among them.
	KindComponent
	// KindRoot is the synthetic vertex whose inner graph is a whole level.
	KindRoot
	// KindGroup is a synthetic vertex produced by compression.
	KindGroup
)

var kindNames = [...]string{
	KindPlain:     "plain",
	KindMethod:    "method",
	KindLoop:      "loop",
	KindComponent: "component",
	KindRoot:      "root",
	KindGroup:     "group",
}

// String returns the lower-case name used in the wire format.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsSynthetic reports whether vertices of this kind are created by the
// engine rather than supplied by the analysis.
func (k Kind) IsSynthetic() bool {
	return k == KindComponent || k == KindRoot || k == KindGroup
}

// ParseKind converts a wire-format kind name into a [Kind].
// The empty string maps to [KindPlain].
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindPlain, nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return KindPlain, errors.New(errors.ErrCodeInvalidKind, "unknown vertex kind %q", s)
}

// Vertex is a node of a hierarchical graph.
//
// A vertex may own an inner graph holding nested structure; the inner graph
// is exclusively owned and cannot be attached to a second vertex. The
// containing graph is tracked as a non-owning back-reference used for
// neighbour lookups.
//
// Geometry fields are written by the layout engine. X and Y are relative to
// the top-left corner of the enclosing vertex's box.
type Vertex struct {
	ID    int      // Unique within one hierarchy, never reused
	Label string   // Display label
	Kind  Kind     // Variant tag
	Meta  Metadata // Domain attributes (never nil after AddVertex)

	// Expanded marks a vertex whose inner graph is laid out and drawn.
	// Collapsed vertices are sized with the default box only.
	Expanded bool

	X, Y, Width, Height float64

	inner *Graph
	outer *Graph
}

// NewVertex creates a vertex with empty metadata and no inner graph.
func NewVertex(id int, label string, kind Kind) *Vertex {
	return &Vertex{ID: id, Label: label, Kind: kind, Meta: Metadata{}}
}

// String returns "label#id", or "#id" for unlabeled vertices.
func (v *Vertex) String() string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", v.Label, v.ID)
}

// Inner returns the vertex's inner graph, or nil for a leaf.
func (v *Vertex) Inner() *Graph { return v.inner }

// HasInner reports whether the vertex has a non-empty inner graph.
func (v *Vertex) HasInner() bool { return v.inner != nil && v.inner.Len() > 0 }

// Outer returns the graph currently containing the vertex, or nil.
func (v *Vertex) Outer() *Graph { return v.outer }

// SetInner attaches g as the vertex's inner graph. Any previous inner graph
// is detached. Passing nil turns the vertex into a leaf.
//
// Returns an error with code [errors.ErrCodeInnerOwned] if g is already
// owned by a different vertex.
func (v *Vertex) SetInner(g *Graph) error {
	if g != nil && g.owner != nil && g.owner != v {
		return errors.New(errors.ErrCodeInnerOwned,
			"inner graph of %s cannot be attached to %s", g.owner, v)
	}
	if v.inner != nil && v.inner != g {
		v.inner.owner = nil
	}
	v.inner = g
	if g != nil {
		g.owner = v
	}
	return nil
}

// EnsureInner returns the vertex's inner graph, creating an empty one that
// shares opts if the vertex is a leaf.
func (v *Vertex) EnsureInner(opts ...Option) *Graph {
	if v.inner == nil {
		g := New(opts...)
		g.owner = v
		v.inner = g
	}
	return v.inner
}

// Copy returns a structurally fresh vertex with the same identity
// attributes (id, label, kind, metadata and expansion flag). The copy has no
// inner graph, no containing graph and zero geometry.
func (v *Vertex) Copy() *Vertex {
	return &Vertex{
		ID:       v.ID,
		Label:    v.Label,
		Kind:     v.Kind,
		Meta:     maps.Clone(v.Meta),
		Expanded: v.Expanded,
	}
}

// Upgrade returns a fresh instance of v suitable for insertion at a
// different nesting level. Unlike [Vertex.Copy], the inner graph (if any)
// is deep-copied so that no mutable structure is shared between levels.
func Upgrade(v *Vertex) *Vertex {
	c := v.Copy()
	if c.Meta == nil {
		c.Meta = Metadata{}
	}
	if v.inner != nil {
		_ = c.SetInner(v.inner.Clone())
	}
	return c
}

// Leaves expands v to the innermost vertices it stands for: v itself if it
// has no inner graph, otherwise the leaves of every inner vertex. The
// result is ordered by id.
func (v *Vertex) Leaves() []*Vertex {
	var out []*Vertex
	stack := []*Vertex{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !cur.HasInner() {
			out = append(out, cur)
			continue
		}
		stack = append(stack, cur.inner.Vertices()...)
	}
	slices.SortFunc(out, byID)
	return out
}

func byID(a, b *Vertex) int { return a.ID - b.ID }
