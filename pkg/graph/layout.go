package graph

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/digraph/transform"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

// =============================================================================
// Layout - Nested Box Geometry
// =============================================================================

// Layout is the serialization format for a laid out visible hierarchy.
//
// Boxes are listed in pre-order (every box after its parent). Only levels
// that are drawn are included: the root level and the inner graphs of
// expanded vertices. Edges are listed per level; Level is the id of the
// vertex owning the level ([digraph.RootID] for the top level).
type Layout struct {
	Width  float64      `json:"width" bson:"width"`
	Height float64      `json:"height" bson:"height"`
	Boxes  []Box        `json:"boxes" bson:"boxes"`
	Edges  []LayoutEdge `json:"edges,omitempty" bson:"edges,omitempty"`
	Hidden []int        `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// Box is one positioned vertex.
type Box struct {
	ID     int    `json:"id" bson:"id"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Kind   string `json:"kind" bson:"kind"`
	Parent *int   `json:"parent,omitempty" bson:"parent,omitempty"` // nil at the top level
	Depth  int    `json:"depth" bson:"depth"`

	// X and Y are relative to the parent box; AbsX and AbsY to the drawing.
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	AbsX   float64 `json:"abs_x" bson:"abs_x"`
	AbsY   float64 `json:"abs_y" bson:"abs_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Expanded bool `json:"expanded,omitempty" bson:"expanded,omitempty"`
	HasInner bool `json:"has_inner,omitempty" bson:"has_inner,omitempty"`
	Members  int  `json:"members,omitempty" bson:"members,omitempty"` // leaf count of synthetic vertices
}

// LayoutEdge is an edge drawn inside one level.
type LayoutEdge struct {
	From    int  `json:"from" bson:"from"`
	To      int  `json:"to" bson:"to"`
	Level   int  `json:"level" bson:"level"`
	Back    bool `json:"back,omitempty" bson:"back,omitempty"`       // removed to lay out a cyclic level
	Spliced bool `json:"spliced,omitempty" bson:"spliced,omitempty"` // stands for a path through hidden vertices
}

// =============================================================================
// Export / Apply
// =============================================================================

// ExportLayout captures the geometry of a laid out hierarchy.
//
// Back edges recorded on a vertex under [transform.MetaBack] (see
// [transform.BreakCycles]) are exported with Back set.
func ExportLayout(root *digraph.Vertex) Layout {
	l := Layout{Width: root.Width, Height: root.Height}

	type item struct {
		v          *digraph.Vertex
		parent     *int
		depth      int
		absX, absY float64
	}
	var stack []item
	push := func(owner *digraph.Vertex, parent *int, depth int, absX, absY float64) {
		g := owner.Inner()
		if g == nil {
			return
		}
		vs := g.Vertices()
		for i := len(vs) - 1; i >= 0; i-- {
			stack = append(stack, item{vs[i], parent, depth, absX, absY})
		}
		l.Edges = append(l.Edges, levelEdges(owner)...)
	}
	push(root, nil, 0, root.X, root.Y)

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := it.v
		b := Box{
			ID:       v.ID,
			Label:    v.Label,
			Kind:     v.Kind.String(),
			Parent:   it.parent,
			Depth:    it.depth,
			X:        v.X,
			Y:        v.Y,
			AbsX:     it.absX + v.X,
			AbsY:     it.absY + v.Y,
			Width:    v.Width,
			Height:   v.Height,
			Expanded: v.Expanded,
			HasInner: v.HasInner(),
		}
		if v.Kind.IsSynthetic() {
			b.Members = len(v.Leaves())
		}
		l.Boxes = append(l.Boxes, b)
		if v.Expanded && v.HasInner() {
			id := v.ID
			push(v, &id, it.depth+1, b.AbsX, b.AbsY)
		}
	}
	return l
}

func levelEdges(owner *digraph.Vertex) []LayoutEdge {
	var out []LayoutEdge
	for _, e := range owner.Inner().Edges() {
		out = append(out, LayoutEdge{
			From:    e.From,
			To:      e.To,
			Level:   owner.ID,
			Spliced: e.Meta[digraph.MetaSpliced] == true,
		})
	}
	if back, ok := owner.Meta[transform.MetaBack].([]digraph.Edge); ok {
		for _, e := range back {
			out = append(out, LayoutEdge{From: e.From, To: e.To, Level: owner.ID, Back: true})
		}
	}
	return out
}

// Apply copies the geometry of l onto the matching vertices below root.
// It is used to restore a cached layout. Every drawn vertex must have a
// box.
func Apply(root *digraph.Vertex, l Layout) error {
	boxes := make(map[int]Box, len(l.Boxes))
	for _, b := range l.Boxes {
		boxes[b.ID] = b
	}
	root.Width, root.Height = l.Width, l.Height

	var missing []int
	digraph.Walk(root, func(v *digraph.Vertex, depth int) bool {
		if depth == 0 {
			return true
		}
		b, ok := boxes[v.ID]
		if !ok {
			missing = append(missing, v.ID)
			return false
		}
		v.X, v.Y, v.Width, v.Height = b.X, b.Y, b.Width, b.Height
		return v.Expanded
	})
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "layout has no boxes for vertices %v", missing)
	}
	if len(l.Boxes) > 0 {
		root.Y = l.Boxes[0].AbsY - l.Boxes[0].Y
		root.X = l.Boxes[0].AbsX - l.Boxes[0].X
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every parent reference must name a box listed before it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	seen := make(map[int]bool, len(l.Boxes))
	for _, b := range l.Boxes {
		if b.Parent != nil && !seen[*b.Parent] {
			return Layout{}, errors.New(errors.ErrCodeInvalidFormat,
				"box %d references unknown parent %d", b.ID, *b.Parent)
		}
		seen[b.ID] = true
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
