package transform

import (
	"fmt"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

// GroupBuilder creates the vertex standing for a group of two or more
// members during [Compress]. The returned vertex must have a fresh id and
// no inner graph; Compress fills the inner graph.
type GroupBuilder func(members []*digraph.Vertex) *digraph.Vertex

// NewGroupBuilder returns a [GroupBuilder] creating [digraph.KindGroup]
// vertices with ids from ids, labelled "<first member> (<count>)".
func NewGroupBuilder(ids *digraph.IDSource) GroupBuilder {
	return func(members []*digraph.Vertex) *digraph.Vertex {
		v := digraph.NewVertex(ids.Next(), fmt.Sprintf("%s (%d)", members[0].Label, len(members)), digraph.KindGroup)
		v.Meta[MetaMembers] = len(members)
		return v
	}
}

// AttrKey is the compression key produced by [MetaKey]. Vertices lacking
// the attribute have Missing set and their own ID, so they never share a
// key with each other or with any attribute value.
type AttrKey struct {
	Value   string
	Missing bool
	ID      int
}

// MetaKey returns a compression key function grouping vertices by the
// string form of metadata attribute attr. Vertices without the attribute
// stay ungrouped.
func MetaKey(attr string) func(*digraph.Vertex) AttrKey {
	return func(v *digraph.Vertex) AttrKey {
		val, ok := v.Meta[attr]
		if !ok {
			return AttrKey{Missing: true, ID: v.ID}
		}
		return AttrKey{Value: fmt.Sprint(val)}
	}
}

// KindKey groups vertices by kind.
func KindKey(v *digraph.Vertex) digraph.Kind { return v.Kind }

// Compress merges the vertices of root's inner graph that share a key.
//
// Only one level is considered; vertices of different nesting levels are
// never combined. Singleton groups are preserved as upgraded copies.
// Larger groups become the vertex built by group, whose inner graph
// receives copies of the members and the edges between them. Groups are
// created in ascending order of their smallest member id.
//
// Edges between different groups, and self loops, are added at the top
// level between the enclosing vertices. Other edges within one group go to
// the group's inner graph, and a member's self loop is kept there too.
//
// A nil group uses [NewGroupBuilder] with ids unused below root. A nil
// edge copies edge metadata.
func Compress[K comparable](root *digraph.Vertex, key func(*digraph.Vertex) K, group GroupBuilder, edge EdgeBuilder) (*digraph.Vertex, *Mapping) {
	if group == nil {
		group = NewGroupBuilder(digraph.NewIDSource(root))
	}
	g := root.Inner()
	if g == nil {
		g = digraph.New()
	}
	newRoot := root.Copy()
	top := newRoot.EnsureInner(digraph.WithLogger(g.Logger()))
	m := NewMapping(root, newRoot)
	m.Add(root.ID, newRoot.ID)

	var order []K
	groups := make(map[K][]*digraph.Vertex)
	for _, v := range g.Vertices() {
		k := key(v)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], v)
	}

	copies := make(map[int]*digraph.Vertex, g.Len())
	enclosing := make(map[int]*digraph.Vertex, g.Len())
	for _, k := range order {
		members := groups[k]
		if len(members) == 1 {
			c := digraph.Upgrade(members[0])
			_ = top.AddVertex(c)
			copies[c.ID] = c
			enclosing[c.ID] = c
			m.Add(c.ID, c.ID)
			continue
		}

		mc := make([]*digraph.Vertex, len(members))
		for i, v := range members {
			mc[i] = digraph.Upgrade(v)
		}
		gv := group(mc)
		inner := gv.EnsureInner(digraph.WithLogger(g.Logger()))
		for _, c := range mc {
			_ = inner.AddVertex(c)
			copies[c.ID] = c
			enclosing[c.ID] = gv
			m.Add(c.ID, c.ID)
		}
		_ = top.AddVertex(gv)
	}

	for _, e := range g.Edges() {
		from, to := enclosing[e.From], enclosing[e.To]
		if from != to || e.IsSelfLoop() {
			_ = top.AddEdge(buildEdge(edge, from, to, e.Meta))
		}
		if from == to && from != copies[e.From] {
			_ = from.Inner().AddEdge(buildEdge(edge, copies[e.From], copies[e.To], e.Meta))
		}
	}
	return newRoot, m
}
