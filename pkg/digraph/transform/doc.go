// Package transform derives new hierarchies from existing ones.
//
// # Overview
//
// Every transformation here leaves its input untouched and returns a new
// root vertex together with a [Mapping] linking input vertices to output
// vertices. Mappings compose with [Then], so a chain such as "filter, then
// collapse cycles" still yields one map from the immutable graph to the
// displayed one:
//
//	visible, m1 := transform.VisibleGraph(h.Root(), h.IsVisible, nil)
//	layered, m2 := transform.Layer(visible)
//	m := transform.Then(m1, m2)
//
// # Strongly Connected Components
//
// [StronglyConnectedComponents] runs Tarjan's algorithm with an explicit
// work stack, so very deep graphs do not grow the call stack. [Layer] uses
// it to wrap each multi-vertex component in a [digraph.KindComponent]
// vertex whose inner graph holds the members. The top level of the result
// is acyclic apart from self loops.
//
// # Visibility Filtering
//
// [VisibleGraph] keeps the vertices accepted by a predicate, at every
// nesting level. Edges through dropped vertices are rerouted to the
// nearest kept ancestors, so reachability survives filtering.
// [DropPassThrough] uses it to collapse chains of vertices with a single
// predecessor and a single successor.
//
// # Compression
//
// [Compress] merges the vertices of one level that share a key (for
// example all loops of one method, see [MetaKey]) into group vertices.
//
// # Cycle Breaking
//
// [BreakCycles] removes depth-first back edges in place. The layout engine
// requires acyclic levels, and the inner graph of a component is cyclic by
// construction, so expanded components are laid out from a copy with its
// back edges removed.
package transform
