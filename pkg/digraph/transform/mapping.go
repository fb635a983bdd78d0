package transform

import (
	"maps"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

// EdgeBuilder creates the edge to insert between two vertices of a derived
// graph. Returned edges must connect from.ID to to.ID.
type EdgeBuilder func(from, to *digraph.Vertex) digraph.Edge

// PlainEdge is an [EdgeBuilder] producing edges without metadata.
func PlainEdge(from, to *digraph.Vertex) digraph.Edge {
	return digraph.Edge{From: from.ID, To: to.ID}
}

// buildEdge applies edge, or copies orig's metadata when edge is nil.
func buildEdge(edge EdgeBuilder, from, to *digraph.Vertex, orig digraph.Metadata) digraph.Edge {
	if edge != nil {
		return edge(from, to)
	}
	return digraph.Edge{From: from.ID, To: to.ID, Meta: maps.Clone(orig)}
}

// Mapping is a bidirectional vertex map between an old hierarchy and a new
// hierarchy derived from it.
//
// Mappings hold vertex ids, never vertices, so neither hierarchy is kept
// alive or aliased through the other. Vertex lookups go through per-
// hierarchy indices built on first use. Vertices created by a
// transformation (components, groups) have no old counterpart, and
// vertices dropped by a filter have no new counterpart.
type Mapping struct {
	oldRoot, newRoot *digraph.Vertex
	oldToNew         map[int]int
	newToOld         map[int]int

	oldIdx, newIdx map[int]*digraph.Vertex
}

// NewMapping creates an empty mapping between the hierarchies below
// oldRoot and newRoot.
func NewMapping(oldRoot, newRoot *digraph.Vertex) *Mapping {
	return &Mapping{
		oldRoot:  oldRoot,
		newRoot:  newRoot,
		oldToNew: make(map[int]int),
		newToOld: make(map[int]int),
	}
}

// Add records that old vertex oldID corresponds to new vertex newID.
func (m *Mapping) Add(oldID, newID int) {
	m.oldToNew[oldID] = newID
	m.newToOld[newID] = oldID
	m.oldIdx, m.newIdx = nil, nil
}

// OldRoot returns the root of the old hierarchy.
func (m *Mapping) OldRoot() *digraph.Vertex { return m.oldRoot }

// NewRoot returns the root of the new hierarchy.
func (m *Mapping) NewRoot() *digraph.Vertex { return m.newRoot }

// Len returns the number of mapped pairs.
func (m *Mapping) Len() int { return len(m.oldToNew) }

// NewID returns the id of the new vertex corresponding to old vertex id.
func (m *Mapping) NewID(id int) (int, bool) {
	n, ok := m.oldToNew[id]
	return n, ok
}

// OldID returns the id of the old vertex corresponding to new vertex id.
func (m *Mapping) OldID(id int) (int, bool) {
	o, ok := m.newToOld[id]
	return o, ok
}

// New returns the vertex of the new hierarchy corresponding to old.
func (m *Mapping) New(old *digraph.Vertex) (*digraph.Vertex, bool) {
	if old == nil {
		return nil, false
	}
	id, ok := m.oldToNew[old.ID]
	if !ok {
		return nil, false
	}
	if m.newIdx == nil {
		m.newIdx = digraph.Index(m.newRoot)
	}
	v, ok := m.newIdx[id]
	return v, ok
}

// Old returns the vertex of the old hierarchy corresponding to v.
func (m *Mapping) Old(v *digraph.Vertex) (*digraph.Vertex, bool) {
	if v == nil {
		return nil, false
	}
	id, ok := m.newToOld[v.ID]
	if !ok {
		return nil, false
	}
	if m.oldIdx == nil {
		m.oldIdx = digraph.Index(m.oldRoot)
	}
	o, ok := m.oldIdx[id]
	return o, ok
}

// Then composes a with b, where b's old hierarchy is a's new hierarchy.
// The result maps a's old vertices directly to b's new vertices; pairs that
// are dropped by either step are absent.
func Then(a, b *Mapping) *Mapping {
	m := NewMapping(a.oldRoot, b.newRoot)
	for oldID, midID := range a.oldToNew {
		if newID, ok := b.oldToNew[midID]; ok {
			m.Add(oldID, newID)
		}
	}
	return m
}
