package digraph

import (
	stderrors "errors"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

var (
	// ErrNilVertex is returned by [Graph.AddVertex] when the vertex is nil.
	ErrNilVertex = stderrors.New("vertex must not be nil")

	// ErrDuplicateVertex is returned by [Graph.AddVertex] when a vertex with
	// the same id is already a member of the graph.
	ErrDuplicateVertex = stderrors.New("duplicate vertex id")

	// ErrUnknownEndpoint is returned by [Graph.AddEdge] when the source or
	// destination is not a member of the graph. The edge is dropped.
	ErrUnknownEndpoint = stderrors.New("edge endpoint is not a member of the graph")

	// ErrNoSource is recorded as a warning by [Graph.Sources] when no vertex
	// has zero in-degree and the lowest-id vertex is used instead. This
	// usually means strongly connected components were not collapsed first.
	ErrNoSource = stderrors.New("graph has no source vertex")

	// ErrUnknownVertex is returned by operations addressing a vertex id that
	// is not a member of the graph.
	ErrUnknownVertex = stderrors.New("unknown vertex")
)

// Edge is a directed connection between two member vertices. At most one
// edge exists per ordered (From, To) pair.
type Edge struct {
	From int      // Source vertex id
	To   int      // Destination vertex id
	Meta Metadata // Arbitrary attributes (never nil after AddEdge)
}

// IsSelfLoop reports whether the edge starts and ends at the same vertex.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// Graph is a directed graph of integer-identified vertices with out- and
// in-adjacency indices.
//
// Malformed input (edges to absent vertices, duplicate vertices) is
// non-fatal: the offending element is dropped, a warning is logged and
// recorded in [Graph.Warnings], and the error is returned to the caller.
//
// The zero value is not usable; use [New]. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	vertices map[int]*Vertex
	out      map[int]map[int]Edge
	in       map[int]map[int]Edge
	owner    *Vertex
	logger   *log.Logger
	warnings []error
}

// Option configures a [Graph].
type Option func(*Graph)

// WithLogger sets the logger used to report dropped input. By default
// warnings are only recorded, not printed.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

var discard = log.New(io.Discard)

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		vertices: make(map[int]*Vertex),
		out:      make(map[int]map[int]Edge),
		in:       make(map[int]map[int]Edge),
		logger:   discard,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Logger returns the logger the graph reports warnings to.
func (g *Graph) Logger() *log.Logger { return g.logger }

// Owner returns the vertex whose inner graph this is, or nil.
func (g *Graph) Owner() *Vertex { return g.owner }

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, row := range g.out {
		n += len(row)
	}
	return n
}

// Warnings returns the non-fatal input errors recorded so far, oldest first.
func (g *Graph) Warnings() []error { return slices.Clone(g.warnings) }

func (g *Graph) warn(err error) {
	g.warnings = append(g.warnings, err)
	g.logger.Warn("graph input dropped", "err", err)
}

// AddVertex adds v to the graph and makes the graph its container.
// Nil vertices and duplicate ids are rejected.
func (g *Graph) AddVertex(v *Vertex) error {
	if v == nil {
		err := errors.Wrap(errors.ErrCodeInvalidVertex, ErrNilVertex, "add vertex")
		g.warn(err)
		return err
	}
	if _, exists := g.vertices[v.ID]; exists {
		err := errors.Wrap(errors.ErrCodeInvalidVertex, ErrDuplicateVertex, "add vertex %d", v.ID)
		g.warn(err)
		return err
	}
	if v.Meta == nil {
		v.Meta = Metadata{}
	}
	g.vertices[v.ID] = v
	g.out[v.ID] = make(map[int]Edge)
	g.in[v.ID] = make(map[int]Edge)
	v.outer = g
	return nil
}

// AddEdge adds e between two member vertices. Adding an edge for an
// existing pair only replaces its metadata. An edge with an absent endpoint
// is dropped and reported.
func (g *Graph) AddEdge(e Edge) error {
	_, okFrom := g.vertices[e.From]
	_, okTo := g.vertices[e.To]
	if !okFrom || !okTo {
		err := errors.Wrap(errors.ErrCodeInvalidEdge, ErrUnknownEndpoint, "edge %d->%d", e.From, e.To)
		g.warn(err)
		return err
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.out[e.From][e.To] = e
	g.in[e.To][e.From] = e
	return nil
}

// Connect adds an edge without metadata between two member vertices.
func (g *Graph) Connect(from, to int) error {
	return g.AddEdge(Edge{From: from, To: to})
}

// RemoveEdge removes the edge from→to if it exists.
func (g *Graph) RemoveEdge(from, to int) {
	if row, ok := g.out[from]; ok {
		delete(row, to)
	}
	if row, ok := g.in[to]; ok {
		delete(row, from)
	}
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to int) bool {
	_, ok := g.out[from][to]
	return ok
}

// Edge returns the edge from→to.
func (g *Graph) Edge(from, to int) (Edge, bool) {
	e, ok := g.out[from][to]
	return e, ok
}

// Has reports whether a vertex with the given id is a member.
func (g *Graph) Has(id int) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertex returns the member vertex with the given id, or nil.
func (g *Graph) Vertex(id int) *Vertex { return g.vertices[id] }

// Vertices returns all member vertices ordered by id.
func (g *Graph) Vertices() []*Vertex {
	out := slices.Collect(maps.Values(g.vertices))
	slices.SortFunc(out, byID)
	return out
}

// IDs returns all member vertex ids in ascending order.
func (g *Graph) IDs() []int {
	return slices.Sorted(maps.Keys(g.vertices))
}

// Edges returns all edges ordered by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	for _, from := range g.IDs() {
		for _, to := range slices.Sorted(maps.Keys(g.out[from])) {
			out = append(out, g.out[from][to])
		}
	}
	return out
}

// OutNeighbors returns the destinations of id's outgoing edges ordered by
// id. Unknown ids yield an empty result.
func (g *Graph) OutNeighbors(id int) []*Vertex { return g.neighbors(g.out[id]) }

// InNeighbors returns the sources of id's incoming edges ordered by id.
// Unknown ids yield an empty result.
func (g *Graph) InNeighbors(id int) []*Vertex { return g.neighbors(g.in[id]) }

// OutEdges returns id's outgoing edges ordered by destination.
func (g *Graph) OutEdges(id int) []Edge { return sortedEdges(g.out[id]) }

// InEdges returns id's incoming edges ordered by source.
func (g *Graph) InEdges(id int) []Edge { return sortedEdges(g.in[id]) }

// OutDegree returns the number of outgoing edges of id, self loops included.
func (g *Graph) OutDegree(id int) int { return len(g.out[id]) }

// InDegree returns the number of incoming edges of id, self loops included.
func (g *Graph) InDegree(id int) int { return len(g.in[id]) }

// HasSelfLoop reports whether id has an edge to itself.
func (g *Graph) HasSelfLoop(id int) bool { return g.HasEdge(id, id) }

func (g *Graph) neighbors(row map[int]Edge) []*Vertex {
	out := make([]*Vertex, 0, len(row))
	for _, id := range slices.Sorted(maps.Keys(row)) {
		out = append(out, g.vertices[id])
	}
	return out
}

func sortedEdges(row map[int]Edge) []Edge {
	out := make([]Edge, 0, len(row))
	for _, id := range slices.Sorted(maps.Keys(row)) {
		out = append(out, row[id])
	}
	return out
}

// Clone returns a deep copy of the graph. Every vertex is a fresh instance
// produced by [Upgrade]; edge metadata maps are copied.
func (g *Graph) Clone() *Graph {
	c := New(WithLogger(g.logger))
	for _, v := range g.Vertices() {
		_ = c.AddVertex(Upgrade(v))
	}
	for _, e := range g.Edges() {
		_ = c.AddEdge(Edge{From: e.From, To: e.To, Meta: maps.Clone(e.Meta)})
	}
	return c
}
