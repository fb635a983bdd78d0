package transform

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/foldgraph/pkg/digraph"
)

func TestCompress_ByMetadata(t *testing.T) {
	vs := []*digraph.Vertex{
		digraph.NewVertex(1, "loop1", digraph.KindLoop),
		digraph.NewVertex(2, "loop2", digraph.KindLoop),
		digraph.NewVertex(3, "main", digraph.KindMethod),
	}
	vs[0].Meta["method"] = "parse"
	vs[1].Meta["method"] = "parse"
	h := digraph.Build(vs, []digraph.Edge{
		{From: 1, To: 2},
		{From: 2, To: 3},
		{From: 1, To: 1},
	})

	root, m := Compress(h.Root(), MetaKey("method"), nil, nil)
	top := root.Inner()

	if top.Len() != 2 {
		t.Fatalf("top level has %d vertices, want 2", top.Len())
	}
	grp := top.Vertex(4)
	if grp == nil || grp.Kind != digraph.KindGroup || grp.Label != "loop1 (2)" {
		t.Fatalf("group = %v", grp)
	}
	// The member self loop surfaces as a group self loop.
	if got := edgePairs(top); got != "[4>3 4>4]" {
		t.Errorf("top edges = %s, want [4>3 4>4]", got)
	}
	if got := edgePairs(grp.Inner()); got != "[1>1 1>2]" {
		t.Errorf("group inner edges = %s, want [1>1 1>2]", got)
	}

	main, ok := m.New(h.Graph().Vertex(3))
	if !ok || main.Outer() != top || main == h.Graph().Vertex(3) {
		t.Errorf("singleton should be a top-level copy, got %v", main)
	}
	loop, _ := m.New(h.Graph().Vertex(1))
	if loop.Outer() != grp.Inner() {
		t.Error("group member should live in the group's inner graph")
	}
}

func TestCompress_CustomBuilders(t *testing.T) {
	h := hierarchy(3, [][2]int{{0, 1}, {1, 2}})
	built := 0
	group := func(members []*digraph.Vertex) *digraph.Vertex {
		built++
		return digraph.NewVertex(100+built, fmt.Sprintf("g%d", len(members)), digraph.KindGroup)
	}
	edge := func(from, to *digraph.Vertex) digraph.Edge {
		return digraph.Edge{From: from.ID, To: to.ID, Meta: digraph.Metadata{"custom": true}}
	}

	root, _ := Compress(h.Root(), func(*digraph.Vertex) int { return 0 }, group, edge)
	if built != 1 || root.Inner().Len() != 1 {
		t.Fatalf("built %d groups, top has %d vertices", built, root.Inner().Len())
	}
	inner := root.Inner().Vertex(101).Inner()
	if e, _ := inner.Edge(0, 1); e.Meta["custom"] != true {
		t.Errorf("inner edge meta = %v", e.Meta)
	}
	if root.Inner().EdgeCount() != 0 {
		t.Errorf("top edges = %s, want none", edgePairs(root.Inner()))
	}
}

func TestCompress_KindKey(t *testing.T) {
	vs := []*digraph.Vertex{
		digraph.NewVertex(0, "m", digraph.KindMethod),
		digraph.NewVertex(1, "l", digraph.KindLoop),
		digraph.NewVertex(2, "l", digraph.KindLoop),
	}
	h := digraph.Build(vs, []digraph.Edge{{From: 0, To: 1}, {From: 0, To: 2}})
	root, _ := Compress(h.Root(), KindKey, nil, nil)
	if got := edgePairs(root.Inner()); got != "[0>3]" {
		t.Errorf("edges = %s, want [0>3]", got)
	}
}

func TestCompress_MemberSelfLoop(t *testing.T) {
	vs := []*digraph.Vertex{
		digraph.NewVertex(0, "a", digraph.KindLoop),
		digraph.NewVertex(1, "b", digraph.KindLoop),
	}
	h := digraph.Build(vs, []digraph.Edge{{From: 0, To: 0}, {From: 0, To: 1}})
	root, _ := Compress(h.Root(), KindKey, nil, nil)

	grp := root.Inner().Vertex(2)
	if grp == nil || grp.Inner() == nil {
		t.Fatalf("group = %v", grp)
	}
	if !root.Inner().HasSelfLoop(2) {
		t.Error("group should carry its member's self loop at the top level")
	}
	if got := edgePairs(grp.Inner()); got != "[0>0 0>1]" {
		t.Errorf("inner edges = %s, want [0>0 0>1]", got)
	}

	// A singleton keeps its self loop once, at the top level.
	single := digraph.Build([]*digraph.Vertex{digraph.NewVertex(0, "a", digraph.KindLoop)}, []digraph.Edge{{From: 0, To: 0}})
	sroot, _ := Compress(single.Root(), KindKey, nil, nil)
	if got := edgePairs(sroot.Inner()); got != "[0>0]" {
		t.Errorf("singleton edges = %s, want [0>0]", got)
	}
	if sroot.Inner().Vertex(0).Inner() != nil {
		t.Error("singleton should not gain an inner graph")
	}
}

func TestMetaKey(t *testing.T) {
	key := MetaKey("method")
	a := digraph.NewVertex(0, "a", digraph.KindPlain)
	b := digraph.NewVertex(1, "b", digraph.KindPlain)
	c := digraph.NewVertex(2, "c", digraph.KindPlain)
	d := digraph.NewVertex(3, "d", digraph.KindPlain)
	c.Meta["method"] = "\x000"
	d.Meta["method"] = "parse"

	tests := []struct {
		name string
		x, y *digraph.Vertex
		same bool
	}{
		{"both missing", a, b, false},
		{"missing vs NUL value", a, c, false},
		{"missing vs value", b, d, false},
		{"same vertex", d, d, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := key(tt.x) == key(tt.y); got != tt.same {
				t.Errorf("key(%d) == key(%d) is %v, want %v", tt.x.ID, tt.y.ID, got, tt.same)
			}
		})
	}
}

func TestCompress_Grouping(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		h := hierarchy(n, randomEdges(t, n))
		keys := rapid.SliceOfN(rapid.IntRange(0, 2), n, n).Draw(t, "keys")
		key := func(v *digraph.Vertex) int { return keys[v.ID] }

		root, m := Compress(h.Root(), key, nil, nil)

		counts := make(map[int]int)
		for _, k := range keys {
			counts[k]++
		}
		for _, u := range h.Graph().Vertices() {
			nu, ok := m.New(u)
			if !ok {
				t.Fatalf("vertex %d not mapped", u.ID)
			}
			if counts[keys[u.ID]] == 1 {
				if nu.Outer() != root.Inner() || nu.Label != u.Label {
					t.Fatalf("singleton %d not preserved at top level", u.ID)
				}
				continue
			}
			for _, w := range h.Graph().Vertices() {
				if keys[w.ID] != keys[u.ID] {
					continue
				}
				nw, _ := m.New(w)
				if nw.Outer() != nu.Outer() || nu.Outer().Owner().Kind != digraph.KindGroup {
					t.Fatalf("%d and %d share a key but not a group", u.ID, w.ID)
				}
			}
		}

		// Grouped members' self loops appear at both levels.
		limit := h.Graph().EdgeCount()
		for _, e := range h.Graph().Edges() {
			if e.IsSelfLoop() && counts[keys[e.From]] > 1 {
				limit++
			}
		}
		edges := 0
		digraph.Walk(root, func(v *digraph.Vertex, _ int) bool {
			if v.Inner() != nil {
				edges += v.Inner().EdgeCount()
			}
			return true
		})
		if edges > limit {
			t.Fatalf("compression created edges: %d > %d", edges, limit)
		}
	})
}
