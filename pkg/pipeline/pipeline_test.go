package pipeline

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/layout"
)

// cyclic builds A -> B -> C -> A plus A -> D.
func cyclic(dKind digraph.Kind) *digraph.Hierarchical {
	return digraph.Build(
		[]*digraph.Vertex{
			digraph.NewVertex(0, "A", digraph.KindPlain),
			digraph.NewVertex(1, "B", digraph.KindPlain),
			digraph.NewVertex(2, "C", digraph.KindPlain),
			digraph.NewVertex(3, "D", dKind),
		},
		[]digraph.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 0}, {From: 0, To: 3}},
	)
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(io.Discard))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func topIDs(res *Result) []int {
	return res.Root.Inner().IDs()
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestRenderOptions(t *testing.T) {
	var o RenderOptions
	o.SetDefaults()
	if o.Format != FormatSVG || o.Renderer != RendererBoxes {
		t.Errorf("defaults = %+v", o)
	}
	if err := (RenderOptions{Format: FormatSVG, Renderer: "ascii"}).Validate(); err == nil {
		t.Error("unknown renderer should fail")
	}
	if err := (RenderOptions{Format: FormatDOT, Renderer: "ascii"}).Validate(); err != nil {
		t.Errorf("renderer is ignored for dot: %v", err)
	}
}

func TestRedraw(t *testing.T) {
	tests := []struct {
		name       string
		hide       []int
		view       View
		wantTop    []int
		wantComps  int
		wantBoxes  int
		wantHidden []int
	}{
		{"collapsed component", nil, View{}, []int{3, 4}, 1, 2, nil},
		{"expanded component", nil, View{Expanded: []int{4}}, []int{3, 4}, 1, 5, nil},
		{"expand all", nil, View{ExpandAll: true}, []int{3, 4}, 1, 5, nil},
		{"hidden vertex keeps cycle", []int{1}, View{}, []int{3, 4}, 1, 2, []int{1}},
		{"hidden vertex splices cycle", []int{2}, View{}, []int{3, 4}, 1, 2, []int{2}},
		{"hidden cycle tail", []int{1, 2}, View{}, []int{0, 3}, 0, 2, []int{1, 2}},
		{"pruned loop kind", nil, View{PruneKinds: []string{"loop"}}, []int{4}, 1, 1, nil},
		{"compressed by kind", nil, View{CompressBy: CompressByKind}, []int{3, 4}, 0, 2, nil},
		{"pass-through keeps cycle", nil, View{DropPassThrough: true}, []int{3, 4}, 1, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := cyclic(digraph.KindLoop)
			for _, id := range tt.hide {
				if err := h.Hide(id); err != nil {
					t.Fatal(err)
				}
			}
			res, err := testRunner(t).Redraw(context.Background(), h, tt.view, layout.DefaultOptions())
			if err != nil {
				t.Fatalf("Redraw() error: %v", err)
			}
			if got := topIDs(res); !slices.Equal(got, tt.wantTop) {
				t.Errorf("top ids = %v, want %v", got, tt.wantTop)
			}
			if res.Stats.Components != tt.wantComps {
				t.Errorf("Components = %d, want %d", res.Stats.Components, tt.wantComps)
			}
			if len(res.Layout.Boxes) != tt.wantBoxes {
				t.Errorf("boxes = %d, want %d", len(res.Layout.Boxes), tt.wantBoxes)
			}
			if !slices.Equal(res.Layout.Hidden, tt.wantHidden) {
				t.Errorf("Layout.Hidden = %v, want %v", res.Layout.Hidden, tt.wantHidden)
			}
			if res.CacheHit {
				t.Error("first redraw should miss the cache")
			}
		})
	}
}

func TestRedraw_DoesNotMutateInput(t *testing.T) {
	h := cyclic(digraph.KindPlain)
	_ = h.Hide(3)
	before := h.Graph().Edges()

	if _, err := testRunner(t).Redraw(context.Background(), h, View{ExpandAll: true}, layout.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if !slices.EqualFunc(h.Graph().Edges(), before, func(a, b digraph.Edge) bool { return a.From == b.From && a.To == b.To }) {
		t.Error("Redraw() changed the input graph")
	}
	if !h.IsHidden(3) {
		t.Error("Redraw() changed the hidden set")
	}
}

func TestRedraw_BackEdges(t *testing.T) {
	res, err := testRunner(t).Redraw(context.Background(), cyclic(digraph.KindPlain), View{ExpandAll: true}, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var back []graph.LayoutEdge
	for _, e := range res.Layout.Edges {
		if e.Back {
			back = append(back, e)
		}
	}
	if len(back) != 1 || back[0].From != 2 || back[0].To != 0 || back[0].Level != 4 {
		t.Errorf("back edges = %+v, want [2->0 at level 4]", back)
	}
}

func TestRedraw_Mapping(t *testing.T) {
	res, err := testRunner(t).Redraw(context.Background(), cyclic(digraph.KindPlain), View{}, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for old := range 4 {
		if id, ok := res.Mapping.NewID(old); !ok || id != old {
			t.Errorf("NewID(%d) = %d, %v", old, id, ok)
		}
	}
	if _, ok := res.Mapping.OldID(4); ok {
		t.Error("component vertex should have no old counterpart")
	}
}

func TestRedraw_Cached(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t)
	view := View{Expanded: []int{4}}

	first, err := r.Redraw(ctx, cyclic(digraph.KindPlain), view, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Redraw(ctx, cyclic(digraph.KindPlain), view, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second redraw should hit the cache")
	}
	if first.GraphHash != second.GraphHash {
		t.Errorf("GraphHash differs: %s vs %s", first.GraphHash, second.GraphHash)
	}
	a, b := digraph.Index(first.Root), digraph.Index(second.Root)
	for id, v := range a {
		w := b[id]
		if v.X != w.X || v.Y != w.Y || v.Width != w.Width || v.Height != w.Height {
			t.Errorf("vertex %d: geometry %v,%v %vx%v vs %v,%v %vx%v", id, v.X, v.Y, v.Width, v.Height, w.X, w.Y, w.Width, w.Height)
		}
	}

	// A different hidden set is a different key.
	h := cyclic(digraph.KindPlain)
	_ = h.Hide(3)
	third, err := r.Redraw(ctx, h, view, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("changed hidden set should miss the cache")
	}
}

func TestRedraw_InvalidView(t *testing.T) {
	_, err := testRunner(t).Redraw(context.Background(), cyclic(digraph.KindPlain), View{PruneKinds: []string{"widget"}}, layout.DefaultOptions())
	if errors.GetCode(err) != errors.ErrCodeInvalidKind {
		t.Errorf("Redraw() error = %v, want INVALID_KIND", err)
	}
}

func TestComponents(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t)

	comps, hit, err := r.Components(ctx, cyclic(digraph.KindPlain))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{3}, {0, 1, 2}}
	if hit || !slices.EqualFunc(comps, want, slices.Equal[[]int]) {
		t.Errorf("Components() = %v, %v, want %v, false", comps, hit, want)
	}

	comps, hit, err = r.Components(ctx, cyclic(digraph.KindPlain))
	if err != nil || !hit || !slices.EqualFunc(comps, want, slices.Equal[[]int]) {
		t.Errorf("cached Components() = %v, %v, %v", comps, hit, err)
	}

	h := cyclic(digraph.KindPlain)
	_ = h.Hide(1)
	comps, _, _ = r.Components(ctx, h)
	want = [][]int{{3}, {0, 2}}
	if !slices.EqualFunc(comps, want, slices.Equal[[]int]) {
		t.Errorf("Components(hidden 1) = %v, want %v", comps, want)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t)
	res, err := r.Redraw(ctx, cyclic(digraph.KindPlain), View{ExpandAll: true}, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	data, _, err := r.Render(ctx, res, RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := graph.MarshalLayout(res.Layout)
	if !bytes.Equal(data, want) {
		t.Error("json artifact should be the marshalled layout")
	}

	dot, _, err := r.Render(ctx, res, RenderOptions{Format: FormatDOT})
	if err != nil || !strings.HasPrefix(string(dot), "digraph G {") || !strings.Contains(string(dot), `subgraph "cluster_4"`) {
		t.Errorf("dot artifact = %q, %v", dot, err)
	}

	svg, hit, err := r.Render(ctx, res, RenderOptions{Edges: true})
	if err != nil || hit || !strings.HasPrefix(string(svg), "<svg") {
		t.Fatalf("svg artifact = %q, %v, %v", svg, hit, err)
	}
	again, hit, err := r.Render(ctx, res, RenderOptions{Edges: true})
	if err != nil || !hit || !bytes.Equal(again, svg) {
		t.Errorf("cached svg: hit=%v err=%v", hit, err)
	}

	if _, _, err := r.Render(ctx, res, RenderOptions{Format: "png"}); err == nil {
		t.Error("png should be rejected")
	}
}
