package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/digraph/transform"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/layout"
	"github.com/matzehuels/foldgraph/pkg/observability"
)

// Runner encapsulates redraws with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner, but not the same
// [digraph.Hierarchical], since hiding mutates it.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// GraphHash returns the content hash of h's immutable graph. The hidden
// set is not part of it.
func GraphHash(h *digraph.Hierarchical) (string, error) {
	data, err := graph.MarshalGraph(h.Graph())
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// =============================================================================
// Redraw
// =============================================================================

// Redraw derives the view of h's visible vertices and lays it out.
//
// h is read but not modified. A cached layout is replayed onto the derived
// hierarchy; a layout that no longer fits it is recomputed.
func (r *Runner) Redraw(ctx context.Context, h *digraph.Hierarchical, view View, opts layout.Options) (*Result, error) {
	if err := view.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view: %w", err)
	}
	graphHash, err := GraphHash(h)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}

	res := &Result{GraphHash: graphHash}
	res.Stats.Vertices = len(h.VisibleVertices())

	start := time.Now()
	root, m, err := derive(h, view)
	if err != nil {
		return nil, err
	}
	res.Stats.DecomposeTime = time.Since(start)
	res.Stats.Components = countKind(root, digraph.KindComponent)
	observability.Engine().OnDecompose(ctx, res.Stats.Vertices, res.Stats.Components, res.Stats.DecomposeTime)

	expand(root, view)
	res.Root, res.Mapping = root, m

	r.Logger.Debug("derived view",
		"vertices", res.Stats.Vertices,
		"components", res.Stats.Components,
		"duration", res.Stats.DecomposeTime)

	hidden := h.Hidden()
	key := r.Keyer.LayoutKey(graphHash, layoutKeyOpts(hidden, view, opts))

	start = time.Now()
	l, hit, err := r.layoutWithCache(ctx, key, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(hidden) > 0 {
		l.Hidden = hidden
	}
	res.Layout = l
	res.CacheHit = hit
	res.Stats.Boxes = len(l.Boxes)
	res.Stats.LayoutTime = time.Since(start)

	r.Logger.Info("computed layout",
		"boxes", res.Stats.Boxes,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	return res, nil
}

func (r *Runner) layoutWithCache(ctx context.Context, key string, root *digraph.Vertex, opts layout.Options) (graph.Layout, bool, error) {
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		l, err := graph.UnmarshalLayout(data)
		if err == nil {
			err = graph.Apply(root, l)
		}
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return l, true, nil
		}
		r.Logger.Warn("recomputing unusable cached layout", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Engine().OnLayoutStart(ctx, len(digraph.Index(root)))
	start := time.Now()
	err := layout.Layout(root, layout.WithOptions(opts))
	observability.Engine().OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	l := graph.ExportLayout(root)
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// derive applies the view's transforms to h in order: visibility and
// pruning, pass-through removal, compression, layering. Synthetic ids come
// from one source so no two steps reuse an id.
func derive(h *digraph.Hierarchical, v View) (*digraph.Vertex, *transform.Mapping, error) {
	pruned, err := prunedSet(h, v.PruneKinds)
	if err != nil {
		return nil, nil, err
	}
	keep := func(x *digraph.Vertex) bool { return !h.IsHidden(x.ID) && !pruned[x.ID] }

	root, m := transform.VisibleGraph(h.Root(), keep, nil)
	if v.DropPassThrough {
		next, step := transform.DropPassThrough(root, nil)
		root, m = next, transform.Then(m, step)
	}

	ids := digraph.NewIDSource(h.Root())
	if v.CompressBy != "" {
		var (
			next  *digraph.Vertex
			step  *transform.Mapping
			group = transform.NewGroupBuilder(ids)
		)
		if v.CompressBy == CompressByKind {
			next, step = transform.Compress(root, transform.KindKey, group, nil)
		} else {
			next, step = transform.Compress(root, transform.MetaKey(v.CompressBy), group, nil)
		}
		root, m = next, transform.Then(m, step)
	}

	// Compression can merge vertices into cycles, so layering comes last.
	next, step := transform.Layer(root, transform.WithIDSource(ids))
	return next, transform.Then(m, step), nil
}

func prunedSet(h *digraph.Hierarchical, kinds []string) (map[int]bool, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	want := make(map[digraph.Kind]bool, len(kinds))
	for _, s := range kinds {
		k, err := digraph.ParseKind(s)
		if err != nil {
			return nil, err
		}
		want[k] = true
	}
	pruned := make(map[int]bool)
	for _, v := range h.VisibleGraph().VerticesToPrune(func(v *digraph.Vertex) bool { return want[v.Kind] }) {
		pruned[v.ID] = true
	}
	return pruned, nil
}

// expand marks the view's vertices expanded and breaks the cycles of their
// inner graphs, recording the removed edges under [transform.MetaBack].
func expand(root *digraph.Vertex, v View) {
	digraph.Walk(root, func(x *digraph.Vertex, depth int) bool {
		if depth == 0 || !x.HasInner() {
			return true
		}
		if v.ExpandAll || slices.Contains(v.Expanded, x.ID) {
			x.Expanded = true
			if back := transform.BreakCycles(x.Inner()); len(back) > 0 {
				x.Meta[transform.MetaBack] = back
			}
		}
		return true
	})
}

func countKind(root *digraph.Vertex, k digraph.Kind) int {
	n := 0
	digraph.Walk(root, func(v *digraph.Vertex, _ int) bool {
		if v.Kind == k {
			n++
		}
		return true
	})
	return n
}

// =============================================================================
// Components
// =============================================================================

// Components returns the strongly connected components of h's visible
// graph, with caching. Components are listed in reverse topological order
// of the condensation and each one's ids are sorted.
func (r *Runner) Components(ctx context.Context, h *digraph.Hierarchical) ([][]int, bool, error) {
	vg := h.VisibleGraph()
	data, err := graph.MarshalGraph(vg)
	if err != nil {
		return nil, false, fmt.Errorf("hash graph: %w", err)
	}
	key := r.Keyer.ComponentsKey(cache.Hash(data))

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var comps [][]int
		if err := json.Unmarshal(cached, &comps); err == nil {
			observability.Cache().OnCacheHit(ctx, "components")
			return comps, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "components")

	start := time.Now()
	comps := transform.StronglyConnectedComponents(vg)
	observability.Engine().OnDecompose(ctx, vg.Len(), len(comps), time.Since(start))

	if out, err := json.Marshal(comps); err == nil {
		if err := r.Cache.Set(ctx, key, out, cache.LayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "components", len(out))
		}
	}
	return comps, false, nil
}
