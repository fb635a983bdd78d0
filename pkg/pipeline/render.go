package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/observability"
	"github.com/matzehuels/foldgraph/pkg/render/boxes"
	"github.com/matzehuels/foldgraph/pkg/render/nodelink"
)

// Render produces one artifact of a redraw, with caching. It returns the
// artifact and whether it came from cache.
func (r *Runner) Render(ctx context.Context, res *Result, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(res.Layout)
	if err != nil {
		return nil, false, fmt.Errorf("marshal layout: %w", err)
	}
	if opts.Format == FormatJSON {
		return layoutData, false, nil
	}

	key := r.Keyer.ArtifactKey(cache.Hash(layoutData), opts.artifactKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	data, err := RenderArtifact(ctx, res, opts)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	r.Logger.Info("rendered output",
		"format", opts.Format,
		"renderer", opts.Renderer,
		"bytes", len(data),
		"duration", time.Since(start))

	return data, false, nil
}

// RenderArtifact produces one artifact of a redraw without caching.
func RenderArtifact(ctx context.Context, res *Result, opts RenderOptions) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return graph.MarshalLayout(res.Layout)
	case FormatDOT:
		return []byte(nodelink.ToDOT(res.Root, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		if opts.Renderer == RendererGraphviz {
			return nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Root, nodelink.Options{Detailed: opts.Detailed}))
		}
		return boxes.RenderSVG(res.Layout, boxOptions(opts)...), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func boxOptions(opts RenderOptions) []boxes.SVGOption {
	var out []boxes.SVGOption
	if opts.Scale > 0 {
		out = append(out, boxes.WithScale(opts.Scale))
	}
	if opts.Edges {
		out = append(out, boxes.WithEdges())
	}
	return out
}
