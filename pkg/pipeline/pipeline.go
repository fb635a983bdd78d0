// Package pipeline redraws a hierarchical graph: it applies the visibility
// overlay and view settings, collapses cycles, lays the result out and
// renders it, caching the expensive steps.
//
// # Overview
//
// A redraw runs four transforms over the immutable graph of a
// [digraph.Hierarchical], each producing a new hierarchy and a
// [transform.Mapping] back to its input:
//
//  1. Visibility: hidden vertices, and any pruned kinds, are dropped and
//     their edges spliced.
//  2. Pass-through: optionally, chain vertices are removed.
//  3. Compression: optionally, vertices sharing a kind or metadata value
//     become one group vertex.
//  4. Layering: every strongly connected component becomes one component
//     vertex, so the top level is acyclic.
//
// Expanded vertices then have the cycles of their inner graph broken, and
// the whole hierarchy is laid out by [layout.Layout].
//
// # Caching
//
// [Runner] keys layouts by the graph content hash, the hidden set, the
// [View] and the geometry, so redrawing an unchanged view only replays the
// cached boxes onto a fresh hierarchy. Rendered artifacts are keyed by the
// layout hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Redraw(ctx, h, pipeline.View{ExpandAll: true}, layout.DefaultOptions())
//	svg, err := runner.Render(ctx, res, pipeline.RenderOptions{Format: pipeline.FormatSVG})
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/digraph/transform"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Renderers for the SVG format.
const (
	RendererBoxes    = "boxes"
	RendererGraphviz = "graphviz"
)

// CompressByKind groups vertices by their kind rather than a metadata key.
const CompressByKind = "kind"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidRenderers is the set of supported SVG renderers.
var ValidRenderers = map[string]bool{
	RendererBoxes:    true,
	RendererGraphviz: true,
}

// =============================================================================
// View and Render Options
// =============================================================================

// View selects what a redraw shows beyond the hidden set.
type View struct {
	// Expanded lists vertex ids of the derived hierarchy to draw open.
	// Ids refer to the graph file for original vertices; component and
	// group ids are stable for an unchanged graph and view.
	Expanded  []int `json:"expanded,omitempty"`
	ExpandAll bool  `json:"expand_all,omitempty"`

	// CompressBy groups vertices by [CompressByKind] or by a metadata key.
	CompressBy string `json:"compress_by,omitempty"`

	DropPassThrough bool     `json:"drop_pass_through,omitempty"`
	PruneKinds      []string `json:"prune_kinds,omitempty"` // kinds to prune when they have no live descendants
}

// Validate checks that every pruned kind is known.
func (v View) Validate() error {
	for _, k := range v.PruneKinds {
		if _, err := digraph.ParseKind(k); err != nil {
			return err
		}
	}
	return nil
}

// RenderOptions selects an output artifact.
type RenderOptions struct {
	Format   string  `json:"format"`
	Renderer string  `json:"renderer,omitempty"` // for svg; defaults to boxes
	Scale    float64 `json:"scale,omitempty"`    // boxes renderer only
	Edges    bool    `json:"edges,omitempty"`    // boxes renderer only
	Detailed bool    `json:"detailed,omitempty"` // dot and graphviz only
}

// SetDefaults fills in the renderer and scale.
func (o *RenderOptions) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Renderer == "" {
		o.Renderer = RendererBoxes
	}
}

// Validate checks the format and renderer.
func (o RenderOptions) Validate() error {
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Format == FormatSVG && !ValidRenderers[o.Renderer] {
		return fmt.Errorf("invalid renderer: %q (must be one of: boxes, graphviz)", o.Renderer)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is one redrawn hierarchy.
type Result struct {
	// Root is the derived hierarchy with geometry applied.
	Root *digraph.Vertex

	// Mapping maps the input hierarchy's vertices to Root's.
	Mapping *transform.Mapping

	// Layout is the exported geometry of Root.
	Layout graph.Layout

	// GraphHash is the content hash of the input graph.
	GraphHash string

	Stats    Stats
	CacheHit bool // whether the layout came from cache
}

// Stats contains redraw statistics.
type Stats struct {
	Vertices      int // visible vertices of the input
	Components    int // component vertices created by layering
	Boxes         int
	DecomposeTime time.Duration
	LayoutTime    time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// layoutKeyOpts returns cache key options for a redraw.
func layoutKeyOpts(hidden []int, v View, o layout.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Hidden:          hidden,
		Expanded:        v.Expanded,
		ExpandAll:       v.ExpandAll,
		CompressBy:      v.CompressBy,
		DropPassThrough: v.DropPassThrough,
		PruneKinds:      v.PruneKinds,
		BoxWidth:        o.BoxWidth,
		BoxHeight:       o.BoxHeight,
		Padding:         o.Padding,
		Margin:          o.Margin,
		RootOffset:      o.RootOffset,
	}
}

// artifactKeyOpts returns cache key options for rendering.
func (o RenderOptions) artifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.Format,
		Renderer: o.Renderer,
		Scale:    o.Scale,
		Edges:    o.Edges,
		Detailed: o.Detailed,
	}
}
