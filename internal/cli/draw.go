package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
	"github.com/matzehuels/foldgraph/pkg/render/boxes"
	"github.com/matzehuels/foldgraph/pkg/viewstate"
)

// drawOpts holds the flags shared by layout and render.
type drawOpts struct {
	output          string
	noCache         bool
	expand          []int
	expandAll       bool
	compressBy      string
	dropPassThrough bool
	prune           []string
	save            bool
	watch           bool
}

func (o *drawOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (default: <input>.<format>)")
	f.BoolVar(&o.noCache, "no-cache", false, "disable caching")
	f.IntSliceVar(&o.expand, "expand", nil, "vertex ids to draw open, added to the view's")
	f.BoolVar(&o.expandAll, "expand-all", false, "draw every component and group open")
	f.StringVar(&o.compressBy, "compress-by", "", `group vertices by "kind" or a metadata key`)
	f.BoolVar(&o.dropPassThrough, "drop-pass-through", false, "remove vertices with one predecessor and one successor")
	f.StringSliceVar(&o.prune, "prune", nil, "kinds to prune when nothing below them is kept")
	f.BoolVar(&o.save, "save", false, "store the expand and compression flags in the view")
	f.BoolVarP(&o.watch, "watch", "w", false, "redraw when the graph or view changes")

	// Geometry flags are bound through the config layer.
	f.Float64("box-width", 0, "width of a collapsed vertex")
	f.Float64("box-height", 0, "height of a collapsed vertex")
	f.Float64("padding", 0, "gap between siblings and levels")
	f.Float64("margin", 0, "inset of an expanded vertex's content")
	f.Int("parallel", 0, "lay out up to n sibling inner graphs concurrently")
}

// view merges the flags over a saved state.
func (o *drawOpts) view(st *viewstate.State) pipeline.View {
	v := pipeline.View{
		Expanded:        union(st.Expanded, o.expand),
		ExpandAll:       o.expandAll,
		CompressBy:      st.CompressBy,
		DropPassThrough: st.DropPassThrough || o.dropPassThrough,
		PruneKinds:      st.PruneKinds,
	}
	if o.compressBy != "" {
		v.CompressBy = o.compressBy
	}
	if len(o.prune) > 0 {
		v.PruneKinds = o.prune
	}
	return v
}

// layoutCommand creates the layout command, which writes layout JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute the nested box layout of a graph",
		Long: `Compute the nested box layout of a graph.

Hidden vertices of the current view are left out and their edges spliced.
Strongly connected components become boxes that can be opened with --expand.
The output is a layout.json file that 'visualize' renders without the graph.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts := pipeline.RenderOptions{Format: pipeline.FormatJSON}
			return c.runDraw(cmd.Context(), args[0], opts, ropts, "layout.json")
		},
	}
	opts.register(cmd)
	return cmd
}

// renderCommand creates the render command, which goes from graph to artifact.
func (c *CLI) renderCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph to SVG, DOT or layout JSON",
		Long: `Render a graph to SVG, DOT or layout JSON.

The boxes renderer draws the computed layout directly. The graphviz renderer
hands the same nested view to Graphviz as clusters instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts := c.config().RenderOptions()
			ropts.SetDefaults()
			if err := ropts.Validate(); err != nil {
				return err
			}
			return c.runDraw(cmd.Context(), args[0], opts, ropts, ropts.Format)
		},
	}
	opts.register(cmd)

	f := cmd.Flags()
	f.StringP("format", "f", pipeline.FormatSVG, "output format: svg, dot, json")
	f.String("renderer", pipeline.RendererBoxes, "svg renderer: boxes, graphviz")
	f.Float64("scale", boxes.DefaultScale, "pixels per layout unit (boxes)")
	f.Bool("edges", false, "draw edges (boxes)")
	f.Bool("detailed", false, "show kinds and metadata (dot, graphviz)")

	return cmd
}

// runDraw redraws input under the current view and writes one artifact,
// then keeps redrawing on change when watching.
func (c *CLI) runDraw(ctx context.Context, input string, opts drawOpts, ropts pipeline.RenderOptions, suffix string) error {
	store, st, err := c.loadView(ctx)
	if err != nil {
		return err
	}
	if opts.save {
		st.Expand(opts.expand...)
		if opts.compressBy != "" {
			st.CompressBy = opts.compressBy
		}
		st.DropPassThrough = st.DropPassThrough || opts.dropPassThrough
		if len(opts.prune) > 0 {
			st.PruneKinds = opts.prune
		}
		if err := store.Set(ctx, st); err != nil {
			return fmt.Errorf("save view: %w", err)
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	out := outputPath(input, opts.output, suffix)
	draw := func() error {
		// Reload so that edits to the view made elsewhere apply.
		if _, fresh, err := c.loadView(ctx); err == nil {
			st = fresh
		}
		return c.drawOnce(ctx, runner, input, out, opts.view(st), st, ropts)
	}
	if err := draw(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	viewFile := filepath.Join(store.Path(), st.Name+".yaml")
	printInfo("Watching %s (ctrl-c to stop)", input)
	return watchFiles(ctx, []string{input, viewFile}, draw, func(err error) {
		printError("%v", err)
	})
}

func (c *CLI) drawOnce(ctx context.Context, runner *pipeline.Runner, input, out string, view pipeline.View, st *viewstate.State, ropts pipeline.RenderOptions) error {
	h, err := c.readGraph(input)
	if err != nil {
		return err
	}
	c.applyView(h, st)

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, err := runner.Redraw(ctx, h, view, c.config().LayoutOptions())
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	data, renderHit, err := runner.Render(ctx, res, ropts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("redraw", "input", input, "cached", res.CacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Drew %s", filepath.Base(input))
	printFile(out)
	printStats(res.Stats.Vertices, res.Stats.Components, res.Stats.Boxes, res.CacheHit || renderHit)
	if len(h.Hidden()) > 0 {
		printDetail("%d hidden in view %q", len(h.Hidden()), st.Name)
	}
	return nil
}

// visualizeCommand creates the visualize command for rendering a layout file.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output string
		scale  float64
		edges  bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render SVG from a computed layout",
		Long: `Render SVG from a computed layout.

The layout contains all positioning information, so this step needs neither
the graph nor the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := graph.ReadLayoutFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			svgOpts := []boxes.SVGOption{boxes.WithScale(scale)}
			if edges {
				svgOpts = append(svgOpts, boxes.WithEdges())
			}
			if plain {
				svgOpts = append(svgOpts, boxes.WithoutLabels())
			}
			in := args[0]
			if ext := ".layout.json"; len(in) > len(ext) && in[len(in)-len(ext):] == ext {
				in = in[:len(in)-len(ext)] + ".json"
			}
			out := outputPath(in, output, "svg")
			if err := os.WriteFile(out, boxes.RenderSVG(l, svgOpts...), 0644); err != nil {
				return fmt.Errorf("write output %s: %w", out, err)
			}
			printSuccess("Rendered %d boxes", len(l.Boxes))
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().Float64Var(&scale, "scale", boxes.DefaultScale, "pixels per layout unit")
	cmd.Flags().BoolVar(&edges, "edges", false, "draw edges")
	cmd.Flags().BoolVar(&plain, "no-labels", false, "omit vertex labels")

	return cmd
}

func union(a, b []int) []int {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
