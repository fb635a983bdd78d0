package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
	"github.com/matzehuels/foldgraph/pkg/viewstate"
)

// viewCommand creates the view command for editing saved views.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Hide, unhide and expand vertices of a saved view",
		Long: `Hide, unhide and expand vertices of a saved view.

Subcommands edit the view selected with --view. The next layout or render
of any graph applies it.`,
	}

	cmd.AddCommand(c.viewHideCommand())
	cmd.AddCommand(c.viewIsolateCommand())
	cmd.AddCommand(c.viewUnhideCommand())
	cmd.AddCommand(c.viewExpandCommand(true))
	cmd.AddCommand(c.viewExpandCommand(false))
	cmd.AddCommand(c.viewSetCommand())
	cmd.AddCommand(c.viewShowCommand())
	cmd.AddCommand(c.viewListCommand())
	cmd.AddCommand(c.viewDeleteCommand())

	return cmd
}

// editView loads the current view, applies fn and stores the result.
func (c *CLI) editView(cmd *cobra.Command, fn func(st *viewstate.State) error) error {
	ctx := cmd.Context()
	store, st, err := c.loadView(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return store.Set(ctx, st)
}

// checkIDs returns an error for the first id g does not contain.
func checkIDs(g *digraph.Graph, ids []int) error {
	for _, id := range ids {
		if !g.Has(id) {
			return errors.New(errors.ErrCodeVertexNotFound, "vertex %d not in graph", id)
		}
	}
	return nil
}

func (c *CLI) viewHideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hide [graph.json] [id...]",
		Short: "Hide vertices, splicing their edges",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.readGraph(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			if err := checkIDs(h.Graph(), ids); err != nil {
				return err
			}
			return c.editView(cmd, func(st *viewstate.State) error {
				st.Hide(ids...)
				if err := stampGraph(st, h); err != nil {
					return err
				}
				printSuccess("Hid %d vertices in view %q", len(ids), st.Name)
				printIDs("hidden", st.Hidden)
				return nil
			})
		},
	}
}

func (c *CLI) viewIsolateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "isolate [graph.json] [id...]",
		Short: "Hide everything not connected to the given vertices",
		Long: `Hide everything not connected to the given vertices.

A vertex stays visible if it is selected, or if it is an ancestor or a
descendant of a selected vertex. The selection is saved with the view.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.readGraph(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			if err := checkIDs(h.Graph(), ids); err != nil {
				return err
			}
			unrelated := h.Graph().Unrelated(ids)
			return c.editView(cmd, func(st *viewstate.State) error {
				st.Select(ids...)
				st.Hide(unrelated...)
				if err := stampGraph(st, h); err != nil {
					return err
				}
				printSuccess("Isolated %d vertices, hid %d", len(ids), len(unrelated))
				return nil
			})
		},
	}
}

func stampGraph(st *viewstate.State, h *digraph.Hierarchical) error {
	hash, err := pipeline.GraphHash(h)
	if err != nil {
		return err
	}
	st.Graph = hash
	return nil
}

func (c *CLI) viewUnhideCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "unhide [id...]",
		Short: "Unhide vertices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "give vertex ids or --all")
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return c.editView(cmd, func(st *viewstate.State) error {
				if all {
					st.UnhideAll()
					st.Select()
					printSuccess("Unhid all vertices in view %q", st.Name)
					return nil
				}
				st.Unhide(ids...)
				printSuccess("Unhid %d vertices in view %q", len(ids), st.Name)
				printIDs("hidden", st.Hidden)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "unhide every vertex")
	return cmd
}

// viewExpandCommand creates "view expand" or "view collapse". Ids are
// those of component and group vertices as printed by layout output.
func (c *CLI) viewExpandCommand(open bool) *cobra.Command {
	use, short := "expand", "Draw component or group vertices open"
	if !open {
		use, short = "collapse", "Draw component or group vertices closed"
	}
	return &cobra.Command{
		Use:   use + " [id...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return c.editView(cmd, func(st *viewstate.State) error {
				if open {
					st.Expand(ids...)
				} else {
					st.Collapse(ids...)
				}
				printIDs("expanded", st.Expanded)
				return nil
			})
		},
	}
}

func (c *CLI) viewSetCommand() *cobra.Command {
	var (
		compressBy      string
		dropPassThrough bool
		prune           []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the compression settings of a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editView(cmd, func(st *viewstate.State) error {
				f := cmd.Flags()
				if f.Changed("compress-by") {
					st.CompressBy = compressBy
				}
				if f.Changed("drop-pass-through") {
					st.DropPassThrough = dropPassThrough
				}
				if f.Changed("prune") {
					st.PruneKinds = prune
				}
				v := pipeline.View{CompressBy: st.CompressBy, PruneKinds: st.PruneKinds}
				if err := v.Validate(); err != nil {
					return err
				}
				printSuccess("Updated view %q", st.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&compressBy, "compress-by", "", `group vertices by "kind" or a metadata key; empty to disable`)
	cmd.Flags().BoolVar(&dropPassThrough, "drop-pass-through", false, "remove vertices with one predecessor and one successor")
	cmd.Flags().StringSliceVar(&prune, "prune", nil, "kinds to prune when nothing below them is kept")

	return cmd
}

func (c *CLI) viewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := c.loadView(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, StyleTitle.Render(st.Name))
			printIDs("hidden", st.Hidden)
			printIDs("expanded", st.Expanded)
			printIDs("selection", st.Selection)
			if st.CompressBy != "" {
				printKeyValue("compress by", st.CompressBy)
			}
			if st.DropPassThrough {
				printKeyValue("pass-through", "dropped")
			}
			if len(st.PruneKinds) > 0 {
				printKeyValue("prune", strings.Join(st.PruneKinds, ", "))
			}
			if st.Graph != "" {
				printKeyValue("graph", st.Graph[:min(12, len(st.Graph))])
			}
			return nil
		},
	}
}

func (c *CLI) viewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.viewStore()
			if err != nil {
				return err
			}
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(c.Out, name)
			}
			return nil
		},
	}
}

func (c *CLI) viewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.viewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted view %q", args[0])
			return nil
		},
	}
	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.completeViewNames(cmd, args, toComplete)
	}
	return cmd
}
