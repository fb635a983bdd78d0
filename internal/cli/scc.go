package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// sccCommand creates the scc command, which lists the strongly connected
// components of the visible graph.
func (c *CLI) sccCommand() *cobra.Command {
	var (
		all     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "scc [graph.json]",
		Short: "List the strongly connected components of the visible graph",
		Long: `List the strongly connected components of the visible graph.

Only components with more than one vertex are shown unless --all is given.
Components are listed callees first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := c.readGraph(args[0])
			if err != nil {
				return err
			}
			_, st, err := c.loadView(ctx)
			if err != nil {
				return err
			}
			c.applyView(h, st)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			comps, hit, err := runner.Components(ctx, h)
			if err != nil {
				return err
			}

			g := h.Graph()
			shown := 0
			for _, comp := range comps {
				if len(comp) < 2 && !all {
					continue
				}
				shown++
				labels := make([]string, len(comp))
				for i, id := range comp {
					labels[i] = fmt.Sprintf("%s#%d", g.Vertex(id).Label, id)
				}
				fmt.Fprintf(c.Out, "%s %s\n", StyleNumber.Render(fmt.Sprintf("[%d]", len(comp))), strings.Join(labels, " "))
			}
			if shown == 0 {
				printInfo("No cycles in view %q", st.Name)
			}
			status := iconFresh
			if hit {
				status = iconCached
			}
			printDetail("%d vertices · %d components · %d cyclic · %s", len(h.VisibleVertices()), len(comps), shown, status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include single-vertex components")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
