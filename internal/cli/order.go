package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/dag"
	"github.com/matzehuels/relink/pkg/errors"
	graphio "github.com/matzehuels/relink/pkg/io"
)

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		layers    bool
		graphFile string
	)

	cmd := &cobra.Command{
		Use:   "order [packages...]",
		Short: "Print the rebuild order of packages",
		Long: `Print packages one per line so that every package comes after the
packages it depends on. Without arguments all foreign packages are ordered.
With --graph a graph saved by "relink graph -o FILE.json" is ordered instead
and the package database is not queried.

Exits with an error naming the cycle when the packages depend on each other
circularly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphFile != "" && len(args) > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--graph cannot be combined with package arguments")
			}
			g, err := c.orderInput(cmd.Context(), graphFile, args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !layers {
				order, err := orderGraph(g)
				if err != nil {
					return err
				}
				for _, pkg := range order {
					fmt.Fprintln(w, pkg)
				}
				return nil
			}

			rounds, err := g.Layers()
			if err != nil {
				return cycleError(g, err)
			}
			for i, round := range rounds {
				fmt.Fprintf(w, "%d: %s\n", i+1, strings.Join(round, " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&layers, "layers", false, "print one line per round of packages that can be rebuilt together")
	cmd.Flags().StringVar(&graphFile, "graph", "", "order a JSON graph written by \"relink graph\"")

	return cmd
}

// orderInput loads the graph to order from file, or builds it from the
// package database.
func (c *CLI) orderInput(ctx context.Context, file string, names []string) (*dag.Graph, error) {
	if file != "" {
		g, err := graphio.ImportJSON(file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read graph")
		}
		c.Logger.Debug("graph loaded", "file", file, "packages", g.NodeCount(), "edges", g.EdgeCount())
		return g, nil
	}

	e, err := c.setup()
	if err != nil {
		return nil, err
	}
	defer c.finish(e)

	names, err = e.candidates(ctx, names)
	if err != nil {
		return nil, err
	}
	return c.dependencyGraph(ctx, e, names)
}
