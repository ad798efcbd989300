package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/dag"
	"github.com/matzehuels/relink/pkg/errors"
	graphio "github.com/matzehuels/relink/pkg/io"
	"github.com/matzehuels/relink/pkg/nodelink"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		check    bool
	)

	cmd := &cobra.Command{
		Use:   "graph [packages...]",
		Short: "Export the dependency graph of packages",
		Long: `Export the dependency graph of the given packages, or of all foreign
packages, as Graphviz DOT, SVG, PNG or JSON. The format follows the
extension of --output; without --output DOT is written to stdout. A JSON
graph can be ordered later with "relink order --graph".

With --check every package is checked first and outdated ones are
highlighted.`,
		Example: `  relink graph -o foreign.svg --detailed
  relink graph zoom slack-desktop | dot -Tpng > deps.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON := filepath.Ext(output) == ".json"
			format := nodelink.FormatDOT
			if output != "" && !asJSON {
				f, err := nodelink.ParseFormat(filepath.Ext(output))
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --output")
				}
				format = f
			}

			ctx := cmd.Context()
			e, err := c.setup()
			if err != nil {
				return err
			}
			defer c.finish(e)

			names, err := e.candidates(ctx, args)
			if err != nil {
				return err
			}
			g, err := c.dependencyGraph(ctx, e, names)
			if err != nil {
				return err
			}

			if check {
				for _, pkg := range g.Nodes() {
					v, err := e.detector.Check(ctx, pkg)
					if err != nil {
						return err
					}
					_ = g.AddNode(pkg, dag.Metadata{"outdated": v.Outdated})
				}
			}
			if detailed {
				for _, pkg := range g.Nodes() {
					info, err := e.db.Info(ctx, pkg)
					if err != nil {
						return err
					}
					_ = g.AddNode(pkg, dag.Metadata{"version": info.Version})
				}
			}

			if asJSON {
				if err := graphio.ExportJSON(g, output); err != nil {
					return err
				}
			} else {
				data, err := nodelink.Render(ctx, nodelink.ToDOT(g, nodelink.Options{Detailed: detailed}), format)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
			}
			printer{w: cmd.OutOrStdout()}.success("Wrote %s (%d packages, %d dependencies)", output, g.NodeCount(), g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, .png or .json)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label packages with version and rebuild round")
	cmd.Flags().BoolVar(&check, "check", false, "check packages and highlight outdated ones")

	return cmd
}
