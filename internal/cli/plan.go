package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/matzehuels/relink/pkg/dag"
	"github.com/matzehuels/relink/pkg/errors"
)

// dependencyGraph reads the declared dependencies of names and builds their
// graph. The package database is queried once per distinct name.
func (c *CLI) dependencyGraph(ctx context.Context, e *env, names []string) (*dag.Graph, error) {
	prog := newProgress(c.Logger)
	spin := c.startSpinner(ctx, fmt.Sprintf("Reading dependencies of %d packages...", len(names)), nil)
	deps, err := e.db.Candidates(ctx, names)
	spin.Stop()
	if err != nil {
		return nil, err
	}

	g := dag.Build(names, deps)
	prog.done("Built dependency graph")
	c.Logger.Debug("dependency graph", "packages", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// plan orders names so that dependencies come before their dependents.
// Sorting happens whenever more than one package is in scope.
func (c *CLI) plan(ctx context.Context, e *env, names []string) ([]string, error) {
	if len(names) < 2 {
		return names, nil
	}
	g, err := c.dependencyGraph(ctx, e, names)
	if err != nil {
		return nil, err
	}
	return orderGraph(g)
}

func orderGraph(g *dag.Graph) ([]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, cycleError(g, err)
	}
	return order, nil
}

func cycleError(g *dag.Graph, err error) error {
	return errors.Wrap(errors.ErrCodeDependencyCycle, err, "cannot order %d packages", g.NodeCount())
}

// startSpinner shows a spinner on stderr when it is a terminal.
func (c *CLI) startSpinner(ctx context.Context, message string, status func() string) spinner {
	if !isTerminal(os.Stderr) {
		return nopSpinner{}
	}
	s := newSpinnerWithContext(ctx, message, status)
	s.Start()
	return s
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
