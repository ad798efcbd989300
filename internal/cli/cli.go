// Package cli implements the relink command-line interface.
//
// The commands wire the engine packages together: the package database
// ([pkgdb]) supplies candidates and their dependencies, [dag] orders them,
// and [rebuild] checks and reinstalls them in that order.
//
// # Commands
//
//   - check: find outdated foreign packages and rebuild them
//   - order: print the rebuild order of a set of packages
//   - scan: report broken binaries below a directory
//   - search: find packages linked against a given library version
//   - graph: export the dependency graph of a set of packages
//   - config: print the effective configuration
//
// # Logging
//
// Logs go to stderr through charmbracelet/log; --verbose (-v) switches to
// debug level and makes the outdated check report every broken file.
// Status lines go to stdout.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/command"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Runner executes external tools. Nil selects a command.Exec built
	// from the configured timeouts.
	Runner command.Runner

	// In is read by interactive prompts. Nil selects os.Stdin.
	In io.Reader

	flags globalFlags
}

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	verbose        bool
	configPath     string
	packageManager string
	inspector      string
	metricsFile    string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "relink",
		Short: "relink rebuilds foreign packages broken by library upgrades",
		Long: `relink finds installed foreign packages whose binaries reference shared
libraries that no longer exist, orders them so dependencies are rebuilt
before their dependents, and rebuilds them with the package manager.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.flags.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging and list every broken file")
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/relink/config.toml)")
	pf.StringVar(&c.flags.packageManager, "package-manager", "", "pacman-compatible package manager to drive (default from config, yay)")
	pf.StringVar(&c.flags.inspector, "inspector", "", "dynamic-linker inspection tool (default from config, ldd)")
	pf.StringVar(&c.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) stdin() io.Reader {
	if c.In != nil {
		return c.In
	}
	return os.Stdin
}

// promptable reports whether prompts can be shown, i.e. stdin is a terminal.
func (c *CLI) promptable() bool {
	f, ok := c.stdin().(*os.File)
	return ok && isTerminal(f)
}
