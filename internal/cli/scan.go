package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/linker"
	"github.com/matzehuels/relink/pkg/outdated"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var rebuildOwners bool
	var flags rebuildFlags

	cmd := &cobra.Command{
		Use:   "scan ROOT",
		Short: "Report broken binaries below a directory",
		Long: `Inspect every regular file below ROOT and report those that reference
shared libraries which cannot be found, together with the package that owns
them. With --rebuild the owning packages are then checked and rebuilt like
"relink check" does.`,
		Example: `  relink scan /usr/bin
  relink scan /opt --rebuild --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			e, err := c.setup()
			if err != nil {
				return err
			}
			defer c.finish(e)

			find := func(ctx context.Context) ([]outdated.Finding, error) {
				return e.detector.Scan(ctx, args[0], e.db)
			}
			return c.runFindings(cmd, e, find, "missing", rebuildOwners, flags)
		},
	}

	cmd.Flags().BoolVar(&rebuildOwners, "rebuild", false, "check and rebuild the owning packages")
	flags.bind(cmd)

	return cmd
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var install bool
	var flags rebuildFlags

	cmd := &cobra.Command{
		Use:   "search ROOT LIBRARY [VERSION]",
		Short: "Find packages linked against a library version",
		Long: `Inspect every regular file below ROOT and report those linked against
LIBRARY, resolved or not. VERSION is either a fragment of the library file
name, such as "1.63", or a constraint on the soname version, such as
">=1.63, <1.66".

With --install the owning packages are rebuilt in dependency order without
checking them first, which is useful before the old library is removed.`,
		Example: `  relink search /usr/bin boost 1.63
  relink search /usr icu "<73" --install`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			version := ""
			if len(args) == 3 {
				version = args[2]
			}
			m, err := linker.NewMatch(args[1], version)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid library selection")
			}

			e, err := c.setup()
			if err != nil {
				return err
			}
			defer c.finish(e)

			find := func(ctx context.Context) ([]outdated.Finding, error) {
				return e.detector.Search(ctx, args[0], e.resolver, m, e.db)
			}
			flags.force = true
			return c.runFindings(cmd, e, find, "linked against", install, flags)
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "rebuild the owning packages")
	flags.bind(cmd)

	return cmd
}

// runFindings prints what find reports and optionally runs the owners
// through a rebuild plan.
func (c *CLI) runFindings(cmd *cobra.Command, e *env, find func(context.Context) ([]outdated.Finding, error), verb string, act bool, flags rebuildFlags) error {
	ctx := cmd.Context()
	text := flags.output == formatText
	out := printer{w: cmd.OutOrStdout()}
	if !text {
		out.w = cmd.ErrOrStderr()
	}

	prog := newProgress(c.Logger)
	spin := c.startSpinner(ctx, "Inspecting files...", func() string {
		return strconv.Itoa(e.counters.Snapshot().Inspections) + " inspected"
	})
	findings, err := find(ctx)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Inspected files")

	owners := outdated.Owners(findings)
	if !act && !text {
		return encode(cmd.OutOrStdout(), flags.output, findings)
	}

	if len(findings) == 0 {
		out.success("No matching files found")
		return nil
	}
	for _, f := range findings {
		owner := f.Owner
		if owner == "" {
			owner = StyleWarning.Render("unowned")
		}
		out.info("%s: %s", owner, f.File)
		for _, r := range f.References {
			out.detail("%s %s", verb, r)
		}
	}
	out.line("")
	out.keyValue("files", StyleNumber.Render(strconv.Itoa(len(findings))))
	out.keyValue("packages", StyleNumber.Render(strconv.Itoa(len(owners))))

	if !act || len(owners) == 0 {
		return nil
	}
	out.line("")
	plan, err := c.plan(ctx, e, owners)
	if err != nil {
		return err
	}
	return c.runPlan(cmd, e, plan, flags)
}
