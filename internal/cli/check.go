package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/outdated"
	"github.com/matzehuels/relink/pkg/rebuild"
)

// rebuildFlags are shared by every command that runs a rebuild plan.
type rebuildFlags struct {
	ignore []string
	dryRun bool
	yes    bool
	ask    bool
	output string
	force  bool
}

func (f *rebuildFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.ignore, "ignore", "i", nil, "packages to skip (comma-separated, adds to config)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "d", false, "only list outdated packages, do not rebuild")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "never prompt; keep going after failed rebuilds")
	cmd.Flags().BoolVar(&f.ask, "ask", false, "ask before each rebuild")
	cmd.Flags().StringVarP(&f.output, "output", "o", formatText, "report format: text, json or yaml")
}

func (f *rebuildFlags) validate() error {
	if err := validateFormat(f.output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --output")
	}
	return errors.ValidatePackageNames(f.ignore)
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var packages []string
	var flags rebuildFlags

	cmd := &cobra.Command{
		Use:   "check [packages...]",
		Short: "Rebuild foreign packages that link against missing libraries",
		Long: `Check installed foreign packages for binaries that reference shared
libraries which no longer exist, and rebuild the affected packages with the
package manager. Packages are processed dependencies first.

Without arguments every foreign package is checked.`,
		Example: `  # List what would be rebuilt
  relink check --dry-run

  # Check and rebuild a single package without prompting
  relink check --package zoom --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			e, err := c.setup()
			if err != nil {
				return err
			}
			defer c.finish(e)

			names, err := e.candidates(ctx, append(packages, args...))
			if err != nil {
				return err
			}
			plan, err := c.plan(ctx, e, names)
			if err != nil {
				return err
			}
			return c.runPlan(cmd, e, plan, flags)
		},
	}

	cmd.Flags().StringSliceVarP(&packages, "package", "p", nil, "check only this package (repeatable)")
	flags.bind(cmd)

	return cmd
}

// runPlan checks and rebuilds plan in order and prints the report.
func (c *CLI) runPlan(cmd *cobra.Command, e *env, plan []string, flags rebuildFlags) error {
	ctx := cmd.Context()
	text := flags.output == formatText
	out := printer{w: cmd.OutOrStdout()}
	if !text {
		out.w = cmd.ErrOrStderr()
	}
	if len(plan) == 0 {
		out.success("Nothing to check")
		return nil
	}

	if c.flags.verbose {
		e.detector.Diagnostics = func(d outdated.Diagnostic) {
			out.detail("file %s depends on missing %s", d.File, d.Reference)
		}
	}

	interactive := !flags.yes && c.promptable()
	var confirmer rebuild.Confirmer
	if interactive || flags.ask {
		confirmer = teaConfirmer{in: c.stdin(), out: cmd.ErrOrStderr()}
	}

	orch := rebuild.New(e.db, e.detector, confirmer, c.Logger)
	opts := rebuild.Options{
		DryRun:      flags.dryRun,
		Interactive: interactive,
		ConfirmEach: flags.ask && !flags.yes,
		Force:       flags.force,
		Ignore:      append(append([]string(nil), e.cfg.Ignore...), flags.ignore...),
		OnProgress: func(i, n int, pkg string) {
			out.info("Checking package %s %s", StyleNumber.Render(fmt.Sprintf("%d/%d", i, n)), pkg)
		},
		OnOutcome: func(o rebuild.Outcome) { out.outcome(o, flags.dryRun) },
	}

	prog := newProgress(c.Logger)
	report, err := orch.Run(ctx, plan, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d packages", len(plan)))

	if !text {
		return encode(cmd.OutOrStdout(), flags.output, report)
	}

	out.line("")
	out.summary(report, e.counters.Snapshot())
	if report.Aborted {
		out.warning("Aborted, %d packages were not processed", report.Count(rebuild.StatePending))
	}
	if n := report.Count(rebuild.StateNeedsRebuild); flags.dryRun && n > 0 {
		out.info("Run without --dry-run to rebuild %d packages", n)
	}
	return nil
}
