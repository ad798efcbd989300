package rebuild

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/outdated"
)

// Database is the part of the package manager the orchestrator drives.
type Database interface {
	Exists(ctx context.Context, pkg string) (bool, error)
	Install(ctx context.Context, pkg string) error
}

// Checker decides whether a package needs a rebuild.
type Checker interface {
	Check(ctx context.Context, pkg string) (outdated.Verdict, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, q string) (bool, error) { return f(ctx, q) }

// Options control one run.
type Options struct {
	// DryRun reports outdated packages without installing them.
	DryRun bool

	// Interactive asks the Confirmer whether to continue after a failed
	// install. Without it failures are recorded and the run goes on.
	Interactive bool

	// ConfirmEach asks the Confirmer before every install. A refusal marks
	// the package skipped-by-user.
	ConfirmEach bool

	// Force reinstalls every package without checking it first.
	Force bool

	// Ignore lists packages that are passed over without a check.
	Ignore []string

	// OnProgress is called before each package is processed, with a
	// 1-based position among the packages that are not ignored.
	OnProgress func(i, n int, pkg string)

	// OnOutcome is called whenever a package reaches its final state.
	OnOutcome func(Outcome)
}

// Orchestrator runs a rebuild plan.
type Orchestrator struct {
	DB        Database
	Checker   Checker
	Confirmer Confirmer
	Logger    *log.Logger
}

// New creates an Orchestrator. A nil logger selects log.Default().
func New(db Database, checker Checker, confirmer Confirmer, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{DB: db, Checker: checker, Confirmer: confirmer, Logger: logger}
}

// Run processes plan in order. The returned report is never nil; on a
// fatal error it holds the outcomes gathered until then, and the package
// that failed stays pending.
func (o *Orchestrator) Run(ctx context.Context, plan []string, opts Options) (*Report, error) {
	start := time.Now()
	report := newReport(plan, opts.DryRun)
	defer func() { report.Duration = time.Since(start) }()

	logger := o.Logger.With("run", report.RunID.String())
	total := 0
	for _, pkg := range plan {
		if !slices.Contains(opts.Ignore, pkg) {
			total++
		}
	}

	pos := 0
	for i := range report.Outcomes {
		out := &report.Outcomes[i]
		pkg := out.Package

		if slices.Contains(opts.Ignore, pkg) {
			out.State = StateIgnored
			observability.Rebuild().OnSkip(ctx, pkg, string(StateIgnored))
			o.emit(opts, *out)
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		pos++
		if opts.OnProgress != nil {
			opts.OnProgress(pos, total, pkg)
		}

		cont, err := o.process(ctx, logger, out, opts)
		if err != nil {
			return report, err
		}
		if !cont {
			report.Aborted = true
			logger.Warn("run aborted", "remaining", len(plan)-i-1)
			return report, nil
		}
	}
	return report, nil
}

// process advances one package as far as it goes. It returns false when the
// user declined to continue after a failed install.
func (o *Orchestrator) process(ctx context.Context, logger *log.Logger, out *Outcome, opts Options) (bool, error) {
	pkg := out.Package

	found, err := o.DB.Exists(ctx, pkg)
	if err != nil {
		return false, fmt.Errorf("look up %s: %w", pkg, err)
	}
	if !found {
		logger.Warn("package not found", "package", pkg)
		out.State = StateMissing
		observability.Rebuild().OnSkip(ctx, pkg, string(StateMissing))
		o.emit(opts, *out)
		return true, nil
	}

	if opts.Force {
		out.State = StateNeedsRebuild
	} else {
		v, err := o.Checker.Check(ctx, pkg)
		if err != nil {
			return false, fmt.Errorf("check %s: %w", pkg, err)
		}
		out.State = StateChecked
		if !v.Outdated {
			out.State = StateSkipped
			o.emit(opts, *out)
			return true, nil
		}
		out.State = StateNeedsRebuild
		out.Files = v.Files
	}
	logger.Info("package needs to be reinstalled", "package", pkg)

	if opts.DryRun {
		o.emit(opts, *out)
		return true, nil
	}

	if opts.ConfirmEach && o.Confirmer != nil {
		yes, err := o.Confirmer.Confirm(ctx, "Rebuild "+pkg+"?")
		if err != nil {
			return false, err
		}
		if !yes {
			out.State = StateSkippedByUser
			observability.Rebuild().OnSkip(ctx, pkg, string(StateSkippedByUser))
			o.emit(opts, *out)
			return true, nil
		}
	}

	err = o.DB.Install(ctx, pkg)
	if err == nil {
		out.State = StateInstalled
		o.emit(opts, *out)
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	out.fail(err)
	logger.Error("install failed", "package", pkg, "err", errors.UserMessage(err))
	o.emit(opts, *out)

	if !opts.Interactive || o.Confirmer == nil {
		return true, nil
	}
	return o.Confirmer.Confirm(ctx, "Continue?")
}

func (o *Orchestrator) emit(opts Options, out Outcome) {
	if opts.OnOutcome != nil {
		opts.OnOutcome(out)
	}
}
