package rebuild

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/relink/pkg/linker"
)

// State is the position of a package in the rebuild life cycle.
type State string

const (
	StatePending       State = "pending"
	StateChecked       State = "checked"
	StateSkipped       State = "skipped"
	StateNeedsRebuild  State = "needs-rebuild"
	StateInstalled     State = "installed"
	StateFailed        State = "failed"
	StateSkippedByUser State = "skipped-by-user"
	StateMissing       State = "missing"
	StateIgnored       State = "ignored"
)

// Final reports whether no further transition follows s in a finished run.
func (s State) Final() bool {
	return s != StatePending && s != StateChecked
}

// Outcome is the result for one package of the plan.
type Outcome struct {
	Package string                        `json:"package" yaml:"package"`
	State   State                         `json:"state" yaml:"state"`
	Files   map[string][]linker.Reference `json:"files,omitempty" yaml:"files,omitempty"`
	Err     error                         `json:"-" yaml:"-"`
	Error   string                        `json:"error,omitempty" yaml:"error,omitempty"`
}

func (o *Outcome) fail(err error) {
	o.State = StateFailed
	o.Err = err
	o.Error = err.Error()
}

// Report collects the outcomes of one run, in plan order.
type Report struct {
	RunID    uuid.UUID     `json:"run_id" yaml:"run_id"`
	DryRun   bool          `json:"dry_run" yaml:"dry_run"`
	Outcomes []Outcome     `json:"outcomes" yaml:"outcomes"`
	Aborted  bool          `json:"aborted" yaml:"aborted"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

func newReport(plan []string, dryRun bool) *Report {
	r := &Report{RunID: uuid.New(), DryRun: dryRun, Outcomes: make([]Outcome, len(plan))}
	for i, pkg := range plan {
		r.Outcomes[i] = Outcome{Package: pkg, State: StatePending}
	}
	return r
}

// Count returns how many packages ended in state s.
func (r *Report) Count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// Packages returns the packages that ended in state s, in plan order.
func (r *Report) Packages(s State) []string {
	var pkgs []string
	for _, o := range r.Outcomes {
		if o.State == s {
			pkgs = append(pkgs, o.Package)
		}
	}
	return pkgs
}

// Outcome returns the outcome recorded for pkg.
func (r *Report) Outcome(pkg string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Package == pkg {
			return o, true
		}
	}
	return Outcome{}, false
}
