package rebuild

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	rlerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/linker"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/outdated"
)

type fakeDB struct {
	installed map[string]bool
	failing   map[string]bool
	existsErr error
	installs  []string
	lookups   []string
}

func (db *fakeDB) Exists(_ context.Context, pkg string) (bool, error) {
	db.lookups = append(db.lookups, pkg)
	if db.existsErr != nil {
		return false, db.existsErr
	}
	return db.installed[pkg], nil
}

func (db *fakeDB) Install(_ context.Context, pkg string) error {
	db.installs = append(db.installs, pkg)
	if db.failing[pkg] {
		return rlerrors.New(rlerrors.ErrCodeInstallFailed, "install %s", pkg)
	}
	return nil
}

type fakeChecker struct {
	outdated map[string]bool
	err      error
	checked  []string
}

func (c *fakeChecker) Check(_ context.Context, pkg string) (outdated.Verdict, error) {
	c.checked = append(c.checked, pkg)
	if c.err != nil {
		return outdated.Verdict{}, c.err
	}
	v := outdated.Verdict{Files: map[string][]linker.Reference{}}
	if c.outdated[pkg] {
		v.Outdated = true
		v.Files["/usr/bin/"+pkg] = []linker.Reference{{Name: "libgone.so.1"}}
	}
	return v, nil
}

type scriptedConfirmer struct {
	answers   []bool
	questions []string
}

func (s *scriptedConfirmer) Confirm(_ context.Context, q string) (bool, error) {
	s.questions = append(s.questions, q)
	if len(s.answers) == 0 {
		return true, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func installedSet(pkgs ...string) map[string]bool {
	m := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		m[p] = true
	}
	return m
}

func quiet() *log.Logger { return log.New(&strings.Builder{}) }

func states(r *Report) []State {
	s := make([]State, len(r.Outcomes))
	for i, o := range r.Outcomes {
		s[i] = o.State
	}
	return s
}

func TestRunStates(t *testing.T) {
	db := &fakeDB{installed: installedSet("a", "b", "c", "d"), failing: installedSet("c")}
	checker := &fakeChecker{outdated: installedSet("b", "c")}
	o := New(db, checker, nil, quiet())

	plan := []string{"a", "b", "gone", "c", "d", "skipme"}
	r, err := o.Run(context.Background(), plan, Options{Ignore: []string{"skipme"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []State{StateSkipped, StateInstalled, StateMissing, StateFailed, StateSkipped, StateIgnored}
	if got := states(r); !reflect.DeepEqual(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(db.installs, []string{"b", "c"}) {
		t.Errorf("installs = %v", db.installs)
	}
	if slicesContain(db.lookups, "skipme") {
		t.Error("ignored package must not be queried")
	}
	if r.Aborted {
		t.Error("non-interactive run must not abort")
	}
	if r.RunID == uuid.Nil {
		t.Error("RunID not set")
	}
	out, _ := r.Outcome("c")
	if !rlerrors.Is(out.Err, rlerrors.ErrCodeInstallFailed) || out.Error == "" {
		t.Errorf("failed outcome = %+v", out)
	}
	if out, _ := r.Outcome("b"); len(out.Files) != 1 {
		t.Errorf("needs-rebuild outcome should carry broken files, got %+v", out)
	}
	if got := r.Count(StateSkipped); got != 2 {
		t.Errorf("Count(skipped) = %d, want 2", got)
	}
	if got := r.Packages(StateInstalled); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Packages(installed) = %v", got)
	}
}

func TestRunDryRun(t *testing.T) {
	db := &fakeDB{installed: installedSet("a", "b")}
	checker := &fakeChecker{outdated: installedSet("a", "b")}
	o := New(db, checker, nil, quiet())

	r, err := o.Run(context.Background(), []string{"a", "b"}, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := states(r); !reflect.DeepEqual(got, []State{StateNeedsRebuild, StateNeedsRebuild}) {
		t.Errorf("states = %v", got)
	}
	if len(db.installs) != 0 {
		t.Errorf("dry run installed %v", db.installs)
	}
	if !r.DryRun {
		t.Error("report should record the dry run")
	}
}

func TestRunInteractiveAbort(t *testing.T) {
	db := &fakeDB{installed: installedSet("a", "b", "c"), failing: installedSet("a")}
	checker := &fakeChecker{outdated: installedSet("a", "b", "c")}
	conf := &scriptedConfirmer{answers: []bool{false}}
	o := New(db, checker, conf, quiet())

	r, err := o.Run(context.Background(), []string{"a", "b", "c"}, Options{Interactive: true})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Aborted {
		t.Error("Aborted = false, want true")
	}
	want := []State{StateFailed, StatePending, StatePending}
	if got := states(r); !reflect.DeepEqual(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(checker.checked, []string{"a"}) {
		t.Errorf("checked after abort: %v", checker.checked)
	}
	if !reflect.DeepEqual(conf.questions, []string{"Continue?"}) {
		t.Errorf("questions = %v", conf.questions)
	}
}

func TestRunInteractiveContinue(t *testing.T) {
	db := &fakeDB{installed: installedSet("a", "b"), failing: installedSet("a")}
	checker := &fakeChecker{outdated: installedSet("a", "b")}
	conf := &scriptedConfirmer{answers: []bool{true}}
	o := New(db, checker, conf, quiet())

	r, err := o.Run(context.Background(), []string{"a", "b"}, Options{Interactive: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.Aborted {
		t.Error("run should continue after a yes")
	}
	if got := states(r); !reflect.DeepEqual(got, []State{StateFailed, StateInstalled}) {
		t.Errorf("states = %v", got)
	}
}

func TestRunConfirmEach(t *testing.T) {
	db := &fakeDB{installed: installedSet("a", "b")}
	checker := &fakeChecker{outdated: installedSet("a", "b")}
	conf := &scriptedConfirmer{answers: []bool{false, true}}
	o := New(db, checker, conf, quiet())

	r, err := o.Run(context.Background(), []string{"a", "b"}, Options{ConfirmEach: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := states(r); !reflect.DeepEqual(got, []State{StateSkippedByUser, StateInstalled}) {
		t.Errorf("states = %v", got)
	}
	if !reflect.DeepEqual(db.installs, []string{"b"}) {
		t.Errorf("installs = %v", db.installs)
	}
}

func TestRunForce(t *testing.T) {
	db := &fakeDB{installed: installedSet("a")}
	checker := &fakeChecker{}
	o := New(db, checker, nil, quiet())

	r, err := o.Run(context.Background(), []string{"a"}, Options{Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(checker.checked) != 0 {
		t.Errorf("forced run checked %v", checker.checked)
	}
	if r.Count(StateInstalled) != 1 {
		t.Errorf("states = %v", states(r))
	}
}

func TestRunQueryFailureIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		db      *fakeDB
		checker *fakeChecker
		code    rlerrors.Code
	}{
		{
			name:    "exists",
			db:      &fakeDB{existsErr: rlerrors.New(rlerrors.ErrCodeTimeout, "yay timed out")},
			checker: &fakeChecker{},
			code:    rlerrors.ErrCodeTimeout,
		},
		{
			name:    "files",
			db:      &fakeDB{installed: installedSet("a", "b")},
			checker: &fakeChecker{err: rlerrors.New(rlerrors.ErrCodeToolFailure, "list files of a")},
			code:    rlerrors.ErrCodeToolFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(tt.db, tt.checker, nil, quiet())
			r, err := o.Run(context.Background(), []string{"a", "b"}, Options{})
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if !rlerrors.Is(err, tt.code) {
				t.Errorf("error code = %q, want %q", rlerrors.GetCode(err), tt.code)
			}
			if r == nil || !reflect.DeepEqual(states(r), []State{StatePending, StatePending}) {
				t.Errorf("report = %+v, want all pending", r)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(&fakeDB{installed: installedSet("a")}, &fakeChecker{}, nil, quiet())
	_, err := o.Run(ctx, []string{"a"}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunDoesNotMutatePlan(t *testing.T) {
	plan := []string{"c", "a", "b"}
	o := New(&fakeDB{installed: installedSet("a", "b", "c")}, &fakeChecker{}, nil, quiet())
	if _, err := o.Run(context.Background(), plan, Options{}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan, []string{"c", "a", "b"}) {
		t.Errorf("plan mutated: %v", plan)
	}
}

func TestRunProgressAndHooks(t *testing.T) {
	counters := &observability.Counters{}
	observability.SetRebuildHooks(counters)
	defer observability.Reset()

	db := &fakeDB{installed: installedSet("a", "b")}
	o := New(db, &fakeChecker{}, nil, quiet())

	var progress []string
	var outcomes []string
	opts := Options{
		Ignore: []string{"x"},
		OnProgress: func(i, n int, pkg string) {
			progress = append(progress, fmt.Sprintf("%s:%d/%d", pkg, i, n))
		},
		OnOutcome: func(o Outcome) { outcomes = append(outcomes, o.Package+"="+string(o.State)) },
	}
	if _, err := o.Run(context.Background(), []string{"a", "x", "gone", "b"}, opts); err != nil {
		t.Fatal(err)
	}
	if want := []string{"a:1/3", "gone:2/3", "b:3/3"}; !reflect.DeepEqual(progress, want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
	if want := []string{"a=skipped", "x=ignored", "gone=missing", "b=skipped"}; !reflect.DeepEqual(outcomes, want) {
		t.Errorf("outcomes = %v, want %v", outcomes, want)
	}
	if s := counters.Snapshot(); s.Skipped != 2 {
		t.Errorf("skip hooks = %d, want 2", s.Skipped)
	}
}

func TestStateFinal(t *testing.T) {
	for _, s := range []State{StatePending, StateChecked} {
		if s.Final() {
			t.Errorf("%s should not be final", s)
		}
	}
	for _, s := range []State{StateSkipped, StateNeedsRebuild, StateInstalled, StateFailed, StateSkippedByUser, StateMissing, StateIgnored} {
		if !s.Final() {
			t.Errorf("%s should be final", s)
		}
	}
}

func slicesContain(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
