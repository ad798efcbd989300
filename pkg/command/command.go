package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	rlerrors "github.com/matzehuels/relink/pkg/errors"
)

// Class groups invocations that share a timeout.
type Class string

const (
	ClassInspection Class = "inspection" // dynamic-linker inspection of one binary
	ClassQuery      Class = "query"      // read-only package database query
	ClassInstall    Class = "install"    // package rebuild/reinstall
)

// Default timeouts per invocation class.
const (
	DefaultInspectionTimeout = 30 * time.Second
	DefaultQueryTimeout      = 2 * time.Minute
	DefaultInstallTimeout    = 2 * time.Hour
)

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed, so orphaned grandchildren cannot block a run.
const waitDelay = 2 * time.Second

// Invocation describes one external process.
type Invocation struct {
	Class Class
	Name  string
	Args  []string

	// Passthrough streams the process output to the terminal. Stderr is
	// still captured in Result for error reporting; Stdout is not.
	Passthrough bool
}

// String returns the command line, space separated.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}
	return i.Name + " " + strings.Join(i.Args, " ")
}

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// ToolError converts an unsuccessful result into a *errors.ToolError.
func (r Result) ToolError(inv Invocation) *rlerrors.ToolError {
	return &rlerrors.ToolError{
		Command:  inv.String(),
		ExitCode: r.ExitCode,
		Stderr:   strings.TrimRight(string(r.Stderr), "\n"),
	}
}

// Runner executes invocations. Implementations block until the process has
// exited and its output has been captured in full.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// Timeouts holds the per-class time limits applied by Exec.
type Timeouts struct {
	Inspection time.Duration
	Query      time.Duration
	Install    time.Duration
}

// DefaultTimeouts returns the built-in per-class limits.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Inspection: DefaultInspectionTimeout,
		Query:      DefaultQueryTimeout,
		Install:    DefaultInstallTimeout,
	}
}

// For returns the limit for class c. Unknown classes get the query limit.
func (t Timeouts) For(c Class) time.Duration {
	switch c {
	case ClassInspection:
		return t.Inspection
	case ClassInstall:
		return t.Install
	default:
		return t.Query
	}
}

// Exec runs invocations as local processes via os/exec.
type Exec struct {
	Timeouts Timeouts
	Logger   *log.Logger

	// Stdout and Stderr receive passthrough output. They default to the
	// process's own standard streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec creates an Exec with the given timeouts. A nil logger falls back
// to log.Default().
func NewExec(t Timeouts, logger *log.Logger) *Exec {
	if logger == nil {
		logger = log.Default()
	}
	return &Exec{Timeouts: t, Logger: logger, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts the process described by inv and waits for it to exit.
//
// The returned error is nil whenever the process ran to completion, whatever
// its exit status. Errors are returned when the binary cannot be started,
// when the class timeout expires (code TIMEOUT), or when ctx is cancelled
// (the context error is returned unwrapped).
func (e *Exec) Run(ctx context.Context, inv Invocation) (Result, error) {
	timeout := e.Timeouts.For(inv.Class)
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Name, inv.Args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	if inv.Passthrough {
		cmd.Stdout = e.stdout()
		cmd.Stderr = io.MultiWriter(e.stderr(), &stderr)
		cmd.Stdin = os.Stdin
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()
	e.Logger.Debug("ran command", "cmd", inv.String(), "class", inv.Class, "duration", time.Since(start).Round(time.Millisecond))

	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, rlerrors.New(rlerrors.ErrCodeTimeout, "%s: %s did not finish within %s", inv.Class, inv.String(), timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, rlerrors.Wrap(rlerrors.ErrCodeToolFailure, err, "start %s", inv.Name)
}

func (e *Exec) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

// Compile-time interface check.
var _ Runner = (*Exec)(nil)

// Output is a convenience for tests and fakes: it builds a successful
// Result from a stdout string.
func Output(stdout string) Result {
	return Result{Stdout: []byte(stdout)}
}

// Failure builds a Result with the given exit code and stderr text.
func Failure(code int, stderr string) Result {
	return Result{ExitCode: code, Stderr: []byte(stderr)}
}

// String implements fmt.Stringer for log output.
func (c Class) String() string { return string(c) }
