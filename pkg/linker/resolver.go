package linker

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/command"
	"github.com/matzehuels/relink/pkg/observability"
)

// DefaultInspector is the dynamic-linker inspection tool.
const DefaultInspector = "ldd"

// Reference is a library reference that could not be resolved.
type Reference struct {
	Name string `json:"name" yaml:"name"`                     // symbolic name, e.g. "libfoo.so.1"
	Path string `json:"path,omitempty" yaml:"path,omitempty"` // expected location, empty when the linker found none
}

// String returns the most specific description of the reference.
func (r Reference) String() string {
	if r.Path != "" && r.Path != r.Name {
		return r.Name + " (" + r.Path + ")"
	}
	return r.Name
}

// Resolver lists the unresolved library references of binaries.
type Resolver struct {
	Runner    command.Runner
	Inspector string
	Policy    Policy
	Logger    *log.Logger
}

// NewResolver creates a Resolver using ldd.
// A nil policy selects NewDefaultPolicy(); a nil logger selects log.Default().
func NewResolver(r command.Runner, p Policy, logger *log.Logger) *Resolver {
	if p == nil {
		p = NewDefaultPolicy()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Runner: r, Inspector: DefaultInspector, Policy: p, Logger: logger}
}

// Unresolved inspects binaryPath and returns its unresolved references in
// output order.
//
// A failing inspection (directory, script, not a dynamic executable, no
// permission) means the file cannot be broken, and yields no references and
// a nil error. Errors are returned only when the inspection could not be
// carried out at all: the tool is missing, timed out, or ctx was cancelled.
func (r *Resolver) Unresolved(ctx context.Context, binaryPath string) ([]Reference, error) {
	start := time.Now()
	entries, err := r.Entries(ctx, binaryPath)
	if err != nil {
		return nil, err
	}

	var refs []Reference
	for _, e := range entries {
		if e.Kind != KindNotFound && r.Policy.Resolved(e) {
			continue
		}
		refs = append(refs, Reference{Name: e.Name, Path: e.Path})
	}
	observability.Linker().OnInspect(ctx, binaryPath, len(refs), time.Since(start))
	return refs, nil
}

// Entries inspects binaryPath and returns every recognized output line,
// resolved or not. Unrecognized lines are logged and dropped. A failing
// inspection yields no entries.
func (r *Resolver) Entries(ctx context.Context, binaryPath string) ([]Entry, error) {
	inv := command.Invocation{Class: command.ClassInspection, Name: r.inspector(), Args: []string{binaryPath}}
	res, err := r.Runner.Run(ctx, inv)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		r.Logger.Debug("no link information", "file", binaryPath, "status", res.ExitCode)
		return nil, nil
	}

	var entries []Entry
	for _, line := range splitLines(string(res.Stdout)) {
		e, err := ParseLine(line)
		if err != nil {
			r.Logger.Warn("ignoring inspection output", "file", binaryPath, "line", line)
			observability.Linker().OnAnomaly(ctx, binaryPath, line)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Resolver) inspector() string {
	if r.Inspector == "" {
		return DefaultInspector
	}
	return r.Inspector
}
