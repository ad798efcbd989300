// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine packages report events through small hook interfaces instead of
// depending on a specific backend. Defaults are no-ops; the command line
// registers [Counters] to print a run summary, and tests register recorders.
//
// # Usage
//
// Register hooks at application startup:
//
//	counters := &observability.Counters{}
//	observability.SetLinkerHooks(counters)
//	observability.SetRebuildHooks(counters)
//
// Libraries call hooks to emit events:
//
//	observability.Linker().OnInspect(ctx, path, len(unresolved), duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Linker Hooks
// =============================================================================

// LinkerHooks receives events from binary inspection.
type LinkerHooks interface {
	// OnInspect records a completed inspection of one file.
	OnInspect(ctx context.Context, path string, unresolved int, duration time.Duration)

	// OnAnomaly records an inspection output line that was not understood.
	OnAnomaly(ctx context.Context, path, line string)
}

// =============================================================================
// Rebuild Hooks
// =============================================================================

// RebuildHooks receives events from the reinstall orchestrator.
type RebuildHooks interface {
	// OnVerdict records the outdated verdict for a package.
	OnVerdict(ctx context.Context, pkg string, outdated bool, brokenFiles int)

	// OnInstall records a finished install attempt.
	OnInstall(ctx context.Context, pkg string, duration time.Duration, err error)

	// OnSkip records a package that was not checked (missing or ignored).
	OnSkip(ctx context.Context, pkg, reason string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLinkerHooks is a no-op implementation of LinkerHooks.
type NoopLinkerHooks struct{}

func (NoopLinkerHooks) OnInspect(context.Context, string, int, time.Duration) {}
func (NoopLinkerHooks) OnAnomaly(context.Context, string, string)             {}

// NoopRebuildHooks is a no-op implementation of RebuildHooks.
type NoopRebuildHooks struct{}

func (NoopRebuildHooks) OnVerdict(context.Context, string, bool, int)            {}
func (NoopRebuildHooks) OnInstall(context.Context, string, time.Duration, error) {}
func (NoopRebuildHooks) OnSkip(context.Context, string, string)                  {}

// =============================================================================
// Counters
// =============================================================================

// Stats is a point-in-time copy of the values tallied by Counters.
type Stats struct {
	Inspections int
	Anomalies   int
	Outdated    int
	Installs    int
	Failures    int
	Skipped     int

	InspectTime time.Duration
	InstallTime time.Duration
}

// Counters tallies events. It implements both hook interfaces and is safe for
// concurrent use.
type Counters struct {
	mu sync.Mutex
	s  Stats
}

func (c *Counters) OnInspect(_ context.Context, _ string, _ int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Inspections++
	c.s.InspectTime += d
}

func (c *Counters) OnAnomaly(context.Context, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Anomalies++
}

func (c *Counters) OnVerdict(_ context.Context, _ string, outdated bool, _ int) {
	if !outdated {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Outdated++
}

func (c *Counters) OnInstall(_ context.Context, _ string, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Installs++
	c.s.InstallTime += d
	if err != nil {
		c.s.Failures++
	}
}

func (c *Counters) OnSkip(context.Context, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Skipped++
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	linkerHooks  LinkerHooks  = NoopLinkerHooks{}
	rebuildHooks RebuildHooks = NoopRebuildHooks{}
	hooksMu      sync.RWMutex
)

// SetLinkerHooks registers custom linker hooks.
// This should be called once at application startup before any inspection.
func SetLinkerHooks(h LinkerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		linkerHooks = h
	}
}

// SetRebuildHooks registers custom rebuild hooks.
func SetRebuildHooks(h RebuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		rebuildHooks = h
	}
}

// Linker returns the registered linker hooks.
func Linker() LinkerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return linkerHooks
}

// Rebuild returns the registered rebuild hooks.
func Rebuild() RebuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return rebuildHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	linkerHooks = NoopLinkerHooks{}
	rebuildHooks = NoopRebuildHooks{}
}
