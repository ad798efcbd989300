package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLinkerHooks{}
	l.OnInspect(ctx, "/usr/bin/foo", 1, time.Millisecond)
	l.OnAnomaly(ctx, "/usr/bin/foo", "statically linked extra")

	r := NoopRebuildHooks{}
	r.OnVerdict(ctx, "foo", true, 2)
	r.OnInstall(ctx, "foo", time.Second, nil)
	r.OnSkip(ctx, "foo", "missing")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Linker().(NoopLinkerHooks); !ok {
		t.Error("Linker() should return NoopLinkerHooks by default")
	}
	if _, ok := Rebuild().(NoopRebuildHooks); !ok {
		t.Error("Rebuild() should return NoopRebuildHooks by default")
	}

	c := &Counters{}
	SetLinkerHooks(c)
	SetRebuildHooks(c)
	if Linker() != c {
		t.Error("SetLinkerHooks should set custom hooks")
	}
	if Rebuild() != c {
		t.Error("SetRebuildHooks should set custom hooks")
	}

	Reset()
	if _, ok := Linker().(NoopLinkerHooks); !ok {
		t.Error("Reset() should restore NoopLinkerHooks")
	}
	if _, ok := Rebuild().(NoopRebuildHooks); !ok {
		t.Error("Reset() should restore NoopRebuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	c := &Counters{}
	SetLinkerHooks(c)
	SetLinkerHooks(nil)
	if Linker() != c {
		t.Error("SetLinkerHooks(nil) should keep existing hooks")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := &Counters{}

	c.OnInspect(ctx, "/a", 0, 10*time.Millisecond)
	c.OnInspect(ctx, "/b", 2, 20*time.Millisecond)
	c.OnAnomaly(ctx, "/b", "weird line here now")
	c.OnVerdict(ctx, "x", true, 1)
	c.OnVerdict(ctx, "y", false, 0)
	c.OnInstall(ctx, "x", time.Second, nil)
	c.OnInstall(ctx, "z", time.Second, errors.New("build failed"))
	c.OnSkip(ctx, "w", "missing")

	got := c.Snapshot()
	want := Stats{
		Inspections: 2,
		Anomalies:   1,
		Outdated:    1,
		Installs:    2,
		Failures:    1,
		Skipped:     1,
		InspectTime: 30 * time.Millisecond,
		InstallTime: 2 * time.Second,
	}
	if got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}
