package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	rlerrors "github.com/matzehuels/relink/pkg/errors"
)

func quietExec(t Timeouts) *Exec {
	return NewExec(t, log.New(&strings.Builder{}))
}

func TestInvocationString(t *testing.T) {
	tests := []struct {
		inv  Invocation
		want string
	}{
		{Invocation{Name: "ldd", Args: []string{"/usr/bin/foo"}}, "ldd /usr/bin/foo"},
		{Invocation{Name: "yay", Args: []string{"--noconfirm", "-Qqm"}}, "yay --noconfirm -Qqm"},
		{Invocation{Name: "true"}, "true"},
	}
	for _, tt := range tests {
		if got := tt.inv.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTimeoutsFor(t *testing.T) {
	to := Timeouts{Inspection: time.Second, Query: 2 * time.Second, Install: 3 * time.Second}
	if got := to.For(ClassInspection); got != time.Second {
		t.Errorf("inspection = %v", got)
	}
	if got := to.For(ClassQuery); got != 2*time.Second {
		t.Errorf("query = %v", got)
	}
	if got := to.For(ClassInstall); got != 3*time.Second {
		t.Errorf("install = %v", got)
	}
	if got := to.For(Class("other")); got != 2*time.Second {
		t.Errorf("unknown class = %v, want query timeout", got)
	}
}

func TestExecCapturesOutputAndExitCode(t *testing.T) {
	e := quietExec(DefaultTimeouts())
	inv := Invocation{Class: ClassQuery, Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}}

	res, err := e.Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Success() {
		t.Error("Success() = true, want false")
	}
	if strings.TrimSpace(string(res.Stdout)) != "out" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(string(res.Stderr)) != "err" {
		t.Errorf("Stderr = %q", res.Stderr)
	}

	te := res.ToolError(inv)
	if te.ExitCode != 3 || te.Stderr != "err" {
		t.Errorf("ToolError = %+v", te)
	}
}

func TestExecTimeout(t *testing.T) {
	e := quietExec(Timeouts{Inspection: 50 * time.Millisecond, Query: time.Minute, Install: time.Minute})
	inv := Invocation{Class: ClassInspection, Name: "sleep", Args: []string{"5"}}

	start := time.Now()
	_, err := e.Run(context.Background(), inv)
	if !rlerrors.Is(err, rlerrors.ErrCodeTimeout) {
		t.Fatalf("Run() error = %v, want TIMEOUT", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Run() took %v, timeout not applied", elapsed)
	}
}

func TestExecCancelled(t *testing.T) {
	e := quietExec(DefaultTimeouts())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, Invocation{Class: ClassQuery, Name: "sleep", Args: []string{"5"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestExecMissingBinary(t *testing.T) {
	e := quietExec(DefaultTimeouts())
	_, err := e.Run(context.Background(), Invocation{Class: ClassQuery, Name: "relink-no-such-binary"})
	if !rlerrors.Is(err, rlerrors.ErrCodeToolFailure) {
		t.Fatalf("Run() error = %v, want TOOL_FAILURE", err)
	}
}

func TestExecPassthrough(t *testing.T) {
	var out, errOut strings.Builder
	e := quietExec(DefaultTimeouts())
	e.Stdout = &out
	e.Stderr = &errOut

	inv := Invocation{Class: ClassInstall, Name: "sh", Args: []string{"-c", "echo building; echo failed >&2; exit 1"}, Passthrough: true}
	res, err := e.Run(context.Background(), inv)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "building") {
		t.Errorf("passthrough stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "failed") {
		t.Errorf("passthrough stderr = %q", errOut.String())
	}
	if strings.TrimSpace(string(res.Stderr)) != "failed" {
		t.Errorf("captured stderr = %q", res.Stderr)
	}
	if len(res.Stdout) != 0 {
		t.Errorf("captured stdout = %q, want empty in passthrough", res.Stdout)
	}
}

func TestFake(t *testing.T) {
	f := NewFake().
		On("yay --noconfirm -Qqm", Output("a\nb\n")).
		Fail("ldd /broken", errors.New("boom"))
	f.Handler = func(inv Invocation) (Result, error) {
		if inv.Name == "ldd" {
			return Output("linux-vdso.so.1 (0x1)\n"), nil
		}
		return Failure(1, "nope"), nil
	}
	ctx := context.Background()

	res, err := f.Run(ctx, Invocation{Name: "yay", Args: []string{"--noconfirm", "-Qqm"}})
	if err != nil || string(res.Stdout) != "a\nb\n" {
		t.Errorf("scripted response = %q, %v", res.Stdout, err)
	}
	if _, err := f.Run(ctx, Invocation{Name: "ldd", Args: []string{"/broken"}}); err == nil {
		t.Error("scripted error not returned")
	}
	res, _ = f.Run(ctx, Invocation{Name: "ldd", Args: []string{"/other"}})
	if !strings.Contains(string(res.Stdout), "vdso") {
		t.Errorf("handler response = %q", res.Stdout)
	}

	want := []string{"yay --noconfirm -Qqm", "ldd /broken", "ldd /other"}
	got := f.CallLines()
	if len(got) != len(want) {
		t.Fatalf("CallLines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CallLines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFakeUnscripted(t *testing.T) {
	res, err := NewFake().Run(context.Background(), Invocation{Name: "x"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
}
