package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/relink/pkg/command"
	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/rebuild"
)

func info(name string, deps ...string) command.Result {
	dependsOn := "None"
	if len(deps) > 0 {
		dependsOn = strings.Join(deps, "  ")
	}
	return command.Output("Name            : " + name + "\nVersion         : 1.0-1\nDepends On      : " + dependsOn + "\n")
}

// execute runs the root command with args against runner and returns stdout.
func execute(t *testing.T, runner command.Runner, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	c.Runner = runner
	c.In = strings.NewReader("")

	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"check", "order", "scan", "search", "graph", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, flag := range []string{"verbose", "config", "package-manager", "inspector", "metrics-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestOrderCommand(t *testing.T) {
	fake := command.NewFake().
		On("yay --noconfirm -Qqm", command.Output("X\nY\nZ\n")).
		On("yay --noconfirm -Qi X", info("X", "Y", "glibc")).
		On("yay --noconfirm -Qi Y", info("Y", "Z")).
		On("yay --noconfirm -Qi Z", info("Z"))

	out, err := execute(t, fake, "order")
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := "Z\nY\nX\n"; out != want {
		t.Errorf("order output = %q, want %q", out, want)
	}
}

func TestOrderCommandLayers(t *testing.T) {
	fake := command.NewFake().
		On("yay --noconfirm -Qi a", info("a", "c")).
		On("yay --noconfirm -Qi b", info("b", "c")).
		On("yay --noconfirm -Qi c", info("c"))

	out, err := execute(t, fake, "order", "--layers", "a", "b", "c")
	if err != nil {
		t.Fatalf("order --layers: %v", err)
	}
	if want := "1: c\n2: a b\n"; out != want {
		t.Errorf("order --layers output = %q, want %q", out, want)
	}
}

func TestOrderCommandCycle(t *testing.T) {
	fake := command.NewFake().
		On("yay --noconfirm -Qi a", info("a", "b")).
		On("yay --noconfirm -Qi b", info("b", "a"))

	out, err := execute(t, fake, "order", "a", "b")
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !errors.Is(err, errors.ErrCodeDependencyCycle) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeDependencyCycle)
	}
	if out != "" {
		t.Errorf("no order expected on cycle, got %q", out)
	}
}

func TestOrderCommandRejectsBadNames(t *testing.T) {
	_, err := execute(t, command.NewFake(), "order", "bad/name")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCheckCommandDryRunJSON(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "zoom")
	if err := os.WriteFile(bin, []byte("ELF"), 0o755); err != nil {
		t.Fatal(err)
	}

	fake := command.NewFake().
		On("yay --noconfirm -Q zoom", command.Output("zoom 1.0-1\n")).
		On("yay --noconfirm -Qql zoom", command.Output(dir+"/\n"+bin+"\n")).
		On("ldd "+bin, command.Output("\tlinux-vdso.so.1 (0x00007ffd)\n\tlibicu.so.73 => not found\n"))

	out, err := execute(t, fake, "check", "--dry-run", "--output", "json", "zoom")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	var report rebuild.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !report.DryRun || len(report.Outcomes) != 1 {
		t.Fatalf("report = %+v", report)
	}
	o := report.Outcomes[0]
	if o.Package != "zoom" || o.State != rebuild.StateNeedsRebuild {
		t.Errorf("outcome = %+v, want zoom needs-rebuild", o)
	}
	if refs := o.Files[bin]; len(refs) != 1 || refs[0].Name != "libicu.so.73" {
		t.Errorf("files = %+v", o.Files)
	}
	for _, line := range fake.CallLines() {
		if strings.Contains(line, " -S ") {
			t.Errorf("dry run must not install, saw %q", line)
		}
	}
}

func TestCheckCommandRejectsBadOutput(t *testing.T) {
	_, err := execute(t, command.NewFake(), "check", "--output", "xml")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, command.NewFake(), "--package-manager", "paru", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, `package_manager = "paru"`) {
		t.Errorf("config output missing override:\n%s", out)
	}
	if !strings.Contains(out, `inspector = "ldd"`) {
		t.Errorf("config output missing default inspector:\n%s", out)
	}
}

func TestGraphJSONThenOrder(t *testing.T) {
	fake := command.NewFake().
		On("yay --noconfirm -Qi X", info("X", "Y")).
		On("yay --noconfirm -Qi Y", info("Y", "Z")).
		On("yay --noconfirm -Qi Z", info("Z"))

	path := filepath.Join(t.TempDir(), "deps.json")
	if _, err := execute(t, fake, "graph", "-o", path, "X", "Y", "Z"); err != nil {
		t.Fatalf("graph: %v", err)
	}

	// The saved graph is ordered without touching the package database.
	out, err := execute(t, command.NewFake(), "order", "--graph", path)
	if err != nil {
		t.Fatalf("order --graph: %v", err)
	}
	if want := "Z\nY\nX\n"; out != want {
		t.Errorf("order --graph output = %q, want %q", out, want)
	}
}

func TestOrderGraphRejectsPackages(t *testing.T) {
	_, err := execute(t, command.NewFake(), "order", "--graph", "deps.json", "zoom")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCheckCommandUnknownPackage(t *testing.T) {
	fake := command.NewFake().
		On("yay --noconfirm -Qi a", info("a")).
		On("yay --noconfirm -Q a", command.Output("a 1.0-1\n")).
		On("yay --noconfirm -Qql a", command.Output(""))

	out, err := execute(t, fake, "check", "--dry-run", "--yes", "--output", "json", "a", "gone")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	var report rebuild.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	states := make(map[string]rebuild.State)
	for _, o := range report.Outcomes {
		states[o.Package] = o.State
	}
	want := map[string]rebuild.State{"a": rebuild.StateSkipped, "gone": rebuild.StateMissing}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}
