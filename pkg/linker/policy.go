package linker

import (
	"os"
	"strings"
)

// DefaultVirtualPrefixes name kernel-provided objects that never exist on disk.
var DefaultVirtualPrefixes = []string{"linux-vdso.so", "linux-gate.so"}

// Policy decides whether a virtual or linked entry resolves.
// KindNotFound entries are unresolved regardless of policy.
type Policy interface {
	Resolved(e Entry) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(e Entry) bool

// Resolved calls f(e).
func (f PolicyFunc) Resolved(e Entry) bool { return f(e) }

// DefaultPolicy implements the standard heuristics:
//   - virtual entries whose name starts with one of VirtualPrefixes resolve;
//   - virtual entries that are not absolute paths resolve;
//   - everything else resolves iff Exists reports the path present.
type DefaultPolicy struct {
	VirtualPrefixes []string
	Exists          func(path string) bool
}

// NewDefaultPolicy returns a DefaultPolicy probing the real filesystem, with
// the built-in prefixes plus any extra ones.
func NewDefaultPolicy(extraPrefixes ...string) *DefaultPolicy {
	prefixes := append([]string(nil), DefaultVirtualPrefixes...)
	prefixes = append(prefixes, extraPrefixes...)
	return &DefaultPolicy{VirtualPrefixes: prefixes, Exists: FileExists}
}

// Resolved implements Policy.
func (p *DefaultPolicy) Resolved(e Entry) bool {
	switch e.Kind {
	case KindNotFound:
		return false
	case KindVirtual:
		for _, prefix := range p.VirtualPrefixes {
			if strings.HasPrefix(e.Name, prefix) {
				return true
			}
		}
		if !strings.HasPrefix(e.Path, "/") {
			return true
		}
	}
	exists := p.Exists
	if exists == nil {
		exists = FileExists
	}
	return exists(e.Path)
}

// FileExists reports whether path names something that is not a directory,
// following symlinks. It is a point-in-time check.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
