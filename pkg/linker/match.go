package linker

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Match selects library references by name and version.
//
// Name matches as a substring of the symbolic name. Version is either a
// plain fragment such as "1.63", also matched as a substring, or a
// constraint such as ">=1.63, <1.66" checked against the soname version.
type Match struct {
	Name    string
	Version string

	constraint *semver.Constraints
}

// NewMatch validates version and returns a Match.
func NewMatch(name, version string) (*Match, error) {
	if name == "" {
		return nil, fmt.Errorf("library name must not be empty")
	}
	m := &Match{Name: name, Version: version}
	if strings.ContainsAny(version, "<>=~^*, ") {
		c, err := semver.NewConstraint(version)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint %q: %w", version, err)
		}
		m.constraint = c
	}
	return m, nil
}

// Matches reports whether e refers to the selected library.
func (m *Match) Matches(e Entry) bool {
	if !strings.Contains(e.Name, m.Name) {
		return false
	}
	if m.constraint == nil {
		return strings.Contains(e.Name, m.Version)
	}
	raw := SonameVersion(e.Name)
	if raw == "" {
		return false
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return false
	}
	return m.constraint.Check(v)
}

// SonameVersion returns the version suffix of a shared object name:
// "1.63.0" for "libboost_system.so.1.63.0". It is empty for unversioned
// names.
func SonameVersion(name string) string {
	i := strings.LastIndex(name, ".so.")
	if i < 0 {
		return ""
	}
	return name[i+len(".so."):]
}
