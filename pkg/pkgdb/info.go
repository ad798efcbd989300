package pkgdb

import (
	"bufio"
	"strings"
)

// Info is the subset of package metadata relink uses.
type Info struct {
	Name      string
	Version   string
	DependsOn []string
	Fields    map[string]string // every field as printed, continuation lines joined by a space
}

// ParseInfo parses the output of a single-package "-Qi" query.
//
// Fields are "Key : Value" lines. Long values wrap onto lines that start with
// whitespace; those are appended to the preceding field.
func ParseInfo(out string) Info {
	fields := make(map[string]string)
	var key string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if key != "" {
				fields[key] = strings.TrimSpace(fields[key] + " " + strings.TrimSpace(line))
			}
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(k)
		fields[key] = strings.TrimSpace(v)
	}

	return Info{
		Name:      fields["Name"],
		Version:   fields["Version"],
		DependsOn: ParseDependsOn(fields["Depends On"]),
		Fields:    fields,
	}
}

// ParseDependsOn splits a "Depends On" value into bare package names.
// "None" yields nil. Version constraints are dropped ("glibc>=2.38" becomes
// "glibc") and duplicates are removed, keeping first occurrence order.
func ParseDependsOn(value string) []string {
	var deps []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(value) {
		if tok == "None" {
			continue
		}
		if i := strings.IndexAny(tok, "<>="); i >= 0 {
			tok = tok[:i]
		}
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		deps = append(deps, tok)
	}
	return deps
}

// parseList returns the trimmed, non-empty lines of out.
func parseList(out string) []string {
	var items []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			items = append(items, l)
		}
	}
	return items
}
