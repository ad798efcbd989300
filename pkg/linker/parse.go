package linker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedLine is returned by ParseLine for output lines that match
// none of the known shapes.
var ErrUnrecognizedLine = errors.New("unrecognized inspection output")

// Kind classifies one line of inspection output.
type Kind int

const (
	// KindVirtual is a two-token "NAME (HASH)" line: a kernel object, the
	// program interpreter, or a relatively referenced object.
	KindVirtual Kind = iota
	// KindLinked is a four-token "NAME => PATH (HASH)" line.
	KindLinked
	// KindNotFound is a four-token "NAME => not found" line.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindVirtual:
		return "virtual"
	case KindLinked:
		return "linked"
	case KindNotFound:
		return "not-found"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one parsed line of inspection output.
type Entry struct {
	Kind Kind
	Name string // symbolic name as printed by the tool
	Path string // object path; for KindVirtual this equals Name, for KindNotFound it is empty
	Line string // original line, trimmed
}

// ParseLine parses a single line of ldd output.
// Lines with a token count other than two or four, and four-token lines
// without the "=>" separator, yield ErrUnrecognizedLine.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	switch len(fields) {
	case 2:
		return Entry{Kind: KindVirtual, Name: fields[0], Path: fields[0], Line: line}, nil
	case 4:
		if fields[1] != "=>" {
			break
		}
		if fields[2] == "not" && fields[3] == "found" {
			return Entry{Kind: KindNotFound, Name: fields[0], Line: line}, nil
		}
		return Entry{Kind: KindLinked, Name: fields[0], Path: fields[2], Line: line}, nil
	}
	return Entry{Line: line}, fmt.Errorf("%w: %q", ErrUnrecognizedLine, line)
}

// splitLines returns the trimmed, non-empty lines of out.
func splitLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
