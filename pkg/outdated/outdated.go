// Package outdated decides whether an installed package needs a rebuild.
//
// A package is outdated when at least one of the regular files it owns
// references a shared library that no longer resolves.
package outdated

import (
	"context"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/linker"
	"github.com/matzehuels/relink/pkg/observability"
)

// FileLister lists the files owned by a package.
type FileLister interface {
	Files(ctx context.Context, pkg string) ([]string, error)
}

// LinkResolver reports the unresolved references of one file.
type LinkResolver interface {
	Unresolved(ctx context.Context, path string) ([]linker.Reference, error)
}

// Diagnostic describes one unresolved reference found in a file.
type Diagnostic struct {
	Package   string
	File      string
	Reference linker.Reference
}

// Verdict is the result of checking one package.
type Verdict struct {
	Outdated bool
	// Files maps each broken file to its unresolved references. In
	// non-verbose mode it holds at most the first broken file found.
	Files map[string][]linker.Reference
}

// BrokenFiles returns the broken files in sorted order.
func (v Verdict) BrokenFiles() []string {
	files := make([]string, 0, len(v.Files))
	for f := range v.Files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Detector checks packages for unresolved library references.
type Detector struct {
	Files    FileLister
	Resolver LinkResolver
	Logger   *log.Logger

	// Verbose makes Check inspect every file so that Diagnostics is called
	// for every unresolved reference. Otherwise Check stops at the first
	// broken file.
	Verbose     bool
	Diagnostics func(Diagnostic)

	// Stat is used to keep only regular files. Defaults to os.Lstat, so
	// symlinks are skipped; their targets are owned and checked on their own.
	Stat func(path string) (fs.FileInfo, error)
}

// New creates a Detector. A nil logger selects log.Default().
func New(files FileLister, resolver LinkResolver, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{Files: files, Resolver: resolver, Logger: logger, Stat: os.Lstat}
}

// Check reports whether pkg is outdated. Failing to list the package's files
// is an error; files that cannot be inspected are treated as healthy.
func (d *Detector) Check(ctx context.Context, pkg string) (Verdict, error) {
	files, err := d.Files.Files(ctx, pkg)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{Files: make(map[string][]linker.Reference)}
	for _, f := range d.regularFiles(files) {
		refs, err := d.Resolver.Unresolved(ctx, f)
		if err != nil {
			return Verdict{}, err
		}
		if len(refs) == 0 {
			continue
		}
		v.Outdated = true
		v.Files[f] = refs
		for _, r := range refs {
			d.diagnose(Diagnostic{Package: pkg, File: f, Reference: r})
		}
		if !d.Verbose {
			break
		}
	}

	observability.Rebuild().OnVerdict(ctx, pkg, v.Outdated, len(v.Files))
	return v, nil
}

// diagnose reports one unresolved reference through Diagnostics, or as a
// debug log line when no callback is set.
func (d *Detector) diagnose(diag Diagnostic) {
	if d.Diagnostics != nil {
		d.Diagnostics(diag)
		return
	}
	d.Logger.Debug("unresolved reference", "package", diag.Package, "file", diag.File, "missing", diag.Reference.String())
}

// regularFiles drops directory entries and anything that is not a regular
// file. Paths that cannot be stat'ed are dropped too.
func (d *Detector) regularFiles(paths []string) []string {
	stat := d.Stat
	if stat == nil {
		stat = os.Lstat
	}
	var out []string
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			continue
		}
		fi, err := stat(p)
		if err != nil {
			d.Logger.Debug("skipping unreadable file", "file", p, "err", err)
			continue
		}
		if fi.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}
