package outdated

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/linker"
)

// OwnerLookup finds the package owning a file.
type OwnerLookup interface {
	Owner(ctx context.Context, path string) (string, error)
}

// Finding is a broken file discovered by Scan.
type Finding struct {
	File       string
	Owner      string // empty when no package owns the file
	References []linker.Reference
}

// EntryLister returns every library reference of one file.
type EntryLister interface {
	Entries(ctx context.Context, path string) ([]linker.Entry, error)
}

// probe returns the references of path that make it a finding.
type probe func(ctx context.Context, path string) ([]linker.Reference, error)

// Scan walks the tree below root and inspects every regular file, returning
// the broken ones in walk order. Owners are resolved through owners when it
// is non-nil. Unreadable directories are skipped.
func (d *Detector) Scan(ctx context.Context, root string, owners OwnerLookup) ([]Finding, error) {
	return d.walk(ctx, root, owners, d.Resolver.Unresolved)
}

// Search walks the tree below root for regular files linked against the
// library selected by m. Resolved and unresolved references match alike.
func (d *Detector) Search(ctx context.Context, root string, lister EntryLister, m *linker.Match, owners OwnerLookup) ([]Finding, error) {
	match := func(ctx context.Context, path string) ([]linker.Reference, error) {
		entries, err := lister.Entries(ctx, path)
		if err != nil {
			return nil, err
		}
		var refs []linker.Reference
		for _, e := range entries {
			if m.Matches(e) {
				refs = append(refs, linker.Reference{Name: e.Name, Path: e.Path})
			}
		}
		return refs, nil
	}
	return d.walk(ctx, root, owners, match)
}

func (d *Detector) walk(ctx context.Context, root string, owners OwnerLookup, match probe) ([]Finding, error) {
	var findings []Finding
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			d.Logger.Debug("skipping unreadable path", "path", path, "err", err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		refs, err := match(ctx, path)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}

		f := Finding{File: path, References: refs}
		if owners != nil {
			owner, err := owners.Owner(ctx, path)
			switch {
			case err == nil:
				f.Owner = owner
			case errors.Is(err, errors.ErrCodePackageNotFound):
				d.Logger.Debug("file has no owner", "file", path)
			default:
				return err
			}
		}
		for _, r := range refs {
			d.diagnose(Diagnostic{Package: f.Owner, File: path, Reference: r})
		}
		findings = append(findings, f)
		return nil
	})
	return findings, err
}

// Owners returns the distinct owning packages of findings, in first-seen
// order, skipping unowned files.
func Owners(findings []Finding) []string {
	seen := make(map[string]bool)
	var owners []string
	for _, f := range findings {
		if f.Owner == "" || seen[f.Owner] {
			continue
		}
		seen[f.Owner] = true
		owners = append(owners, f.Owner)
	}
	return owners
}
