package errors

import "unicode"

// maxPackageNameLen bounds package names accepted from the command line.
const maxPackageNameLen = 256

// ValidatePackageName checks that name is usable as a package manager
// argument. Names are restricted to the pacman character set (letters,
// digits and @._+-) and may not start with a hyphen, so a name can never be
// mistaken for a flag by the package manager.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "package name cannot be empty")
	}
	if len(name) > maxPackageNameLen {
		return New(ErrCodeInvalidInput, "package name too long (max %d characters)", maxPackageNameLen)
	}
	if name[0] == '-' || name[0] == '.' {
		return New(ErrCodeInvalidInput, "package name %q must not start with %q", name, name[0])
	}
	for _, r := range name {
		if r > unicode.MaxASCII {
			return New(ErrCodeInvalidInput, "package name %q contains non-ASCII characters", name)
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '_', '+', '-':
			continue
		}
		return New(ErrCodeInvalidInput, "package name %q contains invalid character %q", name, r)
	}
	return nil
}

// ValidatePackageNames validates every name in names, returning the first error.
func ValidatePackageNames(names []string) error {
	for _, n := range names {
		if err := ValidatePackageName(n); err != nil {
			return err
		}
	}
	return nil
}
