// Package config loads relink's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/relink/config.toml, falling back to
// ~/.config/relink/config.toml. A missing file is not an error: every key
// has a default.
//
//	package_manager = "paru"
//	inspector = "ldd"
//	ignore = ["zoom", "spotify"]
//
//	[timeouts]
//	inspection = "30s"
//	query = "2m"
//	install = "2h"
//
//	[linker]
//	virtual_prefixes = ["linux-vdso64.so"]
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/relink/pkg/command"
	rlerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/linker"
	"github.com/matzehuels/relink/pkg/pkgdb"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.toml"

// Config is the decoded configuration.
type Config struct {
	PackageManager string   `toml:"package_manager"`
	Inspector      string   `toml:"inspector"`
	Ignore         []string `toml:"ignore"`
	Timeouts       Timeouts `toml:"timeouts"`
	Linker         Linker   `toml:"linker"`
}

// Timeouts bounds each class of external process.
type Timeouts struct {
	Inspection Duration `toml:"inspection"`
	Query      Duration `toml:"query"`
	Install    Duration `toml:"install"`
}

// Linker tunes link resolution.
type Linker struct {
	// VirtualPrefixes extends the names always treated as resolved.
	VirtualPrefixes []string `toml:"virtual_prefixes"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	t := command.DefaultTimeouts()
	return Config{
		PackageManager: pkgdb.DefaultManager,
		Inspector:      linker.DefaultInspector,
		Timeouts: Timeouts{
			Inspection: Duration{t.Inspection},
			Query:      Duration{t.Query},
			Install:    Duration{t.Install},
		},
	}
}

// Path returns the default location of the configuration file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "relink", FileName)
}

// Load reads the file at path on top of the defaults. A missing file yields
// the defaults. An empty path selects [Path].
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, rlerrors.Wrap(rlerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML source on top of the defaults and validates the result.
func Parse(src string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(src, &cfg)
	if err != nil {
		return Config{}, rlerrors.Wrap(rlerrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, rlerrors.New(rlerrors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the tool cannot run with.
func (c Config) Validate() error {
	if c.PackageManager == "" {
		return rlerrors.New(rlerrors.ErrCodeInvalidConfig, "package_manager must not be empty")
	}
	if c.Inspector == "" {
		return rlerrors.New(rlerrors.ErrCodeInvalidConfig, "inspector must not be empty")
	}
	timeouts := []struct {
		name string
		d    Duration
	}{
		{"inspection", c.Timeouts.Inspection},
		{"query", c.Timeouts.Query},
		{"install", c.Timeouts.Install},
	}
	for _, t := range timeouts {
		if t.d.Duration <= 0 {
			return rlerrors.New(rlerrors.ErrCodeInvalidConfig, "timeouts.%s must be positive, got %s", t.name, t.d.Duration)
		}
	}
	if err := rlerrors.ValidatePackageNames(c.Ignore); err != nil {
		return rlerrors.Wrap(rlerrors.ErrCodeInvalidConfig, err, "ignore")
	}
	return nil
}

// CommandTimeouts converts the configured timeouts for the command runner.
func (c Config) CommandTimeouts() command.Timeouts {
	return command.Timeouts{
		Inspection: c.Timeouts.Inspection.Duration,
		Query:      c.Timeouts.Query.Duration,
		Install:    c.Timeouts.Install.Duration,
	}
}

// Policy returns the link resolution policy with the configured prefixes.
func (c Config) Policy() *linker.DefaultPolicy {
	return linker.NewDefaultPolicy(c.Linker.VirtualPrefixes...)
}
