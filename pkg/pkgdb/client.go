package pkgdb

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/command"
	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/observability"
)

// DefaultManager is the package manager used when none is configured.
const DefaultManager = "yay"

// Client talks to the package manager.
type Client struct {
	Runner  command.Runner
	Manager string
	Logger  *log.Logger
}

// New creates a Client. An empty manager selects DefaultManager; a nil
// logger selects log.Default().
func New(r command.Runner, manager string, logger *log.Logger) *Client {
	if manager == "" {
		manager = DefaultManager
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{Runner: r, Manager: manager, Logger: logger}
}

func (c *Client) invocation(class command.Class, flag string, args ...string) command.Invocation {
	return command.Invocation{
		Class: class,
		Name:  c.Manager,
		Args:  append([]string{"--noconfirm", flag}, args...),
	}
}

// query runs a read-only query and returns its stdout. Non-zero exit is an error.
func (c *Client) query(ctx context.Context, what string, flag string, args ...string) (string, error) {
	inv := c.invocation(command.ClassQuery, flag, args...)
	res, err := c.Runner.Run(ctx, inv)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", errors.Wrap(errors.ErrCodeToolFailure, res.ToolError(inv), "%s", what)
	}
	return string(res.Stdout), nil
}

// Foreign lists installed packages that are not found in the sync databases.
func (c *Client) Foreign(ctx context.Context) ([]string, error) {
	out, err := c.query(ctx, "list foreign packages", "-Qqm")
	if err != nil {
		return nil, err
	}
	return parseList(out), nil
}

// Exists reports whether pkg is installed. A non-zero exit status means the
// package is unknown; only failures to run the tool are errors.
func (c *Client) Exists(ctx context.Context, pkg string) (bool, error) {
	res, err := c.Runner.Run(ctx, c.invocation(command.ClassQuery, "-Q", pkg))
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

// Info returns the metadata of an installed package.
func (c *Client) Info(ctx context.Context, pkg string) (Info, error) {
	out, err := c.query(ctx, "query info of "+pkg, "-Qi", pkg)
	if err != nil {
		return Info{}, err
	}
	info := ParseInfo(out)
	if info.Name == "" {
		info.Name = pkg
	}
	return info, nil
}

// Dependencies returns the names pkg declares in its "Depends On" field.
func (c *Client) Dependencies(ctx context.Context, pkg string) ([]string, error) {
	info, err := c.Info(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return info.DependsOn, nil
}

// Files lists the paths owned by pkg, directories included.
func (c *Client) Files(ctx context.Context, pkg string) ([]string, error) {
	out, err := c.query(ctx, "list files of "+pkg, "-Qql", pkg)
	if err != nil {
		return nil, err
	}
	return parseList(out), nil
}

// Owner returns the package owning path. Unowned paths yield an error with
// code PACKAGE_NOT_FOUND.
func (c *Client) Owner(ctx context.Context, path string) (string, error) {
	out, err := c.query(ctx, "find owner of "+path, "-Qqo", path)
	if err != nil {
		if errors.Is(err, errors.ErrCodeToolFailure) {
			return "", errors.Wrap(errors.ErrCodePackageNotFound, err, "no package owns %s", path)
		}
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", errors.New(errors.ErrCodePackageNotFound, "no package owns %s", path)
	}
	return fields[0], nil
}

// Install rebuilds and reinstalls pkg. The package manager's output is
// streamed to the terminal.
func (c *Client) Install(ctx context.Context, pkg string) error {
	inv := c.invocation(command.ClassInstall, "-S", pkg)
	inv.Passthrough = true

	c.Logger.Debug("installing", "package", pkg, "cmd", inv.String())
	start := time.Now()
	res, err := c.Runner.Run(ctx, inv)
	if err == nil && !res.Success() {
		err = errors.Wrap(errors.ErrCodeInstallFailed, res.ToolError(inv), "install %s", pkg)
	}
	observability.Rebuild().OnInstall(ctx, pkg, time.Since(start), err)
	return err
}

// Candidates returns the declared dependencies of every package in names,
// keyed by package name. Repeated names are queried once. A package the
// database does not know has no dependencies; it stays a candidate so the
// rebuild reports it as missing. Failures to run the tool are returned.
func (c *Client) Candidates(ctx context.Context, names []string) (map[string][]string, error) {
	deps := make(map[string][]string, len(names))
	for _, name := range names {
		if _, done := deps[name]; done {
			continue
		}
		d, err := c.Dependencies(ctx, name)
		if errors.Is(err, errors.ErrCodeToolFailure) {
			c.Logger.Debug("no dependency information", "package", name, "err", err)
			d, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		if d == nil {
			d = []string{}
		}
		deps[name] = d
	}
	return deps, nil
}
