package cli

import (
	"context"

	"github.com/matzehuels/relink/pkg/command"
	"github.com/matzehuels/relink/pkg/config"
	"github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/linker"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/outdated"
	"github.com/matzehuels/relink/pkg/pkgdb"
)

// env is the engine wired from the configuration for one command.
type env struct {
	cfg      config.Config
	db       *pkgdb.Client
	resolver *linker.Resolver
	detector *outdated.Detector
	counters *observability.Counters
	metrics  *observability.Prometheus
}

// setup loads the configuration, applies flag overrides and builds the
// engine. Hooks are registered for the lifetime of the process.
func (c *CLI) setup() (*env, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	if c.flags.packageManager != "" {
		cfg.PackageManager = c.flags.packageManager
	}
	if c.flags.inspector != "" {
		cfg.Inspector = c.flags.inspector
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("configuration loaded", "package_manager", cfg.PackageManager, "inspector", cfg.Inspector)

	runner := c.Runner
	if runner == nil {
		runner = command.NewExec(cfg.CommandTimeouts(), c.Logger)
	}

	resolver := linker.NewResolver(runner, cfg.Policy(), c.Logger)
	resolver.Inspector = cfg.Inspector
	db := pkgdb.New(runner, cfg.PackageManager, c.Logger)

	e := &env{
		cfg:      cfg,
		db:       db,
		resolver: resolver,
		detector: outdated.New(db, resolver, c.Logger),
		counters: &observability.Counters{},
	}
	e.detector.Verbose = c.flags.verbose

	linkerHooks := observability.MultiLinker{e.counters}
	rebuildHooks := observability.MultiRebuild{e.counters}
	if c.flags.metricsFile != "" {
		e.metrics = observability.NewPrometheus()
		linkerHooks = append(linkerHooks, e.metrics)
		rebuildHooks = append(rebuildHooks, e.metrics)
	}
	observability.SetLinkerHooks(linkerHooks)
	observability.SetRebuildHooks(rebuildHooks)
	return e, nil
}

// finish writes the metrics textfile when one was requested.
func (c *CLI) finish(e *env) {
	if e.metrics == nil {
		return
	}
	if err := e.metrics.WriteTextfile(c.flags.metricsFile); err != nil {
		c.Logger.Warn("could not write metrics", "file", c.flags.metricsFile, "err", err)
	}
}

// candidates returns the packages named on the command line, or every
// foreign package when none are given.
func (e *env) candidates(ctx context.Context, names []string) ([]string, error) {
	if len(names) > 0 {
		if err := errors.ValidatePackageNames(names); err != nil {
			return nil, err
		}
		return names, nil
	}
	return e.db.Foreign(ctx)
}
