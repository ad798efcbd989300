package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records hook events as Prometheus metrics in its own registry.
// relink runs as a one-shot command, so the registry is written to a
// node_exporter textfile instead of being scraped.
type Prometheus struct {
	Registry *prometheus.Registry

	inspections    prometheus.Counter
	inspectSeconds prometheus.Histogram
	anomalies      prometheus.Counter
	verdicts       *prometheus.CounterVec
	installs       *prometheus.CounterVec
	installSeconds prometheus.Histogram
	skips          *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// NewPrometheus creates the metrics and registers them.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		Registry: prometheus.NewRegistry(),
		inspections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relink_inspections_total",
			Help: "Files inspected for library references.",
		}),
		inspectSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relink_inspection_duration_seconds",
			Help:    "Time spent inspecting one file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relink_inspection_anomalies_total",
			Help: "Inspection output lines that were not understood.",
		}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relink_packages_checked_total",
			Help: "Packages checked, by verdict.",
		}, []string{"outdated"}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relink_installs_total",
			Help: "Install attempts, by result.",
		}, []string{"result"}),
		installSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relink_install_duration_seconds",
			Help:    "Time spent rebuilding one package.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relink_packages_skipped_total",
			Help: "Packages passed over without a check, by reason.",
		}, []string{"reason"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relink_last_run_timestamp_seconds",
			Help: "Unix time the metrics were last written.",
		}),
	}
	p.Registry.MustRegister(
		p.inspections, p.inspectSeconds, p.anomalies, p.verdicts,
		p.installs, p.installSeconds, p.skips, p.lastRun,
	)
	return p
}

func (p *Prometheus) OnInspect(_ context.Context, _ string, _ int, d time.Duration) {
	p.inspections.Inc()
	p.inspectSeconds.Observe(d.Seconds())
}

func (p *Prometheus) OnAnomaly(context.Context, string, string) {
	p.anomalies.Inc()
}

func (p *Prometheus) OnVerdict(_ context.Context, _ string, outdated bool, _ int) {
	label := "false"
	if outdated {
		label = "true"
	}
	p.verdicts.WithLabelValues(label).Inc()
}

func (p *Prometheus) OnInstall(_ context.Context, _ string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	p.installs.WithLabelValues(result).Inc()
	p.installSeconds.Observe(d.Seconds())
}

func (p *Prometheus) OnSkip(_ context.Context, _ string, reason string) {
	p.skips.WithLabelValues(reason).Inc()
}

// WriteTextfile stamps the run time and writes every metric to path in the
// text exposition format. The file is replaced atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	p.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, p.Registry)
}

// =============================================================================
// Fan-out
// =============================================================================

// MultiLinker forwards linker events to every h.
type MultiLinker []LinkerHooks

func (m MultiLinker) OnInspect(ctx context.Context, path string, unresolved int, d time.Duration) {
	for _, h := range m {
		h.OnInspect(ctx, path, unresolved, d)
	}
}

func (m MultiLinker) OnAnomaly(ctx context.Context, path, line string) {
	for _, h := range m {
		h.OnAnomaly(ctx, path, line)
	}
}

// MultiRebuild forwards rebuild events to every h.
type MultiRebuild []RebuildHooks

func (m MultiRebuild) OnVerdict(ctx context.Context, pkg string, outdated bool, brokenFiles int) {
	for _, h := range m {
		h.OnVerdict(ctx, pkg, outdated, brokenFiles)
	}
}

func (m MultiRebuild) OnInstall(ctx context.Context, pkg string, d time.Duration, err error) {
	for _, h := range m {
		h.OnInstall(ctx, pkg, d, err)
	}
}

func (m MultiRebuild) OnSkip(ctx context.Context, pkg, reason string) {
	for _, h := range m {
		h.OnSkip(ctx, pkg, reason)
	}
}
