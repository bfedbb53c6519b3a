// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the builder's Prometheus collectors on a private registry.
// A CLI run has no scrape endpoint, so the registry is flushed to a
// textfile-collector file at the end of a build when configured.
type Metrics struct {
	Registry *prometheus.Registry

	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RowsLoaded    *prometheus.CounterVec
	FilesLoaded   *prometheus.CounterVec
	Issues        *prometheus.CounterVec
	FilesExported prometheus.Counter
	Builds        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		StageRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_builder_stage_runs_total",
				Help: "Total number of pipeline stage runs by outcome",
			},
			[]string{"stage", "status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_builder_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		RowsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_builder_rows_loaded_total",
				Help: "Rows loaded from input CSV files",
			},
			[]string{"source"},
		),
		FilesLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_builder_files_loaded_total",
				Help: "Input CSV files loaded",
			},
			[]string{"source"},
		),
		Issues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_builder_issues_total",
				Help: "Data and configuration issues found during a build",
			},
			[]string{"severity"},
		),
		FilesExported: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_builder_files_exported_total",
				Help: "JSON files written to the output directory",
			},
		),
		Builds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_builder_builds_total",
				Help: "Dashboard builds by outcome",
			},
			[]string{"status"},
		),
	}
}

// WriteTextfile writes every registered metric in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
