// internal/pipeline/runner.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/observability"
)

// Stage is one step of a build. Stages communicate only through State.
type Stage interface {
	Name() string
	Execute(ctx context.Context, st *State) error
}

const (
	statusSuccess = "success"
	statusFailed  = "failed"
	statusSkipped = "skipped"
	statusHalted  = "halted"
)

// Runner executes stages in order with per-stage timeouts, spans, metrics
// and logs. The first failing stage ends the run.
type Runner struct {
	settings *config.Config
	logger   logger.Logger
	metrics  *metrics.Metrics
	obs      *observability.Observability
}

// NewRunner builds a runner. m and obs may be nil.
func NewRunner(settings *config.Config, log logger.Logger, m *metrics.Metrics, obs *observability.Observability) *Runner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{settings: settings, logger: log, metrics: m, obs: obs}
}

func (r *Runner) Run(ctx context.Context, st *State, stages ...Stage) (err error) {
	log := r.logger.WithFields(map[string]interface{}{"runId": st.RunID})
	if r.obs != nil {
		var span trace.Span
		ctx, span = r.obs.StartSpan(ctx, "dashboard.build", map[string]string{"run.id": st.RunID})
		defer func() { observability.EndSpan(span, err) }()
	}
	defer func() { r.countBuild(st, err) }()

	log.Info("Build started", map[string]interface{}{"stages": len(stages)})
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build cancelled before %s: %w", stage.Name(), err)
		}
		if err := r.runStage(ctx, log, st, stage); err != nil {
			return err
		}
		if st.Halted() {
			log.Info("Build halted", map[string]interface{}{"stage": stage.Name(), "reason": st.HaltReason()})
			return nil
		}
	}
	log.Info("Build finished", map[string]interface{}{
		"mode":     st.Mode,
		"files":    len(st.ExportedFiles),
		"warnings": len(st.Warnings()),
		"duration": time.Since(st.StartedAt).String(),
	})
	return nil
}

func (r *Runner) runStage(ctx context.Context, log logger.Logger, st *State, stage Stage) (err error) {
	name := stage.Name()
	log = log.WithFields(map[string]interface{}{"stage": name})

	if !config.IsStageEnabled(r.settings, name) {
		log.Info("Stage disabled, skipping", nil)
		r.countStage(ctx, name, statusSkipped, 0)
		return nil
	}

	sc := config.GetStageConfig(r.settings, name)
	if sc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(sc.Timeout))
		defer cancel()
	}
	if r.obs != nil {
		var span trace.Span
		ctx, span = r.obs.StartSpan(ctx, "stage."+name, map[string]string{"stage": name})
		defer func() { observability.EndSpan(span, err) }()
	}

	st.stage = name
	issuesBefore := len(st.Issues)
	log.Debug("Stage started", nil)
	start := time.Now()

	err = stage.Execute(ctx, st)
	elapsed := time.Since(start)
	st.stage = ""
	r.countIssues(st.Issues[issuesBefore:])

	status := statusSuccess
	switch {
	case err != nil:
		status = statusFailed
	case st.Halted():
		status = statusHalted
	}
	r.countStage(ctx, name, status, elapsed)

	fields := map[string]interface{}{"status": status, "durationMs": elapsed.Milliseconds()}
	if err != nil {
		fields["error"] = err
		log.Error("Stage failed", fields)
		return fmt.Errorf("stage %s: %w", name, err)
	}
	log.Info("Stage completed", fields)
	return nil
}

func (r *Runner) countStage(ctx context.Context, name, status string, elapsed time.Duration) {
	if r.metrics != nil {
		r.metrics.StageRuns.WithLabelValues(name, status).Inc()
		if status != statusSkipped {
			r.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		}
	}
	if r.obs != nil {
		r.obs.RecordStage(ctx, name, status, elapsed)
	}
}

func (r *Runner) countIssues(issues []Issue) {
	if r.metrics == nil {
		return
	}
	for _, i := range issues {
		r.metrics.Issues.WithLabelValues(string(i.Severity)).Inc()
	}
}

func (r *Runner) countBuild(st *State, err error) {
	if r.metrics == nil {
		return
	}
	status := statusSuccess
	switch {
	case err != nil:
		status = statusFailed
	case st.Halted():
		status = statusHalted
	}
	r.metrics.Builds.WithLabelValues(status).Inc()
}
