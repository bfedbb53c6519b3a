// internal/common/workflow/builtin.go
package workflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/aws"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	httpclient "github.com/mobs-lab/hubverse-dashboards/internal/common/http"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/observability"
	"github.com/mobs-lab/hubverse-dashboards/internal/hubconfig"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
	"github.com/mobs-lab/hubverse-dashboards/internal/shapes"
	"github.com/mobs-lab/hubverse-dashboards/internal/state"
	"github.com/mobs-lab/hubverse-dashboards/pkg/locations"

	ej "github.com/mobs-lab/hubverse-dashboards/internal/stages/export/export-json"
	rs "github.com/mobs-lab/hubverse-dashboards/internal/stages/export/record-state"
	sn "github.com/mobs-lab/hubverse-dashboards/internal/stages/export/send-notification"
	dc "github.com/mobs-lab/hubverse-dashboards/internal/stages/ingest/detect-changes"
	frd "github.com/mobs-lab/hubverse-dashboards/internal/stages/ingest/fetch-remote-data"
	lmo "github.com/mobs-lab/hubverse-dashboards/internal/stages/ingest/load-model-output"
	ltd "github.com/mobs-lab/hubverse-dashboards/internal/stages/ingest/load-target-data"
	bm "github.com/mobs-lab/hubverse-dashboards/internal/stages/processing/build-metadata"
	dl "github.com/mobs-lab/hubverse-dashboards/internal/stages/processing/detect-locations"
	pp "github.com/mobs-lab/hubverse-dashboards/internal/stages/processing/partition-periods"
	vd "github.com/mobs-lab/hubverse-dashboards/internal/stages/processing/validate-data"
)

const serviceName = "dashboard-builder"

// BuiltinRunner loads the hub config, optionally confirms the expected CSV
// shapes with the user and runs the pipeline in process.
type BuiltinRunner struct {
	settings *config.Config
	logger   logger.Logger
	opts     Options

	// openStore and the AWS constructors are replaced in tests.
	openStore    func(*config.Config) (state.Store, error)
	newPublisher func(ctx context.Context, region string) (sn.Publisher, error)
	newMailer    func(ctx context.Context, region string) (sn.EmailSender, error)
}

func NewBuiltinRunner(settings *config.Config, log logger.Logger, opts Options) *BuiltinRunner {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &BuiltinRunner{
		settings:  settings,
		logger:    log.WithFields(map[string]interface{}{"workflow": ModeBuiltin}),
		opts:      opts,
		openStore: state.Open,
		newPublisher: func(ctx context.Context, region string) (sn.Publisher, error) {
			return aws.NewSNSClient(ctx, region)
		},
		newMailer: func(ctx context.Context, region string) (sn.EmailSender, error) {
			return aws.NewSESClient(ctx, region)
		},
	}
}

func (r *BuiltinRunner) Run(ctx context.Context, configPath string) error {
	_, err := r.Build(ctx, configPath)
	return err
}

// Build runs one build and returns its final state. The state is nil when
// the build never got past loading the config.
func (r *BuiltinRunner) Build(ctx context.Context, configPath string) (*pipeline.State, error) {
	cfg, err := r.loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if r.settings.Workflow.ConfirmSamples {
		shapes.NewPrinter(cfg, r.opts.Out).PrintAll()
		if !r.opts.AssumeYes {
			ok, err := r.confirm("Does your data match the structure above? [y/N]: ")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrAborted
			}
		}
	}

	m := metrics.New()
	obs, err := observability.New(serviceName, m.Registry)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("Observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	store, err := r.connectStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	stages, err := r.stages(ctx, m, store)
	if err != nil {
		return nil, err
	}

	st := pipeline.NewState(r.settings, cfg)
	st.Force = r.opts.Force
	runErr := pipeline.NewRunner(r.settings, r.logger, m, obs).Run(ctx, st, stages...)

	if path := r.settings.Metrics.TextfilePath; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.settings.Project.Root, path)
		}
		if err := m.WriteTextfile(path); err != nil {
			r.logger.Warn("Could not write metrics textfile", map[string]interface{}{"path": path, "error": err.Error()})
		}
	}

	if runErr != nil {
		return st, runErr
	}
	r.printResult(st)
	return st, nil
}

func (r *BuiltinRunner) loadConfig(configPath string) (*models.DashboardConfig, error) {
	mapping := r.settings.Locations.MappingFile
	if mapping != "" && !filepath.IsAbs(mapping) {
		mapping = filepath.Join(r.settings.Project.Root, mapping)
	}
	names, err := locations.Resolve(mapping)
	if err != nil {
		return nil, err
	}

	cfg, report, err := hubconfig.Load(configPath, hubconfig.Options{
		LocationNames: names,
		ProjectRoot:   r.settings.Project.DataRoot(),
		Logger:        r.logger,
	})
	if report != nil {
		report.Print(r.opts.Out)
	}
	return cfg, err
}

func (r *BuiltinRunner) confirm(question string) (bool, error) {
	fmt.Fprint(r.opts.Out, question)
	line, err := bufio.NewReader(r.opts.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (r *BuiltinRunner) connectStore(ctx context.Context) (state.Store, error) {
	store, err := r.openStore(r.settings)
	if err != nil {
		return nil, err
	}
	pinger, ok := store.(interface{ Ping(context.Context) error })
	if !ok {
		return store, nil
	}
	if err := retryWithBackoff(ctx, pinger.Ping, 3, 500*time.Millisecond, r.logger, "State store connection"); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// stages returns the build pipeline in execution order.
func (r *BuiltinRunner) stages(ctx context.Context, m *metrics.Metrics, store state.Store) ([]pipeline.Stage, error) {
	s := r.settings

	fetchCfg := frd.LoadConfig(s)
	export, err := ej.NewHandler(ej.LoadConfig(), r.logger, m)
	if err != nil {
		return nil, err
	}
	notify, err := r.notifier(ctx)
	if err != nil {
		return nil, err
	}

	return []pipeline.Stage{
		frd.NewHandler(fetchCfg, r.logger, httpclient.NewClient(fetchCfg.Timeout)),
		dc.NewHandler(dc.LoadConfig(), r.logger, store),
		ltd.NewHandler(ltd.LoadConfig(), r.logger, m),
		lmo.NewHandler(lmo.LoadConfig(s), r.logger, m),
		vd.NewHandler(vd.LoadConfig(), r.logger),
		dl.NewHandler(dl.LoadConfig(), r.logger),
		pp.NewHandler(pp.LoadConfig(), r.logger),
		bm.NewHandler(bm.LoadConfig(), r.logger),
		export,
		rs.NewHandler(rs.LoadConfig(), r.logger, store),
		notify,
	}, nil
}

// notifier only builds AWS clients for enabled channels.
func (r *BuiltinRunner) notifier(ctx context.Context) (*sn.Handler, error) {
	cfg := sn.LoadConfig(r.settings)
	region := r.settings.Notifications.AWS.Region

	var (
		pub    sn.Publisher
		mailer sn.EmailSender
		err    error
	)
	if cfg.SNSEnabled {
		if pub, err = r.newPublisher(ctx, region); err != nil {
			return nil, fmt.Errorf("failed to create SNS client: %w", err)
		}
	}
	if cfg.EmailEnabled {
		if mailer, err = r.newMailer(ctx, region); err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
	}
	return sn.NewHandler(cfg, r.logger, pub, mailer), nil
}

func (r *BuiltinRunner) printResult(st *pipeline.State) {
	if st.Halted() {
		fmt.Fprintf(r.opts.Out, "\nNothing to do: %s\n", st.HaltReason())
		return
	}
	sum := st.Summary()
	fmt.Fprintf(r.opts.Out, "\n✓ Dashboard data written to %s\n", sum.OutputDir)
	fmt.Fprintf(r.opts.Out, "  mode: %s, periods: %d, files: %d, warnings: %d\n",
		sum.Mode, sum.Periods, sum.FilesExported, sum.Warnings)
	for _, w := range st.Warnings() {
		fmt.Fprintf(r.opts.Out, "  ⚠ %s\n", w)
	}
}
