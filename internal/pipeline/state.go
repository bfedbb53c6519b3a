// internal/pipeline/state.go
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a data problem found by a stage. Errors also fail the stage.
type Issue struct {
	Stage    string   `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// State is threaded through every stage of one build.
type State struct {
	RunID     string
	StartedAt time.Time

	Settings   *config.Config
	Config     *models.DashboardConfig
	ProjectKey string
	Force      bool

	// Input locations. fetch-remote-data repoints these at its cache.
	TargetDataDir  string
	ModelOutputDir string
	OutputDir      string

	Mode        string
	Fingerprint string
	InputFiles  []string

	TargetData  *models.TargetData
	ModelOutput *models.ModelOutput
	Locations   []models.Location
	Partitions  []*models.Partition
	Metadata    *models.Metadata

	ExportedFiles []string
	Issues        []Issue

	halted     bool
	haltReason string
	stage      string
}

// NewState prepares the state for a build of cfg using the paths in settings.
func NewState(settings *config.Config, cfg *models.DashboardConfig) *State {
	return &State{
		RunID:          uuid.New().String(),
		StartedAt:      time.Now().UTC(),
		Settings:       settings,
		Config:         cfg,
		TargetDataDir:  settings.Project.TargetDataDir(),
		ModelOutputDir: settings.Project.ModelOutputDir(),
		OutputDir:      settings.Project.OutputPath(),
	}
}

// Halt stops the run after the current stage without failing it.
func (s *State) Halt(reason string) {
	s.halted = true
	s.haltReason = reason
}

func (s *State) Halted() bool { return s.halted }

func (s *State) HaltReason() string { return s.haltReason }

// Warn records a warning against the running stage.
func (s *State) Warn(format string, args ...interface{}) {
	s.Issues = append(s.Issues, Issue{Stage: s.stage, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Fail records an error against the running stage.
func (s *State) Fail(format string, args ...interface{}) {
	s.Issues = append(s.Issues, Issue{Stage: s.stage, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns the warning messages in the order they were recorded.
func (s *State) Warnings() []string {
	var out []string
	for _, i := range s.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i.Message)
		}
	}
	return out
}

// Summary describes the finished build for notifications.
func (s *State) Summary() models.BuildSummary {
	sum := models.BuildSummary{
		RunID:         s.RunID,
		Mode:          s.Mode,
		OutputDir:     s.OutputDir,
		Periods:       len(s.Partitions),
		Locations:     len(s.Locations),
		ModelRows:     s.ModelOutput.Len(),
		FilesExported: len(s.ExportedFiles),
		Warnings:      len(s.Warnings()),
		Duration:      time.Since(s.StartedAt).Round(time.Millisecond),
	}
	if s.Config != nil {
		sum.Models = len(s.Config.Models)
	}
	if s.TargetData != nil {
		sum.TargetRows = len(s.TargetData.Rows)
	}
	return sum
}
