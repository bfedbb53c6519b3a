// internal/models/notification.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Build modes reported by change detection.
const (
	BuildModeInitial   = "initial"
	BuildModeUpdate    = "update"
	BuildModeUnchanged = "unchanged"
)

// BuildState is the persisted record of the last successful build.
type BuildState struct {
	ProjectKey  string    `json:"projectKey"`
	Fingerprint string    `json:"fingerprint"`
	RunID       string    `json:"runId"`
	BuiltAt     time.Time `json:"builtAt"`
	Files       []string  `json:"files"`
}

// BuildSummary is what a finished build reports to notification channels.
type BuildSummary struct {
	RunID         string        `json:"runId"`
	Mode          string        `json:"mode"`
	OutputDir     string        `json:"outputDir"`
	Periods       int           `json:"periods"`
	Models        int           `json:"models"`
	Locations     int           `json:"locations"`
	TargetRows    int           `json:"targetRows"`
	ModelRows     int           `json:"modelRows"`
	FilesExported int           `json:"filesExported"`
	Warnings      int           `json:"warnings"`
	Duration      time.Duration `json:"duration"`
}

// Subject returns a one-line notification subject.
func (s BuildSummary) Subject() string {
	return fmt.Sprintf("Dashboard build %s (%s)", s.RunID, s.Mode)
}

// Body returns a plain-text notification body.
func (s BuildSummary) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard data build finished.\n\n")
	fmt.Fprintf(&b, "Run ID:         %s\n", s.RunID)
	fmt.Fprintf(&b, "Mode:           %s\n", s.Mode)
	fmt.Fprintf(&b, "Output:         %s\n", s.OutputDir)
	fmt.Fprintf(&b, "Periods:        %d\n", s.Periods)
	fmt.Fprintf(&b, "Models:         %d\n", s.Models)
	fmt.Fprintf(&b, "Locations:      %d\n", s.Locations)
	fmt.Fprintf(&b, "Target rows:    %d\n", s.TargetRows)
	fmt.Fprintf(&b, "Model rows:     %d\n", s.ModelRows)
	fmt.Fprintf(&b, "Files exported: %d\n", s.FilesExported)
	fmt.Fprintf(&b, "Warnings:       %d\n", s.Warnings)
	fmt.Fprintf(&b, "Duration:       %s\n", s.Duration.Round(time.Millisecond))
	return b.String()
}
