// internal/menu/menu_test.go
package menu

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/workflow"
)

// ==========================
// Mock Implementations
// ==========================

type mockRunner struct {
	RunFunc func(ctx context.Context, configPath string) error
	calls   []string
}

func (m *mockRunner) Run(ctx context.Context, configPath string) error {
	m.calls = append(m.calls, configPath)
	if m.RunFunc == nil {
		return nil
	}
	return m.RunFunc(ctx, configPath)
}

// ==========================
// Test Helper Functions
// ==========================

func createConfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- time_unit: 7\n"), 0o644))
	return path
}

func runMenu(t *testing.T, configPath, input string, runner workflow.Runner) (int, string) {
	var out bytes.Buffer
	m := New(configPath, runner, strings.NewReader(input), &out, logger.NewTestLogger(t))
	return m.Run(context.Background()), out.String()
}

// ==========================
// Core Functionality Tests
// ==========================

func TestMenu_BuildSuccess(t *testing.T) {
	path := createConfig(t)
	runner := &mockRunner{}

	code, out := runMenu(t, path, "1\n", runner)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{path}, runner.calls)
	assert.Contains(t, out, "Dashboard build completed successfully.")
}

func TestMenu_BuildFailure(t *testing.T) {
	path := createConfig(t)
	runner := &mockRunner{RunFunc: func(context.Context, string) error {
		return apperrors.NewWorkflowFailedError("workflow.py exited with status 2", 2, errors.New("exit status 2"))
	}}

	code, out := runMenu(t, path, "1\n", runner)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Dashboard build failed:")
}

func TestMenu_BuildAborted(t *testing.T) {
	runner := &mockRunner{RunFunc: func(context.Context, string) error { return workflow.ErrAborted }}

	code, out := runMenu(t, createConfig(t), "1\n", runner)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Build cancelled.")
}

func TestMenu_CheckIsNotImplemented(t *testing.T) {
	runner := &mockRunner{}

	code, out := runMenu(t, createConfig(t), "2\n3\n", runner)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, NotImplementedMessage)
	assert.Empty(t, runner.calls)
	assert.Equal(t, 2, strings.Count(out, "Enter your choice"), "menu shown again after option 2")
}

func TestMenu_ExitStopsPrompting(t *testing.T) {
	runner := &mockRunner{}

	code, out := runMenu(t, createConfig(t), "3\n1\n", runner)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(out, "Enter your choice"))
	assert.Empty(t, runner.calls)
}

func TestMenu_InvalidInputReprints(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "letter", input: "x\n3\n"},
		{name: "empty line", input: "\n3\n"},
		{name: "out of range", input: "4\n3\n"},
		{name: "two digits", input: "12\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			code, out := runMenu(t, createConfig(t), tt.input, runner)
			assert.Equal(t, 0, code)
			assert.Equal(t, 2, strings.Count(out, "Enter your choice"))
			assert.Empty(t, runner.calls)
		})
	}
}

func TestMenu_TrimsChoice(t *testing.T) {
	runner := &mockRunner{}

	code, _ := runMenu(t, createConfig(t), "  1 \r\n", runner)
	assert.Equal(t, 0, code)
	assert.Len(t, runner.calls, 1)
}

func TestMenu_EOFExitsCleanly(t *testing.T) {
	code, out := runMenu(t, createConfig(t), "x\n", &mockRunner{})
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(out, "Enter your choice"))

	code, _ = runMenu(t, createConfig(t), "3", &mockRunner{})
	assert.Equal(t, 0, code, "last line without newline is still read")
}

// ==========================
// Config Guard Tests
// ==========================

func TestMenu_MissingConfig(t *testing.T) {
	runner := &mockRunner{}
	path := filepath.Join(t.TempDir(), "config.yaml")

	code, out := runMenu(t, path, "1\n", runner)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error: config.yaml not found.")
	assert.Contains(t, out, "cp config.example.yaml config.yaml")
	assert.NotContains(t, out, "Enter your choice", "no menu without a config")
	assert.Empty(t, runner.calls)
}

func TestCheckConfig(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, CheckConfig(createConfig(t), &out))
	assert.Empty(t, out.String())

	err := CheckConfig(filepath.Join(t.TempDir(), "hub.yml"), &out)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigNotFound))
	assert.Contains(t, out.String(), "cp hub.example.yml hub.yml")
}

func TestExampleName(t *testing.T) {
	assert.Equal(t, "config.example.yaml", ExampleName("config.yaml"))
	assert.Equal(t, "settings.example", ExampleName("settings"))
}
