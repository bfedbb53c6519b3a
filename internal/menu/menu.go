// internal/menu/menu.go
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/workflow"
)

const (
	ChoiceBuild = "1"
	ChoiceCheck = "2"
	ChoiceExit  = "3"
)

// NotImplementedMessage is printed for the check-for-new-data choice.
const NotImplementedMessage = "Checking for new data is not implemented yet."

var (
	rule       = strings.Repeat("=", 44)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Menu is the interactive entry point: build, check for new data, or exit.
type Menu struct {
	configPath string
	runner     workflow.Runner
	in         *bufio.Reader
	out        io.Writer
	logger     logger.Logger
}

// New builds a menu reading choices from in. Pass the same *bufio.Reader to
// the workflow runner when it also prompts, so buffered input is not lost.
func New(configPath string, runner workflow.Runner, in io.Reader, out io.Writer, log logger.Logger) *Menu {
	return &Menu{
		configPath: configPath,
		runner:     runner,
		in:         bufio.NewReader(in),
		out:        out,
		logger:     log,
	}
}

// CheckConfig prints setup guidance when the config file is missing.
func CheckConfig(configPath string, out io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}
	name := filepath.Base(configPath)
	example := ExampleName(name)
	fmt.Fprintf(out, "Error: %s not found.\n\n", name)
	fmt.Fprintf(out, "Copy the example configuration and edit it for your hub:\n\n")
	fmt.Fprintf(out, "    cp %s %s\n\n", example, name)
	return apperrors.NewConfigNotFoundError(configPath)
}

// ExampleName maps config.yaml to config.example.yaml.
func ExampleName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".example" + ext
}

// Run shows the menu until the user builds, exits or closes input, and
// returns the process exit code.
func (m *Menu) Run(ctx context.Context) int {
	if err := CheckConfig(m.configPath, m.out); err != nil {
		return apperrors.ExitFailure
	}

	for {
		m.print()
		line, err := m.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			fmt.Fprintln(m.out)
			if err != io.EOF {
				m.logger.Error("Failed to read menu choice", map[string]interface{}{"error": err.Error()})
				return apperrors.ExitFailure
			}
			return apperrors.ExitOK
		}

		switch strings.TrimSpace(line) {
		case ChoiceBuild:
			return m.build(ctx)
		case ChoiceCheck:
			fmt.Fprintln(m.out, NotImplementedMessage)
		case ChoiceExit:
			fmt.Fprintln(m.out, "Goodbye.")
			return apperrors.ExitOK
		}
	}
}

func (m *Menu) print() {
	fmt.Fprintf(m.out, "\n%s\n  %s\n%s\n", rule, titleStyle.Render("Hubverse Dashboard Builder"), rule)
	fmt.Fprintf(m.out, "%s) Build dashboard\n", ChoiceBuild)
	fmt.Fprintf(m.out, "%s) Check for new data\n", ChoiceCheck)
	fmt.Fprintf(m.out, "%s) Exit\n", ChoiceExit)
	fmt.Fprint(m.out, "Enter your choice [1-3]: ")
}

func (m *Menu) build(ctx context.Context) int {
	fmt.Fprintln(m.out, "Building dashboard...")
	err := m.runner.Run(ctx, m.configPath)
	switch {
	case err == nil:
		fmt.Fprintln(m.out, "Dashboard build completed successfully.")
		return apperrors.ExitOK
	case errors.Is(err, workflow.ErrAborted):
		fmt.Fprintln(m.out, "Build cancelled.")
		return apperrors.ExitOK
	}
	fmt.Fprintf(m.out, "Dashboard build failed: %v\n", err)
	return apperrors.NewErrorHandler(m.logger).Handle("build", err)
}
