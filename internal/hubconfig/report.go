// internal/hubconfig/report.go
package hubconfig

import (
	"fmt"
	"io"
	"strings"
)

// Severity of a configuration issue.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Issue is a single configuration problem, tied to the config field it concerns.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Report collects every error and warning found while parsing config.yaml.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *Report) addError(field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (r *Report) addWarning(field, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessages returns the error messages in the order they were found.
func (r *Report) ErrorMessages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

// WarningMessages returns the warning messages in the order they were found.
func (r *Report) WarningMessages() []string {
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Message
	}
	return out
}

var banner = strings.Repeat("=", 80)

// Print writes the warnings and errors blocks. Nothing is written for a clean report.
func (r *Report) Print(w io.Writer) {
	if r.HasWarnings() {
		fmt.Fprintf(w, "\n%s\nCONFIGURATION WARNINGS\n%s\n", banner, banner)
		for _, issue := range r.Warnings {
			fmt.Fprintf(w, "⚠ [%s] %s\n", issue.Field, issue.Message)
		}
	}
	if r.HasErrors() {
		fmt.Fprintf(w, "\n%s\nCONFIGURATION ERRORS\n%s\n", banner, banner)
		for _, issue := range r.Errors {
			fmt.Fprintf(w, "✗ [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(w, banner)
	}
}
