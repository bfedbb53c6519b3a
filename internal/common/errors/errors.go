// Package errors provides standardized error handling for the dashboard builder.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigNotFound         ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigParseFailed      ErrorCode = "CONFIG_PARSE_FAILED"
	ErrCodeConfigValidationFailed ErrorCode = "CONFIG_VALIDATION_FAILED"
	ErrCodeSettingsInvalid        ErrorCode = "SETTINGS_INVALID"

	ErrCodeDataNotFound      ErrorCode = "DATA_NOT_FOUND"
	ErrCodeColumnMissing     ErrorCode = "COLUMN_MISSING"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidData       ErrorCode = "INVALID_DATA"
	ErrCodeFetchFailed       ErrorCode = "FETCH_FAILED"

	ErrCodeExportFailed           ErrorCode = "EXPORT_FAILED"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	ErrCodeStateStoreFailed       ErrorCode = "STATE_STORE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowFailed ErrorCode = "WORKFLOW_FAILED"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigNotFoundError reports a missing hub configuration file.
func NewConfigNotFoundError(path string) *StandardError {
	return newError(ErrCodeConfigNotFound, "Configuration file not found",
		fmt.Sprintf("path: %s", path), false, nil)
}

// NewConfigParseFailedError reports YAML that could not be read into a configuration.
func NewConfigParseFailedError(details string, err error) *StandardError {
	if err != nil {
		details = fmt.Sprintf("%s: %s", details, err.Error())
	}
	return newError(ErrCodeConfigParseFailed, "Failed to parse configuration", details, false, err)
}

// NewConfigValidationFailedError carries every configuration error found.
func NewConfigValidationFailedError(problems []string) *StandardError {
	e := newError(ErrCodeConfigValidationFailed, "Configuration validation failed",
		strings.Join(problems, "; "), false, nil)
	return e.WithMetadata("errorCount", len(problems))
}

// NewSettingsInvalidError reports invalid tool settings.
func NewSettingsInvalidError(details string) *StandardError {
	return newError(ErrCodeSettingsInvalid, "Invalid builder settings", details, false, nil)
}

// NewDataNotFoundError reports missing input data.
func NewDataNotFoundError(details string) *StandardError {
	return newError(ErrCodeDataNotFound, "Input data not found", details, false, nil)
}

// NewColumnMissingError reports a mapped column absent from a CSV header.
func NewColumnMissingError(file, column string) *StandardError {
	e := newError(ErrCodeColumnMissing, "Required column missing",
		fmt.Sprintf("file: %s, column: %s", file, column), false, nil)
	return e.WithMetadata("column", column)
}

// NewUnsupportedFormatError reports an input format the loaders cannot read.
func NewUnsupportedFormatError(format string) *StandardError {
	return newError(ErrCodeUnsupportedFormat, "Unsupported data format",
		fmt.Sprintf("format: %s", format), false, nil)
}

// NewInvalidDataError reports a value that could not be parsed.
func NewInvalidDataError(details string, err error) *StandardError {
	if err != nil {
		details = fmt.Sprintf("%s: %s", details, err.Error())
	}
	return newError(ErrCodeInvalidData, "Invalid data", details, false, err)
}

// NewFetchFailedError creates a retryable download error.
func NewFetchFailedError(url string, err error) *StandardError {
	return newError(ErrCodeFetchFailed, "Failed to fetch remote data",
		fmt.Sprintf("url: %s, error: %s", url, err.Error()), true, err)
}

// NewExportFailedError reports a failure writing output files.
func NewExportFailedError(path string, err error) *StandardError {
	return newError(ErrCodeExportFailed, "Failed to write dashboard data",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), false, err)
}

// NewSchemaValidationFailedError reports output that does not match its schema.
func NewSchemaValidationFailedError(details string) *StandardError {
	return newError(ErrCodeSchemaValidationFailed, "Output failed schema validation", details, false, nil)
}

// NewStateStoreFailedError creates a retryable state store error.
func NewStateStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeStateStoreFailed, "Build state store error",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true, err)
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send build notification",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// NewWorkflowFailedError reports a failed build workflow.
func NewWorkflowFailedError(details string, exitCode int, err error) *StandardError {
	e := newError(ErrCodeWorkflowFailed, "Dashboard build workflow failed", details, false, err)
	return e.WithMetadata("exitCode", exitCode)
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG") || strings.HasPrefix(codeStr, "SETTINGS"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "DATA") || strings.Contains(codeStr, "COLUMN") ||
		strings.Contains(codeStr, "FORMAT") || strings.Contains(codeStr, "FETCH"):
		return "INPUT"
	case strings.Contains(codeStr, "EXPORT") || strings.Contains(codeStr, "SCHEMA"):
		return "OUTPUT"
	case strings.Contains(codeStr, "STATE"):
		return "STATE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
