// internal/common/errors/handler.go
package errors

import (
	"time"
)

// Process exit codes. Every failure exits 1.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ErrorHandler turns failures into log entries and process exit codes.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err and returns the exit code for it. A nil error maps to ExitOK.
func (h *ErrorHandler) Handle(operation string, err error) int {
	if err == nil {
		return ExitOK
	}
	stdErr := h.normalizeError(err)
	h.logError(operation, stdErr)
	return ExitFailure
}

func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(operation string, stdErr *StandardError) {
	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	h.logger.Error("Operation failed", fields)
}
