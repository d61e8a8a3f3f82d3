package helpers

import (
	"errors"
	"fmt"
	"sync/atomic"

	"gridwatch/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type GridWatchError struct {
	Message string
	Cause   error
}

func (e *GridWatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GridWatchError) Unwrap() error {
	return e.Cause
}

// ConfigurationError is fatal: the process must not start fetching.
type ConfigurationError struct{ GridWatchError }

// NetworkError covers transport failures, timeouts and non-200 responses.
// StatusCode is zero when no response was received.
type NetworkError struct {
	GridWatchError
	StatusCode int
}

// DecodeError reports a document that could not be turned into points.
type DecodeError struct{ GridWatchError }

// DatabaseError reports an unavailable or failing price store.
type DatabaseError struct{ GridWatchError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{GridWatchError{Message: message, Cause: cause}}
}

func NewNetworkError(message string, statusCode int, cause error) *NetworkError {
	return &NetworkError{GridWatchError: GridWatchError{Message: message, Cause: cause}, StatusCode: statusCode}
}

func NewDecodeError(message string, cause error) *DecodeError {
	return &DecodeError{GridWatchError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{GridWatchError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// IsRecoverable reports whether the acquisition layer may replace the failed
// result with synthetic data.
func IsRecoverable(err error) bool {
	var netErr *NetworkError
	var decErr *DecodeError
	return errors.As(err, &netErr) || errors.As(err, &decErr)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// ErrorCount returns the number of non-recoverable errors since the last reset.
func (e *ErrorHandler) ErrorCount() int {
	return int(e.errorCount.Load())
}

// -----------------------------------------------------------------------------

// Handle logs err with a severity matching its category. Recoverable
// acquisition errors are warnings; everything else counts as an error.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	if IsRecoverable(err) {
		e.Logger.Warning("%s: %v", context, err)
		return
	}
	e.errorCount.Add(1)
	e.Logger.Error("Error in %s: %v", context, err)
}
