package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "CSI1001"
	ErrCodeConnectionTimeout    ErrorCode = "CSI1002"
	ErrCodeAuthenticationFailed ErrorCode = "CSI1003"
	ErrCodeNetworkUnavailable   ErrorCode = "CSI1004"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound   ErrorCode = "CSI2001"
	ErrCodeConfigInvalid    ErrorCode = "CSI2002"
	ErrCodeConfigMissing    ErrorCode = "CSI2003"
	ErrCodeConfigPermission ErrorCode = "CSI2004"

	// Export / ingest errors (3xxx)
	ErrCodeExportNotFound   ErrorCode = "CSI3001"
	ErrCodeExportMalformed  ErrorCode = "CSI3002"
	ErrCodeExportEmpty      ErrorCode = "CSI3003"
	ErrCodeCallMissingID    ErrorCode = "CSI3004"
	ErrCodeProfileMalformed ErrorCode = "CSI3005"

	// SQL execution errors (4xxx)
	ErrCodeSQLSyntax         ErrorCode = "CSI4001"
	ErrCodeSQLPermission     ErrorCode = "CSI4002"
	ErrCodeSQLTimeout        ErrorCode = "CSI4003"
	ErrCodeSQLTransaction    ErrorCode = "CSI4004"
	ErrCodeSQLObjectNotFound ErrorCode = "CSI4005"
	ErrCodeSQLExecution      ErrorCode = "CSI4006"
	ErrCodeInvalidIdentifier ErrorCode = "CSI4007"
	ErrCodeNoResults         ErrorCode = "CSI4008"
	ErrCodeUnknown           ErrorCode = "CSI4999"

	// Cortex errors (5xxx)
	ErrCodeCortexFailed     ErrorCode = "CSI5001"
	ErrCodeCortexParse      ErrorCode = "CSI5002"
	ErrCodeSearchFailed     ErrorCode = "CSI5003"
	ErrCodeModelUnavailable ErrorCode = "CSI5004"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "CSI6001"
	ErrCodeInvalidInput     ErrorCode = "CSI6002"
	ErrCodeRequiredField    ErrorCode = "CSI6003"

	// Security errors (7xxx)
	ErrCodeSecurityViolation ErrorCode = "CSI7001"
	ErrCodeEncryptionFailed  ErrorCode = "CSI7002"
	ErrCodeCredentialMissing ErrorCode = "CSI7003"

	// Normalization errors (8xxx)
	ErrCodeNormalizationFailed ErrorCode = "CSI8001"
	ErrCodePublishFailed       ErrorCode = "CSI8002"
	ErrCodeInvalidState        ErrorCode = "CSI8003"

	// System errors (9xxx)
	ErrCodeInternal           ErrorCode = "CSI9001"
	ErrCodeTimeout            ErrorCode = "CSI9002"
	ErrCodeResourceExhausted  ErrorCode = "CSI9003"
	ErrCodeServiceUnavailable ErrorCode = "CSI9004"
	ErrCodeFileOperation      ErrorCode = "CSI9005"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL"
	SeverityError    ErrorSeverity = "ERROR"
	SeverityWarning  ErrorSeverity = "WARNING"
	SeverityInfo     ErrorSeverity = "INFO"
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// Inherit context when wrapping another AppError
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check your network connection",
			"Verify the Snowflake account endpoint is accessible",
			"Check firewall settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'callsight setup' to reconfigure",
		)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	if strings.Contains(message, "permission") || strings.Contains(message, "access denied") {
		err.Code = ErrCodeSQLPermission
		_ = err.WithSuggestions(
			"Check user permissions in Snowflake",
			"Verify the role has required privileges",
		)
	} else if strings.Contains(message, "timeout") {
		err.Code = ErrCodeSQLTimeout
		_ = err.WithSuggestions(
			"Increase the query timeout setting",
			"Check the Snowflake warehouse size",
		)
	}

	return err
}

// CortexError creates an error for a failed Cortex function call
func CortexError(function string, cause error) *AppError {
	return Wrap(cause, ErrCodeCortexFailed, fmt.Sprintf("Cortex %s call failed", function)).
		WithContext("function", function).
		WithSuggestions(
			"Verify the Cortex function is available in your region",
			"Check that the role has SNOWFLAKE.CORTEX_USER granted",
		)
}

// ExportError creates an error for a malformed transcript export
func ExportError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeExportMalformed, message).
		WithSuggestions(
			"Verify the export file is valid JSON",
			"Check that the export matches the expected call/segment/sentence shape",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
