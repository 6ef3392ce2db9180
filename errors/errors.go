package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type rendered by the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Common Errors
func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Transcript Errors
func ErrTranscriptUnreadable(filename string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_TRANSCRIPT_UNREADABLE,
		Message:  "Transcript could not be read",
	}.WithDetail("filename", filename)
}

func ErrTranscriptIndexOutOfRange(index, total int) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_TRANSCRIPT_INDEX_OUTRANGE,
		Message:  "Note index out of range",
	}.WithDetail("index", fmt.Sprintf("%d", index)).
		WithDetail("total", fmt.Sprintf("%d", total))
}

func ErrTranscriptionDisabled() AppError {
	return AppError{
		HTTPCode: http.StatusNotImplemented,
		Code:     ErrorCode_TRANSCRIPTION_DISABLED,
		Message:  "Audio transcription is disabled; set TRANSCRIPTION_BACKEND",
	}
}

func ErrTranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSCRIPTION_FAILED,
		Message:  "Audio transcription failed",
	}
}

// Generation Errors
func ErrGenerationFailed(filename string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_GENERATION_FAILED,
		Message:  "Note generation failed",
	}.WithDetail("filename", filename)
}

func ErrGenerationUnauthorized(backend string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_GENERATION_UNAUTHORIZED,
		Message:  "Model backend rejected the credentials",
	}.WithDetail("backend", backend)
}

func ErrGenerationRateLimited(backend string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_GENERATION_RATE_LIMITED,
		Message:  "Model backend rate limit reached",
	}.WithDetail("backend", backend)
}

func ErrGenerationUnavailable(backend string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_GENERATION_UNAVAILABLE,
		Message:  "Model backend unavailable",
	}.WithDetail("backend", backend)
}

func ErrGenerationInProgress(key string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_GENERATION_IN_PROGRESS,
		Message:  "Notes were already generated for this transcript; use regenerate",
	}.WithDetail("key", key)
}

// Run Errors
func ErrRunNotFound(runID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_RUN_NOT_FOUND,
		Message:  "Run not found",
	}.WithDetail("run_id", runID)
}

func ErrRunSaveFailed(runID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_RUN_SAVE_FAILED,
		Message:  "Failed to save run",
	}.WithDetail("run_id", runID)
}

func ErrExportFailed(format string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXPORT_FAILED,
		Message:  "Failed to export notes",
	}.WithDetail("format", format)
}

// CRM Errors
func ErrCRMNotConfigured(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusPreconditionFailed,
		Code:     ErrorCode_CRM_NOT_CONFIGURED,
		Message:  "Salesforce settings are incomplete",
	}
}

func ErrCRMAuthFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_CRM_AUTH_FAILED,
		Message:  "Salesforce authentication failed",
	}
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}

