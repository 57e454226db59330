// Package errors provides standardized error handling for the applicant pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigMissing  ErrorCode = "CONFIG_MISSING"
	ErrCodeRemoteAPI      ErrorCode = "REMOTE_API_ERROR"
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeLLMCallFailed  ErrorCode = "LLM_CALL_FAILED"
	ErrCodeLLMParseFailed ErrorCode = "LLM_PARSE_FAILED"
	ErrCodeMissingBlob    ErrorCode = "MISSING_BLOB"
	ErrCodeInvalidBlob    ErrorCode = "BLOB_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigMissingError creates a non-retryable configuration error. It aborts
// a run before any processing happens.
func NewConfigMissingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "required configuration missing",
		Details:   key,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteAPIError creates an error for a non-2xx response from the table
// service. Retryability follows the HTTP status class.
func NewRemoteAPIError(table string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteAPI,
		Message:   fmt.Sprintf("table service returned status %d", status),
		Details:   fmt.Sprintf("table: %s, body: %s", table, body),
		Retryable: IsRetryableStatus(status),
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable lookup error.
func NewRecordNotFoundError(table, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "record not found",
		Details:   fmt.Sprintf("table: %s, id: %s", table, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError creates a retryable LLM transport error.
func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "LLM request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMParseFailedError creates a non-retryable error for an LLM response
// that cannot be mapped to the expected evaluation shape.
func NewLLMParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMParseFailed,
		Message:   "LLM response not in expected shape",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingBlobError creates a non-retryable error for decompression with no
// stored blob.
func NewMissingBlobError(applicantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingBlob,
		Message:   "compressed JSON is empty for this applicant",
		Details:   fmt.Sprintf("applicant: %s", applicantID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBlobError creates a non-retryable error for a stored blob that
// cannot be parsed back into a profile.
func NewInvalidBlobError(applicantID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidBlob,
		Message:   "compressed JSON cannot be parsed",
		Details:   fmt.Sprintf("applicant: %s, error: %s", applicantID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableStatus reports whether an HTTP status is a transient class worth
// retrying: 429 and 5xx.
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status <= 599)
}

// CodeOf extracts the error code from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
