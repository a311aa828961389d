package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is the machine-readable code carried in every error envelope.
type ErrorCode string

const (
	ErrorCodeMissingAPIVersion     ErrorCode = "MissingApiVersionParameter"
	ErrorCodeUnsupportedAPIVersion ErrorCode = "UnsupportedApiVersionValue"
	ErrorCodeInternalParsing       ErrorCode = "InternalProxyParsing"
	ErrorCodeUpstream              ErrorCode = "UpstreamApi"
)

// APIError is a failure expressed in the Azure AI Model Inference error format.
// Status is the HTTP status written with the envelope and is not serialized.
type APIError struct {
	Status  int       `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewMissingAPIVersionError reports a request without the api-version query parameter.
func NewMissingAPIVersionError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    ErrorCodeMissingAPIVersion,
		Message: "The api-version query parameter (?api-version=) is required for all requests.",
	}
}

// NewUnsupportedAPIVersionError reports an api-version value outside SupportedAPIVersions.
func NewUnsupportedAPIVersionError(got string) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   ErrorCodeUnsupportedAPIVersion,
		Message: fmt.Sprintf("Unsupported api-version '%s'. The supported api-versions are '%s'.",
			got, strings.Join(SupportedAPIVersions, ", ")),
	}
}

// NewInternalParsingError reports a decode, encode, or policy failure inside the proxy.
func NewInternalParsingError(message string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    ErrorCodeInternalParsing,
		Message: message,
	}
}

// NewUpstreamError reports a failed upstream call. Status is the upstream's own
// status code, or 502 when no response was received at all.
func NewUpstreamError(status int, message string) *APIError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &APIError{
		Status:  status,
		Code:    ErrorCodeUpstream,
		Message: message,
	}
}

// AsAPIError converts any error into an *APIError. Errors that are not already
// part of the taxonomy are reported as internal parsing failures so that no
// internal error type leaks to the caller.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalParsingError(err.Error())
}
