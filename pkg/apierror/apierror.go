package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeConflict            = "CONFLICT"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeRefreshTokenReused  = "REFRESH_TOKEN_REUSED"
	CodeUnknownIdentity     = "UNKNOWN_IDENTITY"
	CodeUnavailable         = "UNAVAILABLE"
	CodeUploadFailed        = "UPLOAD_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeRequestTimeout      = "REQUEST_TIMEOUT"
)

// APIError is the single error shape that crosses the handler boundary.
// Reason is an internal diagnostic and is never serialized to clients.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Reason     string `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) WithReason(reason string) *APIError {
	clone := *e
	clone.Reason = reason
	return &clone
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func ValidationFailed(message string, field string) *APIError {
	return New(CodeValidationFailed, message, field, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return New(CodeConflict, message, "", http.StatusConflict)
}

// InvalidCredentials never says which half of the credential was wrong.
func InvalidCredentials() *APIError {
	return New(CodeInvalidCredentials, "invalid user credentials", "", http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New(CodeUnauthorized, message, "", http.StatusUnauthorized)
}

func InvalidRefreshToken() *APIError {
	return New(CodeInvalidRefreshToken, "invalid refresh token", "", http.StatusUnauthorized)
}

func RefreshTokenReused() *APIError {
	return New(CodeRefreshTokenReused, "refresh token is expired or used", "", http.StatusUnauthorized)
}

func UnknownIdentity() *APIError {
	return New(CodeUnknownIdentity, "account no longer exists", "", http.StatusUnauthorized)
}

func Unavailable(err error) *APIError {
	e := New(CodeUnavailable, "service temporarily unavailable", "", http.StatusInternalServerError)
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

// RequestTimeout is reported when a request outlives the server's deadline.
func RequestTimeout() *APIError {
	return New(CodeRequestTimeout, "request timed out", "", http.StatusServiceUnavailable)
}

func UploadFailed(message string, err error) *APIError {
	e := New(CodeUploadFailed, message, "", http.StatusBadRequest)
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

func NotFound(message string, details string) *APIError {
	return New(CodeNotFound, message, details, http.StatusNotFound)
}

// As extracts an *APIError from err, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err is an *APIError carrying code.
func HasCode(err error, code string) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}
