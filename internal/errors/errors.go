package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLogNotFound is returned when an integration log is not found.
	ErrLogNotFound = errors.New("integration log not found")
	// ErrSessionNotFound is returned when a session log is not found.
	ErrSessionNotFound = errors.New("session log not found")
	// ErrButtonNotFound is returned when a payment button is not configured.
	ErrButtonNotFound = errors.New("payment button not found")
	// ErrInvalidState is returned when an operation is attempted on a
	// record whose status does not allow it.
	ErrInvalidState = errors.New("record status does not allow this operation")
	// ErrInvalidTransition is returned by the store when a status write
	// would move a record backwards, e.g. out of success.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrRetryInProgress is returned when a retry is already running for
	// the same record.
	ErrRetryInProgress = errors.New("retry already in progress")
	// ErrIntegrityCheckFailed is returned when a response payload fails
	// signature verification.
	ErrIntegrityCheckFailed = errors.New("payload integrity check failed")
	// ErrUnknownReference is returned when a reference token resolves to
	// no pending record.
	ErrUnknownReference = errors.New("unknown payment reference")
	// ErrAmbiguousReference is returned when a reference token is
	// malformed or names more than one record kind.
	ErrAmbiguousReference = errors.New("ambiguous payment reference")
	// ErrUnknownHandler is returned when a record names a gateway
	// adapter that is not registered.
	ErrUnknownHandler = errors.New("unknown gateway handler")
)

// GatewayError wraps a failure reported by a gateway adapter. It is
// business data, not a fault: the record is marked error and the
// payload kept for a later retry.
type GatewayError struct {
	Handler string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Handler, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return NewHTTPError(http.StatusBadGateway, gerr.Error(), "GATEWAY_ERROR")
	}
	switch {
	case errors.Is(err, ErrLogNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LOG_NOT_FOUND")
	case errors.Is(err, ErrSessionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "SESSION_NOT_FOUND")
	case errors.Is(err, ErrButtonNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "BUTTON_NOT_FOUND")
	case errors.Is(err, ErrUnknownReference):
		return NewHTTPError(http.StatusNotFound, err.Error(), "UNKNOWN_REFERENCE")
	case errors.Is(err, ErrAmbiguousReference):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "AMBIGUOUS_REFERENCE")
	case errors.Is(err, ErrInvalidState):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_STATE")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrRetryInProgress):
		return NewHTTPError(http.StatusConflict, err.Error(), "RETRY_IN_PROGRESS")
	case errors.Is(err, ErrIntegrityCheckFailed):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INTEGRITY_CHECK_FAILED")
	case errors.Is(err, ErrUnknownHandler):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "UNKNOWN_HANDLER")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
