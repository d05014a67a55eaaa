package errors

import (
	"errors"
	"net/http"

	"foodguard/internal/storage"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// Unknown email and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrAlreadyAuthenticated is returned when login is attempted on a
	// session that is already authenticated.
	ErrAlreadyAuthenticated = errors.New("session is already authenticated")
	// ErrStorageTimeout is returned when a persistence operation exceeds
	// its deadline.
	ErrStorageTimeout = errors.New("session storage timed out")
	// ErrInvalidToken is returned when a session token fails verification.
	ErrInvalidToken = errors.New("invalid or expired session token")
)

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

// MapErrorToHTTP maps session and directory errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var storageErr *storage.Error
	switch {
	case errors.As(err, &storageErr):
		return NewHTTPError(http.StatusServiceUnavailable, "session storage unavailable", "STORAGE_UNAVAILABLE")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_CREDENTIALS")
	case errors.Is(err, ErrAlreadyAuthenticated):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_AUTHENTICATED")
	case errors.Is(err, ErrStorageTimeout):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "STORAGE_TIMEOUT")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
