package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPasswordMismatch is returned when password and password_second differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUserAlreadyExists is returned when the email is already taken by any user, active or not.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte input limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	// ErrFieldTooLong is returned when a string field does not fit its column.
	ErrFieldTooLong = errors.New("field too long")
	// ErrInvalidID is returned when a path id is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidQuery is returned when a query parameter cannot be parsed.
	ErrInvalidQuery = errors.New("invalid query")
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

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised is an internal error.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USER_EXISTS")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_TOO_LONG")
	case errors.Is(err, ErrFieldTooLong):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FIELD_TOO_LONG")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ID")
	case errors.Is(err, ErrInvalidQuery):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_QUERY")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
