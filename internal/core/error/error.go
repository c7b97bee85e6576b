package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// ConfigurationErrorMessage describes missing or invalid configuration.
	ConfigurationErrorMessage = "configuration error"
	// TransportErrorMessage describes failures talking to the completion endpoint.
	TransportErrorMessage = "completion request failed"
	// ParseErrorMessage describes malformed completion payloads.
	ParseErrorMessage = "invalid completion response"
	// RecognitionErrorMessage describes dictation engine failures.
	RecognitionErrorMessage = "speech recognition failed"
	// InvalidInputMessage describes rejected user input.
	InvalidInputMessage = "invalid input"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// StorageErrorMessage describes local storage failures.
	StorageErrorMessage = "storage operation failed"
)

// Kind classifies an AppError so callers can branch without string matching.
type Kind string

const (
	KindUnknown       Kind = "unknown"
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindParse         Kind = "parse"
	KindRecognition   Kind = "recognition"
	KindInvalid       Kind = "invalid"
	KindStorage       Kind = "storage"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
	Kind    Kind
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
		Kind:    KindUnknown,
	}
}

func newKind(kind Kind, err error, status int, message string) *AppError {
	e := New(err, status, message)
	e.Kind = kind
	return e
}

// Configuration reports a missing credential or bad setting. It is raised
// before any network I/O.
func Configuration(err error) *AppError {
	return newKind(KindConfiguration, err, http.StatusInternalServerError, ConfigurationErrorMessage)
}

// Transport wraps a network failure or non-success response from the model endpoint.
func Transport(err error) *AppError {
	return newKind(KindTransport, err, http.StatusBadGateway, TransportErrorMessage)
}

// Parse wraps a malformed completion payload.
func Parse(err error) *AppError {
	return newKind(KindParse, err, http.StatusBadGateway, ParseErrorMessage)
}

// Recognition wraps a dictation engine failure.
func Recognition(err error) *AppError {
	return newKind(KindRecognition, err, http.StatusServiceUnavailable, RecognitionErrorMessage)
}

// Invalid wraps rejected user input.
func Invalid(err error) *AppError {
	return newKind(KindInvalid, err, http.StatusBadRequest, InvalidInputMessage)
}

// WrapStorage wraps a local key-value store error.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return newKind(KindStorage, err, http.StatusInternalServerError, StorageErrorMessage)
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
