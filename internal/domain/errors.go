package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the sync failure taxonomy.
// Use errors.Is() to check against these.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNetworkFailure  = errors.New("network failure")
	ErrValidation      = errors.New("validation failure")
	ErrNotFound        = errors.New("not found")
)

// ErrorKind names a failure class.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindNetwork         ErrorKind = "network"
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrNetworkFailure
	}
}

// RemoteError is a classified failure of a storefront API call.
// It unwraps to the sentinel of its kind, and to the cause when one is set.
type RemoteError struct {
	Kind       ErrorKind
	StatusCode int    // 0 when no response was received
	Message    string // server supplied message, safe to show to shoppers
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind.sentinel(), e.Err}
	}
	return []error{e.Kind.sentinel()}
}

// NewUnauthenticatedError is returned when no usable token exists.
func NewUnauthenticatedError(reason string) *RemoteError {
	return &RemoteError{Kind: KindUnauthenticated, StatusCode: http.StatusUnauthorized, Message: reason}
}

// NewValidationError creates a failure for input the caller must fix.
func NewValidationError(field, reason string) *RemoteError {
	return &RemoteError{
		Kind:       KindValidation,
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
	}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) *RemoteError {
	return &RemoteError{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(op string, err error) *RemoteError {
	return &RemoteError{Kind: KindNetwork, Message: op + " request failed", Err: err}
}

// ErrorFromStatus classifies a non-2xx response.
func ErrorFromStatus(status int, message string) *RemoteError {
	if message == "" {
		message = http.StatusText(status)
	}
	kind := KindNetwork
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthenticated
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		kind = KindNetwork
	case status >= 400 && status < 500:
		kind = KindValidation
	}
	return &RemoteError{Kind: kind, StatusCode: status, Message: message}
}

// KindOf returns the failure class of err. Unclassified errors count as network failures.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindNetwork
	}
}

// UserMessage extracts the message a shopper should see for err.
func UserMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
