package api

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindValidation indicates a locally detected problem with the request
	// (e.g., incomplete identifier). Validation failures never reach the wire.
	KindValidation ErrorKind = iota
	// KindRequest indicates the service answered with a non-success status
	// and a human-readable reason.
	KindRequest
	// KindTransport indicates no response was obtained (network unreachable,
	// timeout, connection refused).
	KindTransport
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "Validation Failure"
	case KindRequest:
		return "Request Failure"
	case KindTransport:
		return "Transport Failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error represents a failure while talking to (or preparing to talk to) the
// charging service.
type Error struct {
	Kind       ErrorKind // Category of error
	Message    string    // Human-readable reason
	StatusCode int       // HTTP status code (request failures only)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a locally detected validation failure.
func NewValidationError(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
	}
}

// NewRequestError creates a request failure from a non-success response.
// detail is the server-supplied reason; when the body carried none, pass ""
// and a generic fallback is substituted.
func NewRequestError(statusCode int, detail string) *Error {
	if detail == "" {
		detail = fmt.Sprintf("service returned HTTP %d", statusCode)
	}
	return &Error{
		Kind:       KindRequest,
		Message:    detail,
		StatusCode: statusCode,
	}
}

// NewTransportError creates a transport failure from a low-level error.
func NewTransportError(message string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: message,
		Err:     err,
	}
}

// IsValidation checks if an error is a locally detected validation failure
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// IsRequest checks if an error is a service-reported request failure
func IsRequest(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindRequest
}

// IsTransport checks if an error is a transport failure
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// Reason returns the operator-facing message for an error: the server detail
// for request failures, a short classification for transport failures, or the
// plain message otherwise. This is what the views surface as a notification.
func Reason(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Kind {
	case KindTransport:
		return transportReason(apiErr)
	default:
		return apiErr.Message
	}
}

// transportReason classifies a transport failure into a short message.
func transportReason(apiErr *Error) string {
	err := apiErr.Err
	if err == nil {
		return apiErr.Message
	}

	if os.IsTimeout(err) {
		return "Service not responding (timeout)"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("Cannot resolve service host %q", dnsErr.Name)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return "Service refused connection - is it running?"
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH),
			errors.Is(opErr.Err, syscall.ENETUNREACH):
			return "Service unreachable - check network connection"
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "Service not responding (timeout)"
		}
	}

	return "Network error - check connection"
}
