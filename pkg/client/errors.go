package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrInvalidPublicKey matches InvalidPublicKeyError via errors.Is.
	ErrInvalidPublicKey = errors.New("Strong Customer Authentication has been rejected")

	// ErrValidation matches ValidationError via errors.Is.
	ErrValidation = errors.New("invalid parameter")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassSCA represents a rejected Strong Customer Authentication replay.
	ErrorClassSCA ErrorClass = "sca"

	// ErrorClassNetwork represents transport errors.
	ErrorClassNetwork ErrorClass = "network"
)

// HTTPError is returned for any unsuccessful status code that is not a
// rejected SCA replay.
type HTTPError struct {
	StatusCode int
	Status     string
	Method     string
	Path       string
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	body := string(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("wise %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("wise %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Class returns the error class of the status code.
func (e *HTTPError) Class() ErrorClass {
	return classifyStatus(e.StatusCode)
}

// InvalidPublicKeyError is returned when Wise rejects the signed SCA replay
// with 400. It means the signing key does not match the registered public
// key and retrying cannot succeed.
type InvalidPublicKeyError struct {
	Path string
	Body []byte
}

// Error implements the error interface.
func (e *InvalidPublicKeyError) Error() string {
	return ErrInvalidPublicKey.Error() + "."
}

// Is reports whether target is ErrInvalidPublicKey.
func (e *InvalidPublicKeyError) Is(target error) bool {
	return target == ErrInvalidPublicKey
}

// ValidationError is returned before any request is sent when a parameter
// is outside its documented bounds.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SigningError is returned when an SCA token cannot be signed. No replay is
// sent in that case.
type SigningError struct {
	Err error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	return fmt.Sprintf("sign sca token: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SigningError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status code to an ErrorClass.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
