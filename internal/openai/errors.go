package openai

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion indicates the service answered successfully but
// returned no usable candidate text.
var ErrEmptyCompletion = errors.New("completion service returned no usable candidates")

// TransportError covers connectivity failures: refused connections,
// timeouts, redirect loops. Never retried automatically.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from the service. It carries the
// status code and raw body so the operator can see what the remote said.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion service returned HTTP %d: %s", e.Code, e.Body)
}

// DecodeError indicates the response body was not well-formed JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed completion response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
