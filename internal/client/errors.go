package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies which layer an APIError came from.
type ErrorKind int

const (
	// KindTransport covers connection failures, TLS errors, timeouts and undecodable
	// success bodies.
	KindTransport ErrorKind = iota + 1
	// KindNonSuccess is a completed exchange with a non-2xx status.
	KindNonSuccess
	// KindLocalIO covers local file access and reading a response body to text.
	KindLocalIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNonSuccess:
		return "non-success"
	case KindLocalIO:
		return "local-io"
	default:
		return "unknown"
	}
}

// BodyKind tells whether an error body followed the server's {"error": "..."} convention.
type BodyKind int

const (
	BodyStructured BodyKind = iota + 1
	BodyRaw
)

// ErrorBody is the payload of a non-success response.
type ErrorBody struct {
	Kind    BodyKind
	Message string
}

// ParseErrorBody classifies a response body. It never fails: anything that is not a
// JSON object with a string "error" field is kept verbatim as raw text.
func ParseErrorBody(text string) ErrorBody {
	var envelope struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Error != nil {
		return ErrorBody{Kind: BodyStructured, Message: *envelope.Error}
	}
	return ErrorBody{Kind: BodyRaw, Message: text}
}

// APIError is the single error type returned by API operations.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Body       ErrorBody
	Err        error
}

// NewTransportError wraps a failure to complete the HTTP exchange or decode its result.
func NewTransportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Err: err}
}

// NewNonSuccessError records a non-2xx status together with its classified body.
func NewNonSuccessError(status int, body ErrorBody) *APIError {
	return &APIError{Kind: KindNonSuccess, StatusCode: status, Body: body}
}

// NewLocalIOError wraps a local file or body read failure.
func NewLocalIOError(err error) *APIError {
	return &APIError{Kind: KindLocalIO, Err: err}
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindNonSuccess:
		status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
		if e.Body.Message == "" {
			return "server responded with " + status
		}
		return fmt.Sprintf("server responded with %s: %s", status, e.Body.Message)
	case KindLocalIO:
		return fmt.Sprintf("local I/O failure: %v", e.Err)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	return apiErr.Kind, true
}

// IsTransport reports whether err is an APIError of kind KindTransport.
func IsTransport(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransport
}

// IsNonSuccess reports whether err is an APIError of kind KindNonSuccess.
func IsNonSuccess(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNonSuccess
}

// IsLocalIO reports whether err is an APIError of kind KindLocalIO.
func IsLocalIO(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindLocalIO
}

// StatusCode returns the HTTP status of a non-success APIError.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindNonSuccess {
		return 0, false
	}
	return apiErr.StatusCode, true
}
