package portal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSubmitInProgress  = errors.New("portal: a submit is already in progress")
	ErrAlreadyPending    = errors.New("portal: identity verification is pending review")
	ErrSessionClosed     = errors.New("portal: session is closed")
	ErrInvalidTransition = errors.New("portal: invalid wizard transition")
)

// ValidationError blocks a submit until the named field is fixed. Field is
// empty when the server rejected the request as a whole.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "portal: " + e.Msg
	}
	return fmt.Sprintf("portal: %s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// NetworkError is a transport failure or a non-2xx answer that has no more
// specific type. Status is 0 for transport failures.
type NetworkError struct {
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("portal: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("portal: %s: %d %s", e.Op, e.Status, e.Msg)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op  string
	Msg string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("portal: %s: %s", e.Op, e.Msg)
}

// ConflictError covers duplicate email, a KYC already pending and a stale
// version token.
type ConflictError struct {
	Op  string
	Msg string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("portal: %s: %s", e.Op, e.Msg)
}

func statusError(op string, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return &ValidationError{Msg: msg}
	case http.StatusNotFound:
		return &NotFoundError{Op: op, Msg: msg}
	case http.StatusConflict:
		return &ConflictError{Op: op, Msg: msg}
	}
	return &NetworkError{Op: op, Status: status, Msg: msg}
}
