package internal

import (
	"errors"
	"fmt"
)

// NetworkError represents a transport failure where no response was received
type NetworkError struct {
	Op  string // "upload", "summary", "extract", "ask"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError represents a non-2xx answer from the backend
type ServerError struct {
	Op     string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error [%s]: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("server error [%s]: status %d: %s", e.Op, e.Status, e.Body)
}

// NotReadyError is returned when the backend answered 200 but the payload
// carried no result yet (summary and extraction only)
type NotReadyError struct {
	Op string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("not ready [%s]: empty answer", e.Op)
}

// ValidationError represents rejected user input (blank chat text)
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s must not be blank", e.Field)
}

// StorageError represents errors accessing the durable store
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "parse"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PollExhaustedError is returned once every poll attempt came back without a result
type PollExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *PollExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s not ready after %d attempt(s)", e.Op, e.Attempts)
	}
	return fmt.Sprintf("%s not ready after %d attempt(s): %v", e.Op, e.Attempts, e.Last)
}

func (e *PollExhaustedError) Unwrap() error {
	return e.Last
}

// ErrNoDocument is returned by the strict view policy when no document was uploaded
var ErrNoDocument = errors.New("no document uploaded: run 'legal-buddy upload <file>' first")

// IsNotReady reports whether err signals a result that is still being computed
func IsNotReady(err error) bool {
	var nr *NotReadyError
	return errors.As(err, &nr)
}

// IsValidation reports whether err is a suppressed input validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotifiedError wraps an error that was already shown to the user as a
// notification
type NotifiedError struct {
	Err error
}

func (e *NotifiedError) Error() string {
	return e.Err.Error()
}

func (e *NotifiedError) Unwrap() error {
	return e.Err
}

// IsNotified reports whether err was already surfaced as a notification
func IsNotified(err error) bool {
	var ne *NotifiedError
	return errors.As(err, &ne)
}

// IsRetryable reports whether a poll should try again after err. Transport
// failures, server errors and not-ready answers all qualify.
func IsRetryable(err error) bool {
	var ne *NetworkError
	var se *ServerError
	return IsNotReady(err) || errors.As(err, &ne) || errors.As(err, &se)
}
