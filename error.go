package ragdoc

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFIG    = "config"
	EINVALID   = "invalid"
	ENOTFOUND  = "not_found"
	EFETCH     = "fetch"
	EPARSE     = "parse"
	EDIMENSION = "dimension_mismatch"
	ECONFLICT  = "conflict"
	EINTERNAL  = "internal"
)

// Error represents an application-specific error. Code is one of the
// application error codes above and Message is safe to show to the user.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ragdoc error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// BatchError reports that an indexing batch failed to embed or upsert.
// Batches before Batch have already been written to the index.
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// QueryError reports the stage at which a question failed.
type QueryError struct {
	State QueryState
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
