// Package errors defines the coded error taxonomy shared by the task registry,
// the reminder engine and the adapters around them. It is imported as errs.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown           = "UNKNOWN"
	CodeInvalidDateFormat = "INVALID_DATE_FORMAT"
	CodePastDeadline      = "PAST_DEADLINE"
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeNotOwner          = "NOT_OWNER"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeChannelUnresolved = "CHANNEL_UNRESOLVED"
	CodeSchedulingFailure = "SCHEDULING_TRANSIENT_FAILURE"
	CodeDelivery          = "DELIVERY"
	CodeDatabase          = "DATABASE"
	CodeConfig            = "CONFIG"
)

// Sentinel values, one per code. errors.Is matches any *Error carrying the
// same code, so call sites can build errors with their own message and still
// be recognised.
var (
	ErrInvalidDateFormat   = &Error{code: CodeInvalidDateFormat, message: "invalid date format"}
	ErrPastDeadline        = &Error{code: CodePastDeadline, message: "deadline in the past"}
	ErrTaskNotFound        = &Error{code: CodeTaskNotFound, message: "task not found"}
	ErrNotOwner            = &Error{code: CodeNotOwner, message: "requester is not the task creator"}
	ErrInvalidInput        = &Error{code: CodeInvalidInput, message: "invalid input"}
	ErrChannelUnresolved   = &Error{code: CodeChannelUnresolved, message: "reminder channel unresolved"}
	ErrSchedulingTransient = &Error{code: CodeSchedulingFailure, message: "scheduling failure"}
	ErrDelivery            = &Error{code: CodeDelivery, message: "delivery failed"}
	ErrDatabase            = &Error{code: CodeDatabase, message: "database error"}
	ErrConfig              = &Error{code: CodeConfig, message: "configuration error"}
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is a coded application error. The message is meant to be shown to
// users as is.
type Error struct {
	code    string
	message string
	err     error
}

// New returns an error with the given code and message.
func New(code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf is New with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code, message string, cause error) *Error {
	return &Error{code: code, message: message, err: cause}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

// Message returns the message without the wrapped cause.
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.code == e.code
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// UserMessage returns the user-facing message of the first *Error in err's
// chain, falling back to err.Error().
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.message
	}

	return err.Error()
}
