// Package failure defines the error kinds surfaced to callers of the tool
// surface and the "Error: ..." text convention used to report them.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was refused or failed.
type Kind string

const (
	UnsafePath      Kind = "UNSAFE_PATH"
	UnsupportedType Kind = "UNSUPPORTED_TYPE"
	TooLarge        Kind = "TOO_LARGE"
	NotFound        Kind = "NOT_FOUND"
	DecodeFailed    Kind = "DECODE_FAILED"
	EncodeFailed    Kind = "ENCODE_FAILED"
	CommandBlocked  Kind = "COMMAND_BLOCKED"
	TimedOut        Kind = "TIMED_OUT"
	ToolUnavailable Kind = "TOOL_UNAVAILABLE"
	InvalidArgument Kind = "INVALID_ARGUMENT"
	RateLimited     Kind = "RATE_LIMITED"
	IOFailure       Kind = "IO_FAILURE"
)

// Prefix starts every failure report so callers can tell errors from content.
const Prefix = "Error: "

// Error implements error so a Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	return string(k)
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a bare Kind, so errors.Is(err, failure.TooLarge) works.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns a failure of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind carrying the underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind of err. Unclassified errors are IOFailure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return IOFailure
}

// Report renders err for the caller.
func Report(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return Prefix + fe.Error()
	}
	return Prefix + fmt.Sprintf("%s: %v", IOFailure, err)
}
