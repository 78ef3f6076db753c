// Package sprint operates an X-ray pixel detector acquisition pipeline:
// device session management, temporal-spatial clustering into graded
// species events, energy calibration, and rotating-file persistence.
package sprint

import (
	"errors"
	"fmt"
)

// Error is a structured error carrying the operation, a taxonomy code, and
// an optional wrapped cause.
type Error struct {
	Op    string // operation that failed, e.g. "connect", "loadConfig"
	Code  Code   // taxonomy category
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("sprint: %s: %s (%s)", e.Op, msg, e.Code)
	}
	return fmt.Sprintf("sprint: %s (%s)", msg, e.Code)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// Code categorizes failures per the error taxonomy: configuration,
// connection, runtime acquisition, buffer overflow, output file open
// failure, and spurious wakeup.
type Code string

const (
	CodeConfig     Code = "config"     // missing/corrupt calib file, unreadable pixel mask
	CodeConnection Code = "connection" // socket creation, chip-id mismatch
	CodeRuntime    Code = "runtime"    // transport exception during read
	CodeOverflow   Code = "overflow"   // buffer overflow, non-fatal
	CodeFileOpen   Code = "file_open"  // output file could not be opened
	CodeSpurious   Code = "spurious"   // spurious wakeup, harmless
)

func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

func WrapError(op string, code Code, inner error) *Error {
	if inner == nil {
		return nil
	}
	return &Error{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a *Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
