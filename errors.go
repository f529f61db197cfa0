package uringbench

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/dmahler/uringbench/internal/uring"
)

// ErrorCode categorizes benchmark failures by the layer that produced them.
type ErrorCode string

const (
	// ErrCodeSetupFailed: the ring-setup syscall was rejected. Fatal to
	// the whole benchmark run.
	ErrCodeSetupFailed ErrorCode = "ring setup failed"

	// ErrCodeMapFailed: a ring region mapping failed after setup
	// succeeded. Fatal; partial mappings are cleaned up before this
	// surfaces.
	ErrCodeMapFailed ErrorCode = "ring mapping failed"

	// ErrCodeEnterFailed: the submit/wait syscall returned an error.
	// Fatal to the current workload.
	ErrCodeEnterFailed ErrorCode = "ring enter failed"

	// ErrCodeIORequestFailed: one completion reported a negative result.
	// Recorded and counted; the run continues.
	ErrCodeIORequestFailed ErrorCode = "I/O request failed"

	// ErrCodeInvalidWorkload: the workload configuration cannot be run.
	ErrCodeInvalidWorkload ErrorCode = "invalid workload"

	// ErrCodeStalled: the engine made no progress with work outstanding.
	ErrCodeStalled ErrorCode = "ring stalled"

	// ErrCodeInternal: anything that doesn't fit the categories above.
	ErrCodeInternal ErrorCode = "internal error"
)

// Error is a structured benchmark error carrying the failing operation,
// its category and the kernel errno when one exists.
type Error struct {
	Op    string        // operation that failed (e.g. "setup", "run")
	Code  ErrorCode     // high-level error category
	Errno syscall.Errno // kernel errno (0 if not applicable)
	Msg   string        // human-readable message
	Inner error         // wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" && e.Errno != 0 {
		return fmt.Sprintf("uringbench: %s (op=%s errno=%d)", msg, e.Op, int(e.Errno))
	}
	if e.Op != "" {
		return fmt.Sprintf("uringbench: %s (op=%s)", msg, e.Op)
	}
	return fmt.Sprintf("uringbench: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches two structured errors by category.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates a new structured error.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError wraps a lower-level error with benchmark context, classifying
// ring-transport failures by their uring failure class and pulling the
// errno out of the chain when present.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if be, ok := inner.(*Error); ok {
		return &Error{
			Op:    op,
			Code:  be.Code,
			Errno: be.Errno,
			Msg:   be.Msg,
			Inner: be.Inner,
		}
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(inner, uring.ErrSetup):
		code = ErrCodeSetupFailed
	case errors.Is(inner, uring.ErrMmap):
		code = ErrCodeMapFailed
	case errors.Is(inner, uring.ErrEnter):
		code = ErrCodeEnterFailed
	}

	var errno syscall.Errno
	errors.As(inner, &errno)

	return &Error{
		Op:    op,
		Code:  code,
		Errno: errno,
		Msg:   inner.Error(),
		Inner: inner,
	}
}

// IsCode checks if an error matches a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsErrno checks if an error carries a specific errno.
func IsErrno(err error, errno syscall.Errno) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Errno == errno
	}
	return false
}
