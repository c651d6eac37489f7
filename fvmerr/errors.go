// Package fvmerr implements the backtrace and error taxonomy: syscall
// errors recoverable by actor code, actor aborts that unwind one frame, and
// fatal errors that abort the whole message. Grounded on go-ethereum's
// layered sentinel-error style in core/vm (ErrDepth, ErrInsufficientBalance,
// ErrExecutionReverted), generalized into the closed enumeration spec.md
// requires.
package fvmerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorNumber is the closed enumeration of syscall errors observable by
// actor code.
type ErrorNumber int32

const (
	_ ErrorNumber = iota
	IllegalArgument
	NotFound
	Forbidden
	LimitExceeded
	InsufficientFunds
	IllegalHandle
	IllegalCodec
	IllegalCid
	Serialization
	IllegalOperation
	AssertionFailed
)

func (e ErrorNumber) String() string {
	switch e {
	case IllegalArgument:
		return "IllegalArgument"
	case NotFound:
		return "NotFound"
	case Forbidden:
		return "Forbidden"
	case LimitExceeded:
		return "LimitExceeded"
	case InsufficientFunds:
		return "InsufficientFunds"
	case IllegalHandle:
		return "IllegalHandle"
	case IllegalCodec:
		return "IllegalCodec"
	case IllegalCid:
		return "IllegalCid"
	case Serialization:
		return "Serialization"
	case IllegalOperation:
		return "IllegalOperation"
	case AssertionFailed:
		return "AssertionFailed"
	default:
		return fmt.Sprintf("ErrorNumber(%d)", int32(e))
	}
}

// SyscallError is a recoverable host error returned to actor code; gas
// already charged up to the point of failure is never refunded for it.
type SyscallError struct {
	Num ErrorNumber
	Msg string
}

func NewSyscallError(num ErrorNumber, format string, args ...any) *SyscallError {
	return &SyscallError{Num: num, Msg: fmt.Sprintf(format, args...)}
}

func (e *SyscallError) Error() string { return fmt.Sprintf("%s: %s", e.Num, e.Msg) }

// ExitCode is the user- or system-chosen outcome code of a frame.
type ExitCode uint32

const (
	ExitOK ExitCode = 0

	// System-reserved exit codes: emitted only by the executor/call
	// manager, never chosen by actor code.
	SysErrSenderInvalid      ExitCode = 1
	SysErrSenderStateInvalid ExitCode = 2
	SysErrInvalidMethod      ExitCode = 3
	SysErrReserved1          ExitCode = 4
	SysErrInvalidReceiver    ExitCode = 5
	SysErrInsufficientFunds  ExitCode = 6
	SysErrOutOfGas           ExitCode = 7
	SysErrForbidden          ExitCode = 8
	SysErrIllegalActor       ExitCode = 9
	SysErrIllegalArgument    ExitCode = 10
	SysErrReserved           ExitCode = 11

	// FirstActorErrorCode is the first exit code an actor may legally
	// choose for itself.
	FirstActorErrorCode ExitCode = 16
)

func (c ExitCode) IsSuccess() bool { return c == ExitOK }

func (c ExitCode) IsSystemError() bool { return c != ExitOK && c < FirstActorErrorCode }

func (c ExitCode) String() string {
	switch c {
	case ExitOK:
		return "OK"
	case SysErrSenderInvalid:
		return "SysErrSenderInvalid"
	case SysErrSenderStateInvalid:
		return "SysErrSenderStateInvalid"
	case SysErrInvalidMethod:
		return "SysErrInvalidMethod"
	case SysErrInvalidReceiver:
		return "SysErrInvalidReceiver"
	case SysErrInsufficientFunds:
		return "SysErrInsufficientFunds"
	case SysErrOutOfGas:
		return "SysErrOutOfGas"
	case SysErrForbidden:
		return "SysErrForbidden"
	case SysErrIllegalActor:
		return "SysErrIllegalActor"
	case SysErrIllegalArgument:
		return "SysErrIllegalArgument"
	case SysErrReserved:
		return "SysErrReserved"
	default:
		return fmt.Sprintf("ExitCode(%d)", uint32(c))
	}
}

// ActorAbort represents an actor calling vm::exit with a user-chosen code
// (or an implicit abort translated from a trapped syscall), unwinding the
// current frame and appearing as one entry in the Backtrace.
type ActorAbort struct {
	Code ExitCode
	Msg  string
}

func NewActorAbort(code ExitCode, format string, args ...any) *ActorAbort {
	return &ActorAbort{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (e *ActorAbort) Error() string { return fmt.Sprintf("actor abort %s: %s", e.Code, e.Msg) }

// Fatal is a host invariant violation: a broken caller, a state
// inconsistency, an unrecoverable panic. It always maps to SysErrReserved in
// the receipt and aborts the entire message, not just one frame. Built on
// pkg/errors so the originating stack is preserved for debugging even
// though only the diagnostic string crosses into the receipt.
type Fatal struct {
	cause error
}

func NewFatal(format string, args ...any) *Fatal {
	return &Fatal{cause: errors.Errorf(format, args...)}
}

func WrapFatal(err error, format string, args ...any) *Fatal {
	return &Fatal{cause: errors.Wrapf(err, format, args...)}
}

func (e *Fatal) Error() string { return "fatal: " + e.cause.Error() }
func (e *Fatal) Unwrap() error { return e.cause }

// OutOfGas marks gas exhaustion; treated as a non-retryable abort of the
// frame (and every nested frame it dominates). It is both a recognizable
// error kind and always maps to ExitCode SysErrOutOfGas when it escapes to
// the executor.
type OutOfGas struct {
	Msg string
}

func NewOutOfGas(format string, args ...any) *OutOfGas {
	return &OutOfGas{Msg: fmt.Sprintf(format, args...)}
}

func (e *OutOfGas) Error() string { return "out of gas: " + e.Msg }

// Frame is one entry in a Backtrace: the source actor/method that produced
// a non-success exit, bottom-up (deepest failing frame first).
type Frame struct {
	Source  uint64 // actor id
	Method  uint64
	Code    ExitCode
	Message string
}

// Backtrace is an ordered list of frames produced bottom-up on failure,
// plus the single originating cause. Grounded on deepmind.Context's
// call-index stack accumulation (openCall/closeCall), generalized from a
// trace sink into an error-propagation structure.
type Backtrace struct {
	Frames []Frame
	Cause  error
}

// Push appends a frame to the end (frames accumulate deepest-first as the
// stack unwinds).
func (b *Backtrace) Push(f Frame) {
	b.Frames = append(b.Frames, f)
}

func (b *Backtrace) String() string {
	s := ""
	for _, f := range b.Frames {
		s += fmt.Sprintf("  actor %d method %d exit %s: %s\n", f.Source, f.Method, f.Code, f.Message)
	}
	if b.Cause != nil {
		s += "cause: " + b.Cause.Error() + "\n"
	}
	return s
}

// ExitCodeOf extracts the ExitCode a given error maps to in a receipt,
// following §7's propagation policy: syscall errors never reach this layer
// directly (kernels translate them to ActorAbort or let the actor observe
// them locally); ActorAbort yields its own code; OutOfGas yields
// SysErrOutOfGas; any Fatal yields SysErrReserved; anything else is a
// programming error mapped conservatively to SysErrReserved.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var abort *ActorAbort
	if errors.As(err, &abort) {
		return abort.Code
	}
	var oog *OutOfGas
	if errors.As(err, &oog) {
		return SysErrOutOfGas
	}
	return SysErrReserved
}
