package fvmerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestExitCodeOfActorAbort(t *testing.T) {
	err := NewActorAbort(ExitCode(17), "user exit")
	require.Equal(t, ExitCode(17), ExitCodeOf(err))
}

func TestExitCodeOfOutOfGas(t *testing.T) {
	require.Equal(t, SysErrOutOfGas, ExitCodeOf(NewOutOfGas("ran dry")))
}

func TestExitCodeOfFatalMapsReserved(t *testing.T) {
	require.Equal(t, SysErrReserved, ExitCodeOf(NewFatal("broken invariant")))
}

func TestExitCodeOfNilIsOK(t *testing.T) {
	require.Equal(t, ExitOK, ExitCodeOf(nil))
}

func TestFatalUnwraps(t *testing.T) {
	cause := errors.New("boom")
	f := WrapFatal(cause, "context: %s", "extra")
	require.ErrorIs(t, f, cause)
}

func TestBacktraceAccumulates(t *testing.T) {
	var bt Backtrace
	bt.Push(Frame{Source: 100, Method: 2, Code: ExitCode(17), Message: "exit"})
	bt.Cause = NewActorAbort(17, "exit")
	require.Len(t, bt.Frames, 1)
	require.Contains(t, bt.String(), "actor 100 method 2")
}

func TestSyscallErrorString(t *testing.T) {
	err := NewSyscallError(NotFound, "no such actor %d", 5)
	require.Equal(t, "NotFound: no such actor 5", err.Error())
}
