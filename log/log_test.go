package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalFormatIncludesMessageAndContext(t *testing.T) {
	var buf bytes.Buffer
	SetHandler(StreamHandler(&buf, TerminalFormat(false)))
	defer SetHandler(StreamHandler(&buf, TerminalFormat(false)))

	l := New("kernel")
	l.Info("actor created", "id", 200, "code", "account")

	out := buf.String()
	require.Contains(t, out, "actor created")
	require.Contains(t, out, "id=200")
	require.Contains(t, out, "code=account")
	require.Contains(t, out, "kernel")
}

func TestJSONFormatProducesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	SetHandler(StreamHandler(&buf, JSONFormat()))

	l := New("executor")
	l.Warn("gas over-estimate", "burned", 42)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "{"))
	require.Contains(t, out, `"msg":"gas over-estimate"`)
	require.Contains(t, out, `"lvl":"warn"`)
	require.Contains(t, out, `"module":"executor"`)
}

func TestGlogHandlerFiltersByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	inner := StreamHandler(&buf, TerminalFormat(false))
	g := NewGlogHandler(inner)
	g.Verbosity(LvlWarn)

	err := g.Log(&Record{Lvl: LvlDebug, Msg: "too chatty"})
	require.NoError(t, err)
	require.Empty(t, buf.String())

	err = g.Log(&Record{Lvl: LvlError, Msg: "should pass"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "should pass")
}

func TestGlogHandlerVmoduleOverridesGlobalVerbosity(t *testing.T) {
	var buf bytes.Buffer
	inner := StreamHandler(&buf, TerminalFormat(false))
	g := NewGlogHandler(inner)
	g.Verbosity(LvlError)
	require.NoError(t, g.Vmodule("callmgr=5"))

	require.NoError(t, g.Log(&Record{Lvl: LvlDebug, Module: "callmgr", Msg: "verbose callmgr line"}))
	require.Contains(t, buf.String(), "verbose callmgr line")

	buf.Reset()
	require.NoError(t, g.Log(&Record{Lvl: LvlDebug, Module: "kernel", Msg: "verbose kernel line"}))
	require.Empty(t, buf.String())
}

func TestVmoduleRejectsMalformedClause(t *testing.T) {
	g := NewGlogHandler(StreamHandler(new(bytes.Buffer), TerminalFormat(false)))
	require.Error(t, g.Vmodule("no-equals-sign"))
}

func TestLoggerNewMergesContext(t *testing.T) {
	var buf bytes.Buffer
	SetHandler(StreamHandler(&buf, TerminalFormat(false)))

	base := New("callmgr", "origin", 100)
	child := base.New("depth", 1)
	child.Info("send")

	out := buf.String()
	require.Contains(t, out, "origin=100")
	require.Contains(t, out, "depth=1")
}
