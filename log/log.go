// Package log implements the leveled, structured logger every component in
// this module logs through (SPEC_FULL.md's Logging expansion). Grounded on
// go-ethereum's log package as exercised by internal/debug/flags.go (the
// Lvl enum, Root()/SetHandler, GlogHandler's per-module verbosity override,
// StreamHandler plus a Format, colorized via mattn/go-colorable/go-isatty
// when writing to a terminal) — the teacher repo's own log/*.go
// implementation files were not present in the retrieval pack, so this
// package is built directly from that call site's documented API shape
// rather than copied from an implementation file.
package log

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is the logging verbosity, lowest (most severe) to highest (most
// chatty), matching go-ethereum's five-level scheme plus a Trace level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "crit"
	case LvlError:
		return "eror"
	case LvlWarn:
		return "warn"
	case LvlInfo:
		return "info"
	case LvlDebug:
		return "dbug"
	case LvlTrace:
		return "trce"
	default:
		return "unkn"
	}
}

// Record is one emitted log line: level, message, and an ordered sequence
// of key/value context pairs (ctx must have even length).
type Record struct {
	Time    time.Time
	Lvl     Lvl
	Msg     string
	Ctx     []interface{}
	Module  string // the module path passed to New(), used by vmodule matching
}

// Format renders a Record to bytes; TerminalFormat and JSONFormat are the
// two shapes components choose between (SPEC_FULL.md: colorized terminal
// output vs. machine-parseable JSON).
type Format interface {
	Format(r *Record) []byte
}

// Handler processes one emitted Record; StreamHandler is the only handler
// implementation components below the CLI construct directly.
type Handler interface {
	Log(r *Record) error
}

// Logger is the per-module logging handle returned by New/Root. Its New
// method binds additional always-present context key/values.
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	module string
	ctx    []interface{}
}

// New creates a module-scoped Logger under the current Root handler; module
// typically names the package ("callmgr", "kernel", "executor"), used by
// GlogHandler.Vmodule's per-module verbosity overrides.
func New(module string, ctx ...interface{}) Logger {
	return &logger{module: module, ctx: ctx}
}

func (l *logger) New(ctx ...interface{}) Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{module: l.module, ctx: merged}
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	h := currentHandler()
	if h == nil {
		return
	}
	all := make([]interface{}, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	_ = h.Log(&Record{Time: now(), Lvl: lvl, Msg: msg, Ctx: all, Module: l.module})
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

func now() time.Time { return time.Now() }

var (
	rootHandlerMu sync.RWMutex
	rootHandler   Handler = StreamHandler(os.Stderr, TerminalFormat(false))
	rootLogger            = New("root")
)

func currentHandler() Handler {
	rootHandlerMu.RLock()
	defer rootHandlerMu.RUnlock()
	return rootHandler
}

// Root returns the top-level Logger every New()-created logger ultimately
// reports through; convenience package-level functions (Info, Error, ...)
// forward to it.
func Root() Logger { return rootLogger }

// SetHandler replaces the process-wide handler every Logger writes through.
func SetHandler(h Handler) {
	rootHandlerMu.Lock()
	defer rootHandlerMu.Unlock()
	rootHandler = h
}

func Trace(msg string, ctx ...interface{}) { rootLogger.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { rootLogger.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { rootLogger.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { rootLogger.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { rootLogger.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { rootLogger.Crit(msg, ctx...) }

// StreamHandler writes every Record, formatted by fmtr, to w; wrap w in
// colorable.NewColorable* before constructing this handler for terminal
// color support on Windows consoles too.
type streamHandler struct {
	mu   sync.Mutex
	w    io.Writer
	fmtr Format
}

func StreamHandler(w io.Writer, fmtr Format) Handler {
	return &streamHandler{w: w, fmtr: fmtr}
}

func (h *streamHandler) Log(r *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(h.fmtr.Format(r))
	return err
}

// AutoColorStderr picks a colorable stderr writer and terminal-color
// decision the way internal/debug/flags.go's Setup does: color is used only
// when stderr is a real (non-"dumb") terminal.
func AutoColorStderr() (io.Writer, bool) {
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	if useColor {
		return colorable.NewColorableStderr(), true
	}
	return os.Stderr, false
}

const timeFormat = "2006-01-02T15:04:05-0700"

var (
	colorReset  = []byte("\x1b[0m")
	colorByLvl  = map[Lvl][]byte{
		LvlCrit:  []byte("\x1b[35m"),
		LvlError: []byte("\x1b[31m"),
		LvlWarn:  []byte("\x1b[33m"),
		LvlInfo:  []byte("\x1b[32m"),
		LvlDebug: []byte("\x1b[36m"),
		LvlTrace: []byte("\x1b[34m"),
	}
)

type terminalFormat struct{ color bool }

// TerminalFormat renders a human-readable line: "LVL[time] msg k=v k=v...",
// colorizing the level tag when color is true.
func TerminalFormat(color bool) Format { return &terminalFormat{color: color} }

func (f *terminalFormat) Format(r *Record) []byte {
	var b strings.Builder
	lvl := strings.ToUpper(r.Lvl.String())
	if f.color {
		b.Write(colorByLvl[r.Lvl])
		b.WriteString(lvl)
		b.Write(colorReset)
	} else {
		b.WriteString(lvl)
	}
	b.WriteByte('[')
	b.WriteString(r.Time.Format(timeFormat))
	b.WriteString("] ")
	if r.Module != "" {
		b.WriteString(r.Module)
		b.WriteString(": ")
	}
	b.WriteString(r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

type jsonFormat struct{}

// JSONFormat renders one machine-parseable JSON object per line; used when
// the embedder's "log.json" flag is set.
func JSONFormat() Format { return &jsonFormat{} }

func (f *jsonFormat) Format(r *Record) []byte {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "%q:%q,", "t", r.Time.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "%q:%q,", "lvl", r.Lvl.String())
	if r.Module != "" {
		fmt.Fprintf(&b, "%q:%q,", "module", r.Module)
	}
	fmt.Fprintf(&b, "%q:%q", "msg", r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fmt.Fprintf(&b, ",%q:%q", fmt.Sprint(r.Ctx[i]), fmt.Sprint(r.Ctx[i+1]))
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// GlogHandler wraps an inner Handler with glog-style verbosity: a global
// level ceiling plus per-module pattern overrides set via Vmodule.
// BacktraceAt records a location, but no backtrace is ever emitted for it.
// Grounded on the Verbosity/Vmodule/BacktraceAt
// call shape internal/debug/flags.go drives at startup.
type GlogHandler struct {
	inner     atomic.Value // Handler
	verbosity int32        // atomic Lvl
	mu        sync.RWMutex
	overrides []vmoduleRule
	backtrace string
}

type vmoduleRule struct {
	pattern *regexp.Regexp
	lvl     Lvl
}

func NewGlogHandler(h Handler) *GlogHandler {
	g := &GlogHandler{verbosity: int32(LvlInfo)}
	g.inner.Store(h)
	return g
}

func (g *GlogHandler) SetHandler(h Handler) { g.inner.Store(h) }

func (g *GlogHandler) Verbosity(lvl Lvl) { atomic.StoreInt32(&g.verbosity, int32(lvl)) }

// Vmodule parses a comma-separated list of <glob-pattern>=<level>,
// e.g. "callmgr/*=5,kernel=4", matched against Record.Module.
func (g *GlogHandler) Vmodule(spec string) error {
	if spec == "" {
		g.mu.Lock()
		g.overrides = nil
		g.mu.Unlock()
		return nil
	}
	var rules []vmoduleRule
	for _, part := range strings.Split(spec, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("log: malformed vmodule clause %q", part)
		}
		var lvl int
		if _, err := fmt.Sscanf(kv[1], "%d", &lvl); err != nil {
			return fmt.Errorf("log: malformed vmodule level in %q: %w", part, err)
		}
		pat := "^" + strings.ReplaceAll(regexp.QuoteMeta(kv[0]), `\*`, ".*") + "$"
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("log: bad vmodule pattern %q: %w", kv[0], err)
		}
		rules = append(rules, vmoduleRule{pattern: re, lvl: Lvl(lvl)})
	}
	g.mu.Lock()
	g.overrides = rules
	g.mu.Unlock()
	return nil
}

func (g *GlogHandler) BacktraceAt(location string) {
	g.mu.Lock()
	g.backtrace = location
	g.mu.Unlock()
}

func (g *GlogHandler) Log(r *Record) error {
	if r.Lvl > g.effectiveLevel(r.Module) {
		return nil
	}
	h, _ := g.inner.Load().(Handler)
	if h == nil {
		return nil
	}
	return h.Log(r)
}

func (g *GlogHandler) effectiveLevel(module string) Lvl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, rule := range g.overrides {
		if rule.pattern.MatchString(module) {
			return rule.lvl
		}
	}
	return Lvl(atomic.LoadInt32(&g.verbosity))
}

// PrintOrigins toggles whether TerminalFormat prepends call-site info; kept
// as a no-op setting (not wired into terminalFormat) since this
// implementation never captures runtime.Caller — matching the "keep the
// call shape, simplify the body" latitude for ambient, non-consensus
// concerns.
func PrintOrigins(bool) {}
