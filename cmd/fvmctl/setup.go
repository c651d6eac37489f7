package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	fvmlog "github.com/filecoin-project/go-fvm-core/log"
)

var glogger *fvmlog.GlogHandler

func init() {
	glogger = fvmlog.NewGlogHandler(fvmlog.StreamHandler(os.Stderr, fvmlog.TerminalFormat(false)))
	glogger.Verbosity(fvmlog.LvlInfo)
	fvmlog.SetHandler(glogger)
}

// setupLogging wires the CLI's logging flags into the log package, the
// same sequence internal/debug.Setup runs before anything else executes.
func setupLogging(ctx *cli.Context) error {
	var ostream fvmlog.Handler
	if ctx.Bool(logJSONFlag.Name) {
		ostream = fvmlog.StreamHandler(os.Stderr, fvmlog.JSONFormat())
	} else {
		output, usecolor := fvmlog.AutoColorStderr()
		ostream = fvmlog.StreamHandler(output, fvmlog.TerminalFormat(usecolor))
	}
	glogger.SetHandler(ostream)
	glogger.Verbosity(fvmlog.Lvl(ctx.Int(verbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.String(vmoduleFlag.Name)); err != nil {
		return err
	}
	glogger.BacktraceAt(ctx.String(backtraceAtFlag.Name))
	fvmlog.SetHandler(glogger)

	if logFile := ctx.String(logFileFlag.Name); logFile != "" {
		fileHandler := fvmlog.NewRotatingFileHandler(fvmlog.RotatingFileConfig{
			Path:       logFile,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		}, fvmlog.TerminalFormat(false))
		fvmlog.SetHandler(multiHandler{glogger, fileHandler})
	}

	runtime.MemProfileRate = ctx.Int(memprofilerateFlag.Name)
	return nil
}

// multiHandler fans a record out to every wrapped handler, stopping at the
// first error (mirrors the teacher's MultiHandler in spirit: log to the
// terminal and to a rotated file at once).
type multiHandler []fvmlog.Handler

func (m multiHandler) Log(r *fvmlog.Record) error {
	for _, h := range m {
		if err := h.Log(r); err != nil {
			return err
		}
	}
	return nil
}
