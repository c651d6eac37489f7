package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingFileConfig configures lumberjack's rolling-file writer; field
// names mirror lumberjack.Logger directly since this is a thin constructor,
// not a reinterpretation of its policy.
type RotatingFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewRotatingFileHandler builds a StreamHandler over a lumberjack-rotated
// file, for long-running embedders that want on-disk logs independent of
// the terminal handler cmd/fvmctl installs by default. Output is run
// through Uncolor first: a rotated file is read by tools other than a
// terminal, so ANSI escapes are stripped even if fmtr was built with
// color on.
func NewRotatingFileHandler(cfg RotatingFileConfig, fmtr Format) Handler {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return StreamHandler(uncolorWriter{w}, fmtr)
}

// uncolorWriter strips ANSI color sequences from every write, so a rotated
// log file never carries terminal escape codes.
type uncolorWriter struct{ w io.Writer }

func (u uncolorWriter) Write(p []byte) (int, error) {
	if _, err := u.w.Write([]byte(Uncolor(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
