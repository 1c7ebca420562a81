package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type level int

const (
	levelDebug level = 10
	levelInfo  level = 20
	levelWarn  level = 30
	levelError level = 40
)

// Logger is a leveled wrapper around the standard library logger.
type Logger struct {
	level level
	base  *log.Logger
}

// New builds a Logger writing to stdout with the given prefix, e.g. "[api] ".
func New(prefix, lvl string) *Logger {
	return NewWithWriter(os.Stdout, prefix, lvl)
}

func NewWithWriter(w io.Writer, prefix, lvl string) *Logger {
	return &Logger{
		level: parseLevel(lvl),
		base:  log.New(w, prefix, log.LstdFlags|log.LUTC|log.Lshortfile),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{level: levelError + 1, base: log.New(io.Discard, "", 0)}
}

// OrDiscard lets constructors accept a nil logger.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func parseLevel(v string) level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *Logger) output(lv level, tag, format string, args ...any) {
	if lv < l.level {
		return
	}
	// depth 3: output -> Infof -> caller
	_ = l.base.Output(3, tag+" "+sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.output(levelDebug, "[DEBUG]", format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.output(levelInfo, "[INFO]", format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.output(levelWarn, "[WARN]", format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.output(levelError, "[ERROR]", format, args...)
}

// Fatalf logs unconditionally and exits.
func (l *Logger) Fatalf(format string, args ...any) {
	_ = l.base.Output(2, "[FATAL] "+sprintf(format, args...))
	os.Exit(1)
}

// Writer exposes the underlying writer, e.g. for gin's request logger.
func (l *Logger) Writer() io.Writer {
	return l.base.Writer()
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
