package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"

	"github.com/pipforge/pipforge/pkg/buildinfo"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := indexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// Logger is the engine's structured-but-lightweight logger. It has the novel
// property that it still functions if nil, but it doesn't log anything -- this
// lets components accept an optional logger without a nil check at every call
// site. It wraps the standard library's log package so that it respects
// whatever output destination and flags have been configured there, and it
// colorizes warning and error lines with fatih/color the way the rest of this
// codebase's CLI output is colorized. It is safe for concurrent usage.
type Logger struct {
	// prefix is any prefix specified for the logger, built up one
	// Sublogger call at a time (e.g. "engine.cache.local").
	prefix string
	// level is the minimum level this logger (and its subloggers) will emit.
	level Level
}

// RootLogger is the root logger from which all other loggers derive. Its
// level defaults to LevelInfo; NewRootLogger can be used to override it.
var RootLogger = &Logger{level: LevelInfo}

// NewRootLogger creates a new root logger at the specified level.
func NewRootLogger(level Level) *Logger {
	return &Logger{level: level}
}

// Sublogger creates a new sublogger with the specified name, inheriting this
// logger's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(v ...any) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: %s", fmt.Sprint(v...)))
	}
}

// Errorf logs error information with an error prefix and red color.
func (l *Logger) Errorf(format string, v ...any) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: %s", fmt.Sprintf(format, v...)))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(v ...any) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %s", fmt.Sprint(v...)))
	}
}

// Warnf logs error information with a warning prefix and yellow color.
func (l *Logger) Warnf(format string, v ...any) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %s", fmt.Sprintf(format, v...)))
	}
}

// Info logs information with semantics equivalent to fmt.Print.
func (l *Logger) Info(v ...any) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Infof logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Infof(format string, v ...any) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debug logs information with semantics equivalent to fmt.Print, but only at
// LevelDebug or more verbose, or when PIPFORGE_DEBUG=1 is set.
func (l *Logger) Debug(v ...any) {
	if l.enabled(LevelDebug) || buildinfo.DebugEnabled {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only at
// LevelDebug or more verbose, or when PIPFORGE_DEBUG=1 is set.
func (l *Logger) Debugf(format string, v ...any) {
	if l.enabled(LevelDebug) || buildinfo.DebugEnabled {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Writer returns an io.Writer that writes lines using Info.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return discard{}
	}
	return &writer{callback: l.Info}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
