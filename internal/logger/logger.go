package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

// LogLevelCritical passes every level filter, LogLevelNone included.
const LogLevelCritical LogLevel = -1

// Sink receives every message that passes the level filter, after
// formatting. It is used to mirror local warnings to the host.
type Sink func(level LogLevel, message string)

type Logger struct {
	logger *log.Logger
	level  LogLevel
	tag    string
	sink   *atomic.Pointer[Sink]
}

func NewLogger(logger *log.Logger, level LogLevel) *Logger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Logger{
		logger: logger,
		level:  level,
		tag:    "",
		sink:   new(atomic.Pointer[Sink]),
	}
}

// ParseLevel accepts either the numeric form used by the -log flag or a
// level name.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "none":
		return LogLevelNone, nil
	case "1", "error":
		return LogLevelError, nil
	case "2", "warn", "warning":
		return LogLevelWarning, nil
	case "3", "info":
		return LogLevelInfo, nil
	case "4", "debug":
		return LogLevelDebug, nil
	}
	return LogLevelNone, fmt.Errorf("unknown log level %q", s)
}

// WithTag creates a new logger with a tag prefix
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{
		logger: l.logger,
		level:  l.level,
		tag:    tag,
		sink:   l.sink,
	}
}

// SetSink installs fn on this logger and every logger derived from it
// with WithTag. Passing nil removes it. It is safe to call while other
// goroutines are logging.
func (l *Logger) SetSink(fn Sink) {
	if fn == nil {
		l.sink.Store(nil)
		return
	}
	l.sink.Store(&fn)
}

func (l *Logger) formatMessage(level string, format string) string {
	if l.tag != "" {
		if level != "" {
			return "[" + l.tag + "] " + level + " " + format
		}
		return "[" + l.tag + "] " + format
	}
	if level != "" {
		return level + " " + format
	}
	return format
}

func (l *Logger) emit(level LogLevel, prefix, format string, v []interface{}) {
	l.logger.Printf(l.formatMessage(prefix, format), v...)
	if sink := l.sink.Load(); sink != nil {
		msg := fmt.Sprintf(format, v...)
		if l.tag != "" {
			msg = "[" + l.tag + "] " + msg
		}
		(*sink)(level, msg)
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.emit(LogLevelDebug, "DEBUG:", format, v)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.emit(LogLevelInfo, "", format, v)
	}
}

// Printf is an alias for Infof for compatibility
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level >= LogLevelWarning {
		l.emit(LogLevelWarning, "WARN:", format, v)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.emit(LogLevelError, "ERROR:", format, v)
	}
}

// Criticalf logs a failure the process cannot continue past.
func (l *Logger) Criticalf(format string, v ...interface{}) {
	l.emit(LogLevelCritical, "CRITICAL:", format, v)
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.emit(LogLevelCritical, "FATAL:", format, v)
	os.Exit(1)
}
