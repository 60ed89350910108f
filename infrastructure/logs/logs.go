// Package logs implements the small leveled-logging contract
// infrastructure/logger builds its subsystem loggers on top of,
// matching the teacher's logger/logger.go call-site shapes (NewBackend,
// *BackendWriter variants, Logger, SetLevel, LevelFromString) without
// depending on any single concrete writer.
package logs

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a logging severity, ordered least to most severe.
type Level uint32

// The severities a Logger can be set to, and the sentinel Off that
// silences a subsystem entirely.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelStrings = map[Level]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
	LevelOff:      "OFF",
}

func (l Level) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNKNOWN"
}

// LevelFromString parses one of trace/debug/info/warn/error/critical/off,
// case-insensitively. It returns LevelInfo and false on anything else, so
// callers can default to info without special-casing the error.
func LevelFromString(s string) (Level, bool) {
	switch s {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	}
	return LevelInfo, false
}

// BackendWriter pairs an io.Writer with the minimum severity it
// accepts, so a Backend can fan a single log line out to, say, a
// combined file at debug level and an error-only file at error level.
type BackendWriter struct {
	w        io.Writer
	minLevel Level
}

// NewBackendWriter returns a BackendWriter that accepts every line at
// or above minLevel.
func NewBackendWriter(w io.Writer, minLevel Level) *BackendWriter {
	return &BackendWriter{w: w, minLevel: minLevel}
}

// NewAllLevelsBackendWriter returns a BackendWriter that accepts every
// line regardless of level, matching the teacher's combined log file.
func NewAllLevelsBackendWriter(w io.Writer) *BackendWriter {
	return NewBackendWriter(w, LevelTrace)
}

// NewErrorBackendWriter returns a BackendWriter that accepts only
// error and critical lines, matching the teacher's dedicated error log.
func NewErrorBackendWriter(w io.Writer) *BackendWriter {
	return NewBackendWriter(w, LevelError)
}

// Backend fans formatted log lines out to every writer whose minimum
// level the line clears, and mints one Logger per subsystem tag.
type Backend struct {
	writers []*BackendWriter
	mu      sync.Mutex
}

// NewBackend returns a Backend writing to every given writer.
func NewBackend(writers ...*BackendWriter) *Backend {
	return &Backend{writers: writers}
}

func (b *Backend) write(level Level, tag, msg string) {
	line := fmt.Sprintf("%s [%s] %s %s\n", time.Now().UTC().Format("2006-01-02 15:04:05.000"), level, tag, msg)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, writer := range b.writers {
		if level < writer.minLevel {
			continue
		}
		_, _ = io.WriteString(writer.w, line)
	}
}

// Logger returns a subsystem logger tagged with tag, defaulting to
// LevelInfo until SetLevel is called.
func (b *Backend) Logger(tag string) Logger {
	l := &logger{backend: b, tag: tag}
	atomic.StoreUint32(&l.level, uint32(LevelInfo))
	return l
}

// Logger is a single subsystem's leveled log sink. Every severity has
// both a plain and formatted variant, matching the teacher's call
// sites (e.g. blockValidator logging "rejecting block %s: %s").
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Critical(args ...interface{})
	Criticalf(format string, args ...interface{})

	Level() Level
	SetLevel(level Level)
}

type logger struct {
	backend *Backend
	tag     string
	level   uint32
}

func (l *logger) Level() Level         { return Level(atomic.LoadUint32(&l.level)) }
func (l *logger) SetLevel(level Level) { atomic.StoreUint32(&l.level, uint32(level)) }

func (l *logger) log(level Level, msg string) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.tag, msg)
}

func (l *logger) Trace(args ...interface{})                 { l.log(LevelTrace, fmt.Sprint(args...)) }
func (l *logger) Tracef(format string, args ...interface{})  { l.log(LevelTrace, fmt.Sprintf(format, args...)) }
func (l *logger) Debug(args ...interface{})                 { l.log(LevelDebug, fmt.Sprint(args...)) }
func (l *logger) Debugf(format string, args ...interface{})  { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *logger) Info(args ...interface{})                  { l.log(LevelInfo, fmt.Sprint(args...)) }
func (l *logger) Infof(format string, args ...interface{})   { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *logger) Warn(args ...interface{})                  { l.log(LevelWarn, fmt.Sprint(args...)) }
func (l *logger) Warnf(format string, args ...interface{})   { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *logger) Error(args ...interface{})                 { l.log(LevelError, fmt.Sprint(args...)) }
func (l *logger) Errorf(format string, args ...interface{})  { l.log(LevelError, fmt.Sprintf(format, args...)) }
func (l *logger) Critical(args ...interface{})              { l.log(LevelCritical, fmt.Sprint(args...)) }
func (l *logger) Criticalf(format string, args ...interface{}) {
	l.log(LevelCritical, fmt.Sprintf(format, args...))
}
