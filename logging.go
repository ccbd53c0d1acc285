package desim

import (
	"fmt"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// LogLevel mirrors eventloop/logging.go's LogLevel, trimmed to the levels
// this package actually emits.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(l))
	}
}

// LogEntry is a structured record describing a core lifecycle event:
// an unhandled failure surfacing from Step, a process terminating, a
// condition resolving or failing, a resource admitting a waiter or
// preempting a user. Grounded on eventloop/logging.go's LogEntry.
type LogEntry struct {
	Level    LogLevel
	Category string // "scheduler", "process", "condition", "resource"
	Time     Time
	Message  string
	Err      error
	Fields   map[string]any
}

// Logger is the structured logging interface the core and resource
// package log through. Grounded on eventloop/logging.go's Logger.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// noopLogger discards every entry without allocating.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything. It is the
// default used by NewEnvironment when WithLogger is not supplied.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Log(LogEntry) {}

func (noopLogger) IsEnabled(LogLevel) bool { return false }

// logifaceLogger adapts a *logiface.Logger[*stumpy.Event] (the pack's own
// structured logging stack) to this package's Logger interface.
type logifaceLogger struct {
	logger *logiface.Logger[*stumpy.Event]
}

// NewLogifaceLogger wraps an existing logiface logger, typically built via
// stumpy.L.New(...), as this package's Logger.
func NewLogifaceLogger(logger *logiface.Logger[*stumpy.Event]) Logger {
	return &logifaceLogger{logger: logger}
}

// NewDefaultLogger returns a Logger backed by stumpy.L.New(), logiface's
// ready-made structured logger, writing to stderr and filtering out
// entries below the given minimum level.
func NewDefaultLogger(level LogLevel) Logger {
	return NewLogifaceLogger(stumpy.L.New(
		stumpy.L.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](toLogifaceLevel(level)),
	))
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return l.logger.Level() >= toLogifaceLevel(level)
}

func (l *logifaceLogger) Log(entry LogEntry) {
	b := l.logger.Build(toLogifaceLevel(entry.Level))
	if b == nil {
		return
	}
	b.Str("category", entry.Category)
	b.Float64("sim_time", entry.Time)
	for k, v := range entry.Fields {
		b.Any(k, v)
	}
	if entry.Err != nil {
		b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
