// Package logger provides leveled, structured logging for magpie.
//
// Callers depend on the small Logger interface; the implementation writes
// through zerolog, either as human-friendly console lines or as JSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLevel accepts zerolog level names ("debug", "info", "warn", "error",
// "disabled") plus "silent".
func ParseLevel(s string) (Level, error) {
	if strings.EqualFold(strings.TrimSpace(s), "silent") {
		return LevelSilent, nil
	}
	zl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return fromZerolog(zl), nil
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func fromZerolog(zl zerolog.Level) Level {
	switch zl {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return LevelDebug
	case zerolog.InfoLevel, zerolog.NoLevel:
		return LevelInfo
	case zerolog.WarnLevel:
		return LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return LevelError
	default:
		return LevelSilent
	}
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Options controls how a logger renders.
type Options struct {
	Level  Level
	Output io.Writer // defaults to os.Stderr
	JSON   bool      // raw zerolog JSON instead of console lines
}

type zeroLogger struct {
	mu    *sync.Mutex
	level *Level
	zl    zerolog.Logger
}

// New creates a zerolog-backed logger.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: !isTerminal(out)}
	}
	level := opts.Level
	return &zeroLogger{
		mu:    &sync.Mutex{},
		level: &level,
		zl:    zerolog.New(out).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// NewLogger creates a console logger with the specified level and output
func NewLogger(level Level, out io.Writer) Logger {
	return New(Options{Level: level, Output: out})
}

// NewSilentLogger creates a logger that outputs nothing
func NewSilentLogger() Logger {
	return New(Options{Level: LevelSilent, Output: io.Discard, JSON: true})
}

// SetLevel sets the minimum logging level. Loggers derived with WithFields
// share the level of their parent.
func (l *zeroLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// WithFields returns a new logger with additional fields
func (l *zeroLogger) WithFields(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zeroLogger{mu: l.mu, level: l.level, zl: ctx.Logger()}
}

func (l *zeroLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *zeroLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *zeroLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *zeroLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *zeroLogger) log(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < *l.level || *l.level == LevelSilent {
		return
	}

	zl := l.zl.Level(zerolog.DebugLevel)
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = zl.Debug()
	case LevelInfo:
		ev = zl.Info()
	case LevelWarn:
		ev = zl.Warn()
	default:
		ev = zl.Error()
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			ev = ev.AnErr(f.Key, err)
			continue
		}
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLogger(LevelInfo, os.Stderr)
)

// SetDefault sets the global default logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the global default logger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
