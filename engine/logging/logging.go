// Package logging is the structured logger shared by every engine component.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across the engine.
type Logger interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(message string, fields ...Field)

	// WithComponent returns a logger that prefixes every line with the component name.
	//
	// Parameters:
	//   - component: the component name, e.g. "asset_cache"
	//
	// Returns:
	//   - Logger: the derived logger
	WithComponent(component string) Logger
}

// Field is a structured key/value attached to a log line.
type Field struct {
	Key   string
	Value any
}

// WithField creates a new field.
func WithField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

type logger struct {
	base      *logrus.Logger
	component string
}

var _ Logger = &logger{}

// New creates a logger writing to out at the given level. Unknown levels fall back to info.
//
// Parameters:
//   - level: a logrus level name (debug, info, warn, error)
//   - out: the destination, os.Stderr when nil
//   - colors: whether the level is colorized
//
// Returns:
//   - Logger: the logger
func New(level string, out io.Writer, colors bool) Logger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetFormatter(&Formatter{
		TimestampFormat: "15:04:05.000",
		DisableColors:   !colors,
	})
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	return &logger{base: l}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return &logger{base: l}
}

var (
	stdMu sync.RWMutex
	std   = New("info", os.Stderr, true)
)

// Default returns the process-wide logger. It is safe for concurrent use with SetDefault.
func Default() Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	stdMu.Lock()
	defer stdMu.Unlock()
	std = l
}

func (l *logger) WithComponent(component string) Logger {
	return &logger{base: l.base, component: component}
}

func (l *logger) entry(fields []Field) *logrus.Entry {
	data := make(logrus.Fields, len(fields)+1)
	if l.component != "" {
		data[componentKey] = l.component
	}
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.base.WithFields(data)
}

func (l *logger) Debug(message string, fields ...Field) {
	l.entry(fields).Debug(message)
}

func (l *logger) Info(message string, fields ...Field) {
	l.entry(fields).Info(message)
}

func (l *logger) Warn(message string, fields ...Field) {
	l.entry(fields).Warn(message)
}

func (l *logger) Error(message string, fields ...Field) {
	l.entry(fields).Error(message)
}
