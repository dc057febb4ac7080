// internal/logger/logger.go

package logger

import (
	"errors"
	"fmt"
	"sync"
)

// RootName is the name of the process-wide logger.
const RootName = "root"

// Logger fans records out to an ordered set of sinks. Sinks are only ever
// appended; a Logger is safe for concurrent use.
type Logger struct {
	name     string
	mu       sync.RWMutex
	sinks    []Sink
	level    Level
	reporter *Reporter
}

// Global instance
var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide logger. It starts without sinks and with a
// threshold that accepts every level.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(RootName)
	})
	return defaultLogger
}

// New creates an independent logger.
func New(name string) *Logger {
	return &Logger{
		name:     name,
		level:    LevelAll,
		reporter: StderrReporter(),
	}
}

// Name returns the logger name used in the structured line.
func (l *Logger) Name() string {
	return l.name
}

// SetReporter replaces the reporter used for sink failures.
func (l *Logger) SetReporter(r *Reporter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reporter = r
}

// AddSink attaches s after the already attached sinks.
func (l *Logger) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

// Sinks returns a snapshot of the attached sinks in attachment order.
func (l *Logger) Sinks() []Sink {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Sink, len(l.sinks))
	copy(out, l.sinks)
	return out
}

// RemoveSink detaches sink and reports whether it was attached. Used when a
// single sink is closed before the logger itself (e.g. on shutdown of one handle).
func (l *Logger) RemoveSink(sink Sink) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.sinks {
		if s == sink {
			l.sinks = append(l.sinks[:i:i], l.sinks[i+1:]...)
			return true
		}
	}
	return false
}

// SetLevel sets the minimum level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelFromString sets the level from a string name
func (l *Logger) SetLevelFromString(levelName string) error {
	level, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	l.SetLevel(level)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Enabled reports whether a record at level would be dispatched.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level()
}

// logf builds a record and hands it to every sink. Formatting happens outside the lock.
func (l *Logger) logf(calldepth int, level Level, format string, args ...interface{}) {
	l.mu.RLock()
	skip := level < l.level
	sinks := l.sinks
	reporter := l.reporter
	l.mu.RUnlock()

	if skip || len(sinks) == 0 {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	rec := newRecord(l.name, level, msg, calldepth)

	for _, s := range sinks {
		if err := s.Log(rec); err != nil {
			reporter.Report("sink '%s' failed: %v", s.Name(), err)
		}
	}
}

// Output logs msg at level, attributing it to the caller calldepth frames up
// (1 = the caller of Output).
func (l *Logger) Output(calldepth int, level Level, msg string) {
	l.logf(calldepth+1, level, "%s", msg)
}

// Log logs a message at an arbitrary level
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.logf(2, level, format, args...)
}

// Trace logs a message at TRACE level
func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(2, TRACE, format, args...)
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(2, DEBUG, format, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(2, INFO, format, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(2, WARN, format, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(2, ERROR, format, args...)
}

// Critical logs a message at CRITICAL level. It does not exit the process.
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logf(2, CRITICAL, format, args...)
}

// Close closes every attached sink and detaches them.
func (l *Logger) Close() error {
	l.mu.Lock()
	sinks := l.sinks
	l.sinks = nil
	l.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink '%s': %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
