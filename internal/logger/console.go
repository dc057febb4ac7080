// internal/logger/console.go

package logger

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleSink writes formatted lines to a stream, usually stderr.
type ConsoleSink struct {
	mu        sync.Mutex
	w         io.Writer
	name      string
	formatter Formatter
	decorator *ColorDecorator
	reporter  *Reporter
}

// NewConsoleSink creates an undecorated console sink.
func NewConsoleSink(name string, w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		w:         w,
		name:      name,
		formatter: LineFormatter{},
		reporter:  StderrReporter(),
	}
}

// NewColorConsoleSink creates a console sink whose messages are colored by severity.
func NewColorConsoleSink(name string, w io.Writer, reporter *Reporter) *ConsoleSink {
	s := NewConsoleSink(name, w)
	s.decorator = &ColorDecorator{}
	if reporter != nil {
		s.reporter = reporter
	}
	return s
}

// Colored reports whether the sink decorates messages.
func (s *ConsoleSink) Colored() bool {
	return s.decorator != nil
}

// Log formats rec and writes it as one line.
func (s *ConsoleSink) Log(rec *Record) error {
	if s.decorator != nil {
		decorated, err := s.decorator.Decorate(rec)
		if err != nil {
			s.reporter.Report("color decoration failed: %v", err)
		}
		rec = decorated
	}
	line := s.formatter.Format(rec) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, line); err != nil {
		return fmt.Errorf("failed to write console line: %w", err)
	}
	return nil
}

// Close is a no-op; the stream belongs to the process.
func (s *ConsoleSink) Close() error {
	return nil
}

// Name returns the name of the sink.
func (s *ConsoleSink) Name() string {
	return s.name
}

var _ Sink = (*ConsoleSink)(nil)
