//go:build !windows && !plan9

// internal/logger/syslog_unix.go

package logger

import (
	"fmt"
	"log/syslog"
)

// syslogWriter is the part of *syslog.Writer the sink uses.
type syslogWriter interface {
	Crit(m string) error
	Err(m string) error
	Warning(m string) error
	Info(m string) error
	Debug(m string) error
	Close() error
}

// Variable for the dial function to allow mocking in tests
var syslogDial = func(network, addr, tag string) (syslogWriter, error) {
	return syslog.Dial(network, addr, syslog.LOG_USER|syslog.LOG_DEBUG, tag)
}

// SyslogSink forwards record messages to the local syslog daemon.
type SyslogSink struct {
	name   string
	addr   string
	writer syslogWriter
}

// NewSyslogSink connects to the syslog socket at addr, trying datagram first.
func NewSyslogSink(name, addr string) (*SyslogSink, error) {
	var lastErr error
	for _, network := range []string{"unixgram", "unix"} {
		w, err := syslogDial(network, addr, processName)
		if err == nil {
			return &SyslogSink{name: name, addr: addr, writer: w}, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to connect to syslog at %s: %w", addr, lastErr)
}

// Log sends the message at the priority matching the record level.
func (s *SyslogSink) Log(rec *Record) error {
	msg := rec.Message
	switch {
	case rec.Level >= CRITICAL:
		return s.writer.Crit(msg)
	case rec.Level >= ERROR:
		return s.writer.Err(msg)
	case rec.Level >= WARN:
		return s.writer.Warning(msg)
	case rec.Level >= INFO:
		return s.writer.Info(msg)
	default:
		return s.writer.Debug(msg)
	}
}

// Addr returns the socket path the sink writes to.
func (s *SyslogSink) Addr() string {
	return s.addr
}

// Close closes the syslog connection.
func (s *SyslogSink) Close() error {
	return s.writer.Close()
}

// Name returns the name of the sink.
func (s *SyslogSink) Name() string {
	return s.name
}

var _ Sink = (*SyslogSink)(nil)
