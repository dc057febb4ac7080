//go:build windows || plan9

// internal/logger/syslog_other.go

package logger

import (
	"errors"
	"runtime"
)

// SyslogSink is unavailable on this platform.
type SyslogSink struct{}

// NewSyslogSink always fails on this platform.
func NewSyslogSink(name, addr string) (*SyslogSink, error) {
	return nil, errors.New("syslog is not supported on " + runtime.GOOS)
}

func (s *SyslogSink) Log(rec *Record) error { return nil }
func (s *SyslogSink) Close() error          { return nil }
func (s *SyslogSink) Name() string          { return "" }
func (s *SyslogSink) Addr() string          { return "" }
