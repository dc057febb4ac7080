// internal/logger/formatter.go

package logger

import (
	"strconv"
	"strings"
)

// TimeLayout is the timestamp layout of the structured line format.
const TimeLayout = "2006-01-02 15:04:05"

// Formatter renders records as single text lines.
type Formatter interface {
	Format(rec *Record) string
}

// LineFormatter is the fixed structured format used by the file and console sinks:
//
//	<time> <LEVEL>: <process> (<pid>) <thread> (<tid>) <logger>.<func>: <message> <file>:<line>
type LineFormatter struct{}

// Format renders rec without a trailing newline.
func (LineFormatter) Format(rec *Record) string {
	var sb strings.Builder
	sb.Grow(128 + len(rec.Message) + len(rec.File))

	sb.WriteString(rec.Time.Format(TimeLayout))
	sb.WriteString(" ")
	sb.WriteString(rec.Level.String())
	sb.WriteString(": ")
	sb.WriteString(rec.ProcessName)
	sb.WriteString(" (")
	sb.WriteString(strconv.Itoa(rec.PID))
	sb.WriteString(") ")
	sb.WriteString(rec.ThreadName)
	sb.WriteString(" (")
	sb.WriteString(strconv.FormatUint(rec.ThreadID, 10))
	sb.WriteString(") ")
	sb.WriteString(rec.LoggerName)
	sb.WriteString(".")
	sb.WriteString(rec.Function)
	sb.WriteString(": ")
	sb.WriteString(rec.Message)
	sb.WriteString(" ")
	sb.WriteString(rec.File)
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(rec.Line))

	return sb.String()
}

var _ Formatter = LineFormatter{}
