// internal/logger/fields.go

package logger

import "time"

// Fields converts a record into the flat field map used by the json, text and
// gelf encodings.
func (r *Record) Fields() map[string]interface{} {
	return map[string]interface{}{
		"time":      r.Time.UTC().Format(time.RFC3339Nano),
		"level":     int(r.Level),
		"levelname": r.Level.String(),
		"msg":       r.Message,
		"logger":    r.LoggerName,
		"process":   r.ProcessName,
		"pid":       r.PID,
		"thread":    r.ThreadName,
		"tid":       r.ThreadID,
		"func":      r.Function,
		"file":      r.File,
		"line":      r.Line,
	}
}
