// internal/logger/color.go

package logger

import (
	"errors"
	"unicode/utf8"
)

// ANSI sequences used by the color decorator.
const (
	ColorCritical = "\x1b[31;5;7m\n " // blinking red with black
	ColorError    = "\x1b[31m"
	ColorWarn     = "\x1b[33m"
	ColorInfo     = "\x1b[32m"
	ColorDebug    = "\x1b[35m"
	ColorReset    = "\x1b[0m"
)

// ErrMalformedMessage is returned when a message cannot be decorated.
var ErrMalformedMessage = errors.New("message is not valid UTF-8 text")

// ColorFor returns the ANSI prefix for a severity bucket.
func ColorFor(level Level) string {
	switch {
	case level >= CRITICAL:
		return ColorCritical
	case level >= ERROR:
		return ColorError
	case level >= WARN:
		return ColorWarn
	case level >= INFO:
		return ColorInfo
	case level >= DEBUG:
		return ColorDebug
	default:
		return ColorReset
	}
}

// ColorDecorator colors the message text of a record by severity.
// Only the message is touched; every other field is left as is.
type ColorDecorator struct{}

// Decorate returns a copy of rec whose message is wrapped in the level color.
// On failure rec itself is returned together with the error.
func (ColorDecorator) Decorate(rec *Record) (*Record, error) {
	if !utf8.ValidString(rec.Message) {
		return rec, ErrMalformedMessage
	}
	decorated := *rec
	decorated.Message = ColorFor(rec.Level) + rec.Message + " " + ColorReset
	return &decorated, nil
}
