package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength leaves room for ".log" plus the longest rotation suffix and
// ".zip" within a 255-byte file name.
const MaxNameLength = 200

// ErrInputTooLong indicates the input string exceeds the maximum allowed length.
var ErrInputTooLong = errors.New("input exceeds maximum length")

// ErrInvalidChars indicates the input string contains disallowed characters.
var ErrInvalidChars = errors.New("input contains invalid characters")

// LoggerName checks that a logger name can be used as a log file base name
// inside the log directory. Case and surrounding whitespace do not matter,
// the name is normalized before it becomes a file name.
func LoggerName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: got %d, max %d", ErrInputTooLong, len(name), MaxNameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is not a file name", ErrInvalidChars, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0 {
			return fmt.Errorf("%w: path separators are not allowed", ErrInvalidChars)
		}
		if !unicode.IsPrint(r) && r != ' ' {
			return fmt.Errorf("%w: non-printable character %U", ErrInvalidChars, r)
		}
	}
	return nil
}
