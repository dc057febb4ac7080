// internal/logger/level.go

package logger

import (
	"fmt"
	"math"
	"strings"
)

// Level is a numeric severity. Any integer is a valid level; the named
// constants below are the ones the formatter and the sinks know by name.
type Level int

const (
	// Log levels
	TRACE    Level = 5
	DEBUG    Level = 10
	INFO     Level = 20
	WARN     Level = 30
	ERROR    Level = 40
	CRITICAL Level = 50

	// LevelAll is a threshold that lets every record through.
	LevelAll Level = math.MinInt32
)

// Level to string mapping
var levelNames = map[Level]string{
	TRACE:    "TRACE",
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARN:     "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

// LevelNameToLevel maps string level names to level values
var LevelNameToLevel = map[string]Level{
	"TRACE":    TRACE,
	"DEBUG":    DEBUG,
	"INFO":     INFO,
	"WARN":     WARN,
	"WARNING":  WARN,
	"ERROR":    ERROR,
	"CRITICAL": CRITICAL,
	"FATAL":    CRITICAL,
	"ALL":      LevelAll,
}

// String returns the level name, or "Level <n>" for unnamed values.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", int(l))
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	level, ok := LevelNameToLevel[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}
