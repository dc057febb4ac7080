// internal/logger/file_logger.go

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/orgoj/anglerfish/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File formats
const (
	FormatLine = "line" // fixed structured line, see LineFormatter
	FormatJSON = "json"
	FormatText = "text"
)

// FileSink writes records to a file. The writer is the time-rotated main log
// file, a size-rotated lumberjack logger or a plain file.
type FileSink struct {
	mu        sync.Mutex
	writer    io.WriteCloser // *rotation.TimedWriter, *lumberjack.Logger or *os.File
	format    string
	name      string
	minLevel  Level
	formatter Formatter
}

// NewWriterSink wraps an already opened writer using the structured line format.
func NewWriterSink(name string, w io.WriteCloser) *FileSink {
	return &FileSink{
		writer:    w,
		format:    FormatLine,
		name:      name,
		minLevel:  LevelAll,
		formatter: LineFormatter{},
	}
}

// NewFileSink creates a file destination from config.
func NewFileSink(cfg config.LogDestination) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file logger requires a path")
	}
	if cfg.Format != FormatJSON && cfg.Format != FormatText {
		return nil, fmt.Errorf("invalid file logger format: %s", cfg.Format)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("file logger requires a name")
	}

	minLevel, err := destinationLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("destination '%s': %w", cfg.Name, err)
	}

	var writer io.WriteCloser
	var maxSizeMB int
	var maxAgeDays int

	if cfg.Rotation.MaxSize != "" {
		// A bare number is MB; values with units are converted.
		maxSizeMB, err = strconv.Atoi(cfg.Rotation.MaxSize)
		if err != nil {
			var sizeBytes int64
			sizeBytes, err = config.ParseSize(cfg.Rotation.MaxSize)
			if err != nil {
				return nil, fmt.Errorf("invalid rotation.max_size '%s' for destination '%s': %w", cfg.Rotation.MaxSize, cfg.Name, err)
			}
			maxSizeMB = int(sizeBytes / (1024 * 1024))
			if sizeBytes > 0 && maxSizeMB == 0 {
				// Minimum value is 1MB (lumberjack limitation)
				fmt.Printf("[WARN] Destination '%s': rotation.max_size value is too small (%d bytes). Using minimum 1MB.\n", cfg.Name, sizeBytes)
				maxSizeMB = 1
			}
		}
		if maxSizeMB < 0 {
			fmt.Printf("[WARN] Destination '%s': rotation.max_size '%s' is negative, disabling size-based rotation.\n", cfg.Name, cfg.Rotation.MaxSize)
			maxSizeMB = 0
		}
	}

	if cfg.Rotation.MaxAge != "" {
		ageDuration, err := config.ParseDuration(cfg.Rotation.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid rotation.max_age '%s' for destination '%s': %w", cfg.Rotation.MaxAge, cfg.Name, err)
		}
		maxAgeDays = int(ageDuration.Hours() / 24)
		if maxAgeDays <= 0 {
			maxAgeDays = 1
			fmt.Printf("[WARN] Destination '%s': rotation.max_age '%s' is less than 1 day, using 1 day.\n", cfg.Name, cfg.Rotation.MaxAge)
		}
	}

	if maxSizeMB > 0 || maxAgeDays > 0 || cfg.Rotation.MaxBackups > 0 {
		writer = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    maxSizeMB,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     maxAgeDays,
			Compress:   cfg.Rotation.Compress,
			LocalTime:  false,
		}
	} else {
		file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Path, err)
		}
		writer = file
	}

	return &FileSink{
		writer:   writer,
		format:   cfg.Format,
		name:     cfg.Name,
		minLevel: minLevel,
	}, nil
}

// Log writes the record as one line.
func (l *FileSink) Log(rec *Record) error {
	if rec.Level < l.minLevel {
		return nil
	}

	var line []byte
	switch l.format {
	case FormatJSON:
		var err error
		line, err = json.Marshal(rec.Fields())
		if err != nil {
			return fmt.Errorf("failed to marshal log record to JSON: %w", err)
		}
	case FormatText:
		line = formatText(rec)
	default:
		line = []byte(l.formatter.Format(rec))
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write log line: %w", err)
	}
	return nil
}

// formatText renders: [TIME] LEVEL: msg key=value key2=value2 ...
func formatText(rec *Record) []byte {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(rec.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	sb.WriteString("] ")
	sb.WriteString(rec.Level.String())
	sb.WriteString(": ")
	sb.WriteString(rec.Message)

	record := rec.Fields()
	keys := make([]string, 0, len(record))
	for k := range record {
		if k == "time" || k == "level" || k == "levelname" || k == "msg" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(formatValue(record[k]))
	}

	return []byte(sb.String())
}

// formatValue converts different types to string for text logging.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if strings.ContainsAny(v, " \"") {
			return strconv.Quote(v)
		}
		return v
	case int:
		return strconv.Itoa(v)
	case uint64:
		return strconv.FormatUint(v, 10)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// destinationLevel parses an optional per-destination level.
func destinationLevel(name string) (Level, error) {
	if name == "" {
		return LevelAll, nil
	}
	return ParseLevel(name)
}

// Writer returns the underlying writer.
func (l *FileSink) Writer() io.Writer {
	return l.writer
}

// Close closes the underlying file writer.
func (l *FileSink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}

// Name returns the name of the sink.
func (l *FileSink) Name() string {
	return l.name
}

// Ensure FileSink implements the Sink interface.
var _ Sink = (*FileSink)(nil)
