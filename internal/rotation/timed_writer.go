// internal/rotation/timed_writer.go

package rotation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultBackupCount is the number of rotated segments kept when none is configured.
const DefaultBackupCount = 999

// Config holds the parameters of a TimedWriter.
type Config struct {
	Filename    string
	When        string // rollover keyword, default "midnight"
	Interval    int    // multiplier of the period, default 1
	BackupCount int    // rotated segments to keep, 0 keeps all
	UTC         bool   // compute rollovers and suffixes in UTC instead of local time
	Now         func() time.Time
}

// TimedWriter is an io.WriteCloser that appends to Filename and renames it to
// "<Filename>.<suffix>" whenever a rotation period ends. Rotation happens on
// the first write after the period boundary.
type TimedWriter struct {
	mu          sync.Mutex
	filename    string
	schedule    Schedule
	backupCount int
	utc         bool
	now         func() time.Time
	file        *os.File
	rolloverAt  time.Time
	closed      bool
}

// NewTimedWriter validates cfg, opens (or creates) the log file and computes the
// first rollover time. If the file already exists, its modification time is the
// reference for that first rollover.
func NewTimedWriter(cfg Config) (*TimedWriter, error) {
	if cfg.Filename == "" {
		return nil, errors.New("timed writer requires a filename")
	}
	when := cfg.When
	if when == "" {
		when = "midnight"
	}
	schedule, err := ParseWhen(when, cfg.Interval)
	if err != nil {
		return nil, err
	}
	if cfg.BackupCount < 0 {
		return nil, fmt.Errorf("backup count cannot be negative: %d", cfg.BackupCount)
	}

	w := &TimedWriter{
		filename:    cfg.Filename,
		schedule:    schedule,
		backupCount: cfg.BackupCount,
		utc:         cfg.UTC,
		now:         cfg.Now,
	}
	if w.now == nil {
		w.now = time.Now
	}

	ref := w.clock()
	if info, err := os.Stat(w.filename); err == nil {
		ref = w.inLocation(info.ModTime())
	}
	w.rolloverAt = w.schedule.Next(ref)

	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *TimedWriter) inLocation(t time.Time) time.Time {
	if w.utc {
		return t.UTC()
	}
	return t.Local()
}

func (w *TimedWriter) clock() time.Time {
	return w.inLocation(w.now())
}

func (w *TimedWriter) openFile() error {
	if err := os.MkdirAll(filepath.Dir(w.filename), 0755); err != nil {
		return fmt.Errorf("failed to create log directory for %s: %w", w.filename, err)
	}
	file, err := os.OpenFile(w.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", w.filename, err)
	}
	w.file = file
	return nil
}

// Filename returns the path of the current (not yet rotated) file.
func (w *TimedWriter) Filename() string {
	return w.filename
}

// Schedule returns the rollover schedule.
func (w *TimedWriter) Schedule() Schedule {
	return w.schedule
}

// RolloverAt returns the time of the next rollover.
func (w *TimedWriter) RolloverAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rolloverAt
}

// Write appends p to the current file, rotating first if the period has ended.
func (w *TimedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, os.ErrClosed
	}
	if now := w.clock(); !now.Before(w.rolloverAt) {
		if err := w.rollover(now); err != nil {
			return 0, err
		}
	}
	if w.file == nil {
		if err := w.openFile(); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

// Rotate forces a rollover now, naming the segment after the current period.
func (w *TimedWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	return w.rollover(w.clock())
}

// rollover renames the current file to its segment name and opens a fresh one.
func (w *TimedWriter) rollover(now time.Time) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file %s: %w", w.filename, err)
		}
		w.file = nil
	}

	start := w.schedule.periodStart(w.rolloverAt)
	if now.Before(w.rolloverAt) {
		start = w.schedule.periodStart(w.schedule.Next(now))
	}
	segment := w.schedule.SegmentName(w.filename, start)
	if _, err := os.Stat(segment); err == nil {
		if err := os.Remove(segment); err != nil {
			return fmt.Errorf("failed to replace rotated segment %s: %w", segment, err)
		}
	}
	if _, err := os.Stat(w.filename); err == nil {
		if err := os.Rename(w.filename, segment); err != nil {
			return fmt.Errorf("failed to rotate %s to %s: %w", w.filename, segment, err)
		}
	}

	if w.backupCount > 0 {
		for _, old := range w.expiredSegments() {
			_ = os.Remove(old)
		}
	}

	next := w.schedule.Next(now)
	for !next.After(now) {
		next = next.Add(w.schedule.Interval)
	}
	w.rolloverAt = next

	return w.openFile()
}

// Segments returns the rotated segments of this file, oldest first.
func (w *TimedWriter) Segments() ([]string, error) {
	dir, base := filepath.Split(w.filename)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	prefix := base + "."
	var segments []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if w.schedule.IsSegmentSuffix(name[len(prefix):]) {
			segments = append(segments, filepath.Join(dir, name))
		}
	}
	sort.Strings(segments)
	return segments, nil
}

// expiredSegments returns the segments beyond the backup count, oldest first.
func (w *TimedWriter) expiredSegments() []string {
	segments, err := w.Segments()
	if err != nil || len(segments) <= w.backupCount {
		return nil
	}
	return segments[:len(segments)-w.backupCount]
}

// Close closes the current file.
func (w *TimedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
