// internal/archive/archiver.go

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// CombinedSuffix is appended to the log path to name the single-container archive.
const CombinedSuffix = "s-old.zip"

// TempMarker separates a container name from the random part of the temporary
// file it is written to.
const TempMarker = ".tmp-"

// DebugLogger is the logging surface the archiver reports through.
type DebugLogger interface {
	Debug(format string, args ...interface{})
}

// Variables for file operations to allow failure injection in tests
var (
	readSegment   = os.ReadFile
	removeSegment = os.Remove
)

// Archiver compresses the expired rotated segments of one log file.
type Archiver struct {
	Path      string // the current log file, e.g. /tmp/worker.log
	SingleZip bool   // one combined container instead of one container per segment
	Logger    DebugLogger
	Now       func() time.Time
}

// Result describes what one archival run did.
type Result struct {
	Container  string           // combined container, set in single-zip mode when segments existed
	Containers []string         // per-file containers, in segment order
	Archived   []string         // segments compressed and removed
	Failed     map[string]error // segments left in place, with the reason
}

// String renders the result for debug logging.
func (r Result) String() string {
	if r.Container != "" {
		return fmt.Sprintf("%s (%d archived, %d failed)", r.Container, len(r.Archived), len(r.Failed))
	}
	return fmt.Sprintf("[%s] (%d archived, %d failed)", strings.Join(r.Containers, ", "), len(r.Archived), len(r.Failed))
}

// CombinedPath returns the combined container path for a log file.
func CombinedPath(logPath string) string {
	return logPath + CombinedSuffix
}

// Comment returns the container comment for an archival run at t.
func Comment(t time.Time) string {
	return fmt.Sprintf("Compressed Unused Old Rotated Logs since ~%s.", t.Format("2006-01-02T15:04:05"))
}

// Run archives every selected segment. It is best effort: a segment that cannot
// be read, written or removed is recorded in Result.Failed and the others are
// still processed. Run never panics and never returns an error.
func (a *Archiver) Run() (res Result) {
	res.Failed = make(map[string]error)
	defer func() {
		if r := recover(); r != nil {
			res.Failed[a.Path] = fmt.Errorf("archival aborted: %v", r)
		}
	}()

	a.debug("ZIP Compressing Unused Old Rotated Logs.")
	segments, err := Select(a.Path)
	if err != nil {
		res.Failed[a.Path] = fmt.Errorf("failed to list rotated segments: %w", err)
		return res
	}
	if len(segments) == 0 {
		return res
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	comment := Comment(now())

	if a.SingleZip {
		a.combine(segments, comment, &res)
	} else {
		a.perFile(segments, comment, &res)
	}
	a.debug("%s", res)
	return res
}

func (a *Archiver) debug(format string, args ...interface{}) {
	if a.Logger != nil {
		a.Logger.Debug(format, args...)
	}
}

func (a *Archiver) combine(segments []string, comment string, res *Result) {
	target := CombinedPath(a.Path)

	added, err := writeContainer(target, comment, true, segments, res.Failed)
	if err != nil {
		for _, seg := range segments {
			if _, failed := res.Failed[seg]; !failed {
				res.Failed[seg] = err
			}
		}
		return
	}
	if len(added) == 0 {
		return
	}
	res.Container = target
	a.removeArchived(added, res)
	a.listing(target)
}

func (a *Archiver) perFile(segments []string, comment string, res *Result) {
	for _, seg := range segments {
		target := seg + ".zip"
		added, err := writeContainer(target, comment, false, []string{seg}, res.Failed)
		if err != nil {
			res.Failed[seg] = err
			continue
		}
		if len(added) == 0 {
			continue
		}
		res.Containers = append(res.Containers, target)
		a.removeArchived(added, res)
	}
}

func (a *Archiver) removeArchived(added []string, res *Result) {
	for _, path := range added {
		if err := removeSegment(path); err != nil {
			res.Failed[path] = fmt.Errorf("archived but not removed: %w", err)
			continue
		}
		res.Archived = append(res.Archived, path)
	}
}

// listing logs the content of a container, one line per entry.
func (a *Archiver) listing(target string) {
	if a.Logger == nil {
		return
	}
	zr, err := zip.OpenReader(target)
	if err != nil {
		a.debug("Cannot list %s: %v", target, err)
		return
	}
	defer zr.Close()

	a.debug("%-46s %19s %12s", "File Name", "Modified", "Size")
	for _, f := range zr.File {
		a.debug("%-46s %19s %12s", f.Name, f.Modified.Format("2006-01-02 15:04:05"), humanize.Bytes(f.UncompressedSize64))
	}
}

// writeContainer writes segments into target through a temporary file that is
// renamed into place, so target is either the old or the complete new container.
// Segments are read one at a time; one that cannot be read is recorded in
// failed and left out. With carry set, the entries of an existing target are
// copied over, except those replaced by a segment of the same name. It returns
// the segments stored; when none could be stored, target is not touched.
func writeContainer(target, comment string, carry bool, segments []string, failed map[string]error) (added []string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+TempMarker+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary container for %s: %w", target, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	names := make(map[string]bool, len(segments))
	for _, seg := range segments {
		if err := addSegment(zw, seg); err != nil {
			var skip unreadableError
			if errors.As(err, &skip) {
				failed[seg] = skip.err
				continue
			}
			return nil, fmt.Errorf("failed to add %s to %s: %w", seg, target, err)
		}
		added = append(added, seg)
		names[filepath.Base(seg)] = true
	}
	if len(added) == 0 {
		return nil, nil
	}

	if carry {
		if err = copyExisting(zw, target, names); err != nil {
			return nil, err
		}
	}

	if err = zw.SetComment(comment); err != nil {
		return nil, fmt.Errorf("failed to set comment on %s: %w", target, err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish %s: %w", target, err)
	}
	if err = tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync %s: %w", target, err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", target, err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return nil, fmt.Errorf("failed to move container into place at %s: %w", target, err)
	}
	committed = true
	return added, nil
}

// unreadableError marks a segment that was left out; the container is still usable.
type unreadableError struct{ err error }

func (e unreadableError) Error() string { return e.err.Error() }
func (e unreadableError) Unwrap() error { return e.err }

// addSegment reads one segment and stores it as a single entry. Only one
// segment is held in memory at a time.
func addSegment(zw *zip.Writer, seg string) error {
	info, err := os.Stat(seg)
	if err != nil {
		return unreadableError{err}
	}
	if !info.Mode().IsRegular() {
		return unreadableError{fmt.Errorf("%s is not a regular file", seg)}
	}
	data, err := readSegment(seg)
	if err != nil {
		return unreadableError{err}
	}

	hdr := &zip.FileHeader{
		Name:     filepath.Base(seg),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	hdr.SetMode(info.Mode())
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyExisting(zw *zip.Writer, target string, replaced map[string]bool) error {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return nil
	}
	zr, err := zip.OpenReader(target)
	if err != nil {
		return fmt.Errorf("failed to open existing container %s: %w", target, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if replaced[f.Name] {
			continue
		}
		if err := zw.Copy(f); err != nil {
			return fmt.Errorf("failed to carry %s over from %s: %w", f.Name, target, err)
		}
	}
	return nil
}
