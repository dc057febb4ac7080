package archive

import (
	"archive/zip"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	lines []string
}

func (c *captureLogger) Debug(format string, args ...interface{}) {
	c.lines = append(c.lines, format)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func zipEntries(t *testing.T, path string) (map[string]string, string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out, zr.Comment
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 3, 7, 8, 9, 0, time.UTC)
}

// setupSegments creates worker.log plus rotated segments and some unrelated files.
func setupSegments(t *testing.T, days ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "worker.log")
	writeFile(t, logPath, "current")
	var segments []string
	for _, d := range days {
		seg := logPath + "." + d
		writeFile(t, seg, "content of "+d)
		segments = append(segments, seg)
	}
	writeFile(t, filepath.Join(dir, "other.log.2024-01-01"), "unrelated")
	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")
	return logPath, segments
}

func TestSelect(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-02", "2024-01-01")
	dir := filepath.Dir(logPath)
	writeFile(t, logPath+".2023-12-31.zip", "already archived")
	writeFile(t, logPath+"s-old.zip", "combined")

	got, err := Select(logPath)
	require.NoError(t, err)

	sort.Strings(segments)
	assert.Equal(t, segments, got)
	assert.NotContains(t, got, filepath.Join(dir, "other.log.2024-01-01"))
	assert.NotContains(t, got, logPath)
}

func TestSelect_MissingDirectory(t *testing.T) {
	_, err := Select(filepath.Join(t.TempDir(), "missing", "worker.log"))
	assert.Error(t, err)
}

func TestArchiver_CombinedMode(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01", "2024-01-02")
	capture := &captureLogger{}

	a := &Archiver{Path: logPath, SingleZip: true, Logger: capture, Now: fixedNow}
	res := a.Run()

	assert.Equal(t, logPath+"s-old.zip", res.Container)
	assert.Empty(t, res.Failed)
	assert.Equal(t, segments, res.Archived)

	entries, comment := zipEntries(t, res.Container)
	assert.Equal(t, map[string]string{
		"worker.log.2024-01-01": "content of 2024-01-01",
		"worker.log.2024-01-02": "content of 2024-01-02",
	}, entries)
	assert.Equal(t, "Compressed Unused Old Rotated Logs since ~2024-01-03T07:08:09.", comment)

	for _, seg := range segments {
		_, err := os.Stat(seg)
		assert.True(t, os.IsNotExist(err), "segment %s should be removed", seg)
	}
	_, err := os.Stat(logPath)
	assert.NoError(t, err, "current log file must stay")
	assert.Contains(t, capture.lines, "%-46s %19s %12s")
}

func TestArchiver_CombinedModeAppendsToExisting(t *testing.T) {
	logPath, _ := setupSegments(t, "2024-01-01")
	a := &Archiver{Path: logPath, SingleZip: true, Now: fixedNow}
	first := a.Run()
	require.Empty(t, first.Failed)

	writeFile(t, logPath+".2024-01-02", "second day")
	second := a.Run()
	require.Empty(t, second.Failed)

	entries, _ := zipEntries(t, second.Container)
	assert.Len(t, entries, 2)
	assert.Equal(t, "content of 2024-01-01", entries["worker.log.2024-01-01"])
	assert.Equal(t, "second day", entries["worker.log.2024-01-02"])
}

func TestArchiver_PerFileMode(t *testing.T) {
	days := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	logPath, segments := setupSegments(t, days...)

	a := &Archiver{Path: logPath, SingleZip: false, Now: fixedNow}
	res := a.Run()

	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Container)
	require.Len(t, res.Containers, 3)
	for i, seg := range segments {
		assert.Equal(t, seg+".zip", res.Containers[i])
		entries, comment := zipEntries(t, res.Containers[i])
		assert.Equal(t, map[string]string{filepath.Base(seg): "content of " + days[i]}, entries)
		assert.Contains(t, comment, "Compressed Unused Old Rotated Logs since ~")

		_, err := os.Stat(seg)
		assert.True(t, os.IsNotExist(err))
	}
	_, err := os.Stat(logPath + "s-old.zip")
	assert.True(t, os.IsNotExist(err), "per-file mode must not create the combined container")
}

func TestArchiver_UnreadableSegmentIsLeftInPlace(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01", "2024-01-02", "2024-01-03")
	locked := segments[1]

	orig := readSegment
	readSegment = func(name string) ([]byte, error) {
		if name == locked {
			return nil, os.ErrPermission
		}
		return orig(name)
	}
	defer func() { readSegment = orig }()

	for _, single := range []bool{true, false} {
		a := &Archiver{Path: logPath, SingleZip: single, Now: fixedNow}
		res := a.Run()

		require.Contains(t, res.Failed, locked)
		assert.True(t, errors.Is(res.Failed[locked], os.ErrPermission))
		_, err := os.Stat(locked)
		assert.NoError(t, err, "unreadable segment must stay on disk")
	}

	entries, _ := zipEntries(t, logPath+"s-old.zip")
	assert.Len(t, entries, 2)
	assert.NotContains(t, entries, filepath.Base(locked))
	for _, seg := range []string{segments[0], segments[2]} {
		_, err := os.Stat(seg)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestArchiver_DirectorySegmentIsSkipped(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01")
	dirSegment := logPath + ".2024-01-02"
	require.NoError(t, os.Mkdir(dirSegment, 0755))

	res := (&Archiver{Path: logPath, SingleZip: true, Now: fixedNow}).Run()

	assert.Equal(t, segments, res.Archived)
	assert.Contains(t, res.Failed, dirSegment)
}

func TestArchiver_RemoveFailureIsRecorded(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01")

	orig := removeSegment
	removeSegment = func(string) error { return os.ErrPermission }
	defer func() { removeSegment = orig }()

	res := (&Archiver{Path: logPath, SingleZip: false, Now: fixedNow}).Run()

	assert.Empty(t, res.Archived)
	require.Contains(t, res.Failed, segments[0])
	assert.Equal(t, []string{segments[0] + ".zip"}, res.Containers)
}

func TestArchiver_CorruptCombinedContainer(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01")
	writeFile(t, logPath+"s-old.zip", "this is not a zip file")

	res := (&Archiver{Path: logPath, SingleZip: true, Now: fixedNow}).Run()

	assert.Empty(t, res.Container)
	assert.Contains(t, res.Failed, segments[0])
	_, err := os.Stat(segments[0])
	assert.NoError(t, err, "segment must survive a failed container write")

	data, err := os.ReadFile(logPath + "s-old.zip")
	require.NoError(t, err)
	assert.Equal(t, "this is not a zip file", string(data), "existing container must not be touched")
}

func TestArchiver_NothingToArchive(t *testing.T) {
	logPath, _ := setupSegments(t)

	res := (&Archiver{Path: logPath, SingleZip: true}).Run()

	assert.Empty(t, res.Container)
	assert.Empty(t, res.Archived)
	assert.Empty(t, res.Failed)
	_, err := os.Stat(logPath + "s-old.zip")
	assert.True(t, os.IsNotExist(err))
}

// Two leftover daily segments of "worker" end up in a single worker.logs-old.zip.
func TestArchiver_WorkerScenario(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "worker.log")
	writeFile(t, logPath, "debug line\n")
	writeFile(t, filepath.Join(dir, "worker.log.2024-01-01"), "day one\n")
	writeFile(t, filepath.Join(dir, "worker.log.2024-01-02"), "day two\n")

	res := (&Archiver{Path: logPath, SingleZip: true}).Run()

	assert.Equal(t, filepath.Join(dir, "worker.logs-old.zip"), res.Container)
	entries, _ := zipEntries(t, res.Container)
	assert.Equal(t, map[string]string{
		"worker.log.2024-01-01": "day one\n",
		"worker.log.2024-01-02": "day two\n",
	}, entries)

	left, err := filepath.Glob(filepath.Join(dir, "worker.log.*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSelect_SkipsHalfWrittenContainers(t *testing.T) {
	logPath, segments := setupSegments(t, "2024-01-01")
	leftover := logPath + ".2024-01-01.zip" + TempMarker + "123"
	writeFile(t, leftover, "partial zip")
	writeFile(t, logPath+CombinedSuffix+TempMarker+"456", "partial combined")

	got, err := Select(logPath)
	require.NoError(t, err)
	assert.Equal(t, segments, got)

	res := (&Archiver{Path: logPath, Now: fixedNow}).Run()
	assert.Equal(t, []string{segments[0] + ".zip"}, res.Containers)
	assert.FileExists(t, leftover)
	assert.NoFileExists(t, leftover+".zip")
}

func TestArchiver_CombinedModeReadsOneSegmentAtATime(t *testing.T) {
	logPath, _ := setupSegments(t)
	dir := filepath.Dir(logPath)
	const size = 256 * 1024
	var segments []string
	for i, day := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		seg := logPath + "." + day
		data := make([]byte, size)
		rnd := rand.New(rand.NewSource(int64(i + 1)))
		_, _ = rnd.Read(data)
		require.NoError(t, os.WriteFile(seg, data, 0644))
		segments = append(segments, seg)
	}

	// When a segment is read, every earlier one must already be in the
	// temporary container on disk rather than held in memory.
	var written []int64
	orig := readSegment
	readSegment = func(name string) ([]byte, error) {
		tmps, err := filepath.Glob(filepath.Join(dir, "*"+CombinedSuffix+TempMarker+"*"))
		require.NoError(t, err)
		require.Len(t, tmps, 1)
		info, err := os.Stat(tmps[0])
		require.NoError(t, err)
		written = append(written, info.Size())
		return orig(name)
	}
	defer func() { readSegment = orig }()

	res := (&Archiver{Path: logPath, SingleZip: true, Now: fixedNow}).Run()
	require.Empty(t, res.Failed)
	assert.Equal(t, segments, res.Archived)

	require.Len(t, written, 3)
	assert.Less(t, written[0], int64(size/2))
	assert.Greater(t, written[1], int64(size/2))
	assert.Greater(t, written[2], int64(size+size/2))

	entries, _ := zipEntries(t, res.Container)
	assert.Len(t, entries, 3)
	tmps, _ := filepath.Glob(filepath.Join(dir, "*"+TempMarker+"*"))
	assert.Empty(t, tmps)
}
