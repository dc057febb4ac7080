package bootstrap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgoj/anglerfish/internal/archive"
	"github.com/orgoj/anglerfish/internal/config"
	"github.com/orgoj/anglerfish/internal/logger"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 3, 7, 8, 9, 0, time.Local)
}

func testOptions(t *testing.T, name string, console *bytes.Buffer) Options {
	t.Helper()
	return Options{
		Name:     name,
		Dir:      t.TempDir(),
		Console:  console,
		Color:    ColorNever,
		NoSyslog: true,
		Logger:   logger.New(strings.TrimSpace(name)),
		Now:      fixedNow,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLogPath(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{"/var/tmp", "worker", "/var/tmp/worker.log"},
		{"/var/tmp", "  Worker ", "/var/tmp/worker.log"},
		{"/var/tmp", "MyApp", "/var/tmp/myapp.log"},
		{"/var/tmp", "", "/var/tmp/root.log"},
		{"/var/tmp", "   ", "/var/tmp/root.log"},
		{"", "worker", filepath.Join(os.TempDir(), "worker.log")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogPath(tt.dir, tt.name), "name %q", tt.name)
	}
}

func TestMakeLogger_FileAndConsole(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, " Worker ", &console)

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.Dir, "worker.log"), h.LogPath)
	assert.Same(t, opts.Logger, h.Logger)
	assert.Len(t, h.Logger.Sinks(), 2)
	assert.Equal(t, logger.LevelAll, h.Logger.Level())

	h.Logger.Info("hello from worker")
	h.Logger.Trace("very low level")

	out := console.String()
	assert.Contains(t, out, "Logger created with Log file at: "+h.LogPath+".")
	assert.Contains(t, out, "INFO: ")
	assert.Contains(t, out, "hello from worker")
	assert.Contains(t, out, "TRACE: ")
	assert.NotContains(t, out, "\x1b[")

	h.Shutdown()
	content := readFile(t, h.LogPath)
	assert.Contains(t, content, "hello from worker")
	assert.Contains(t, content, "very low level")
}

func TestMakeLogger_ColoredConsole(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.Color = ColorAlways

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()

	h.Logger.Info("green line")
	h.Logger.Error("red line")

	out := console.String()
	assert.Contains(t, out, "\x1b[32mgreen line \x1b[0m")
	assert.Contains(t, out, "\x1b[31mred line \x1b[0m")
	// the notice is logged before the console sink is attached
	assert.NotContains(t, out, "Enabled Colored Logs on current Terminal.")

	h.Shutdown()
	content := readFile(t, h.LogPath)
	assert.Contains(t, content, "Enabled Colored Logs on current Terminal.")
	assert.Contains(t, content, "green line")
	assert.NotContains(t, content, "\x1b[", "the file sink never gets colors")
}

func TestMakeLogger_AutoColorWithoutTerminal(t *testing.T) {
	var console bytes.Buffer
	assert.False(t, colorEnabled(ColorAuto, &console))
	assert.True(t, colorEnabled(ColorAlways, &console))
	assert.False(t, colorEnabled(ColorNever, os.Stderr))
}

func TestMakeLogger_Level(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.Level = "warning"

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()

	h.Logger.Info("dropped")
	h.Logger.Warn("kept")
	assert.NotContains(t, console.String(), "dropped")
	assert.Contains(t, console.String(), "WARNING: ")
}

func TestMakeLogger_KeepsThresholdWithoutLevel(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.Logger.SetLevel(logger.ERROR)

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()
	assert.Equal(t, logger.ERROR, h.Logger.Level())

	opts.Level = "debug"
	again, err := MakeLogger(opts)
	require.NoError(t, err)
	defer again.Shutdown()
	assert.Equal(t, logger.DEBUG, h.Logger.Level())
}

func TestMakeLogger_OpenFailureRegistersNothing(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	notADir := filepath.Join(opts.Dir, "plain-file")
	require.NoError(t, os.WriteFile(notADir, nil, 0644))
	opts.Dir = notADir
	before := PendingExitHooks()

	h, err := MakeLogger(opts)
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Empty(t, opts.Logger.Sinks())
	assert.Equal(t, before, PendingExitHooks())
}

func TestMakeLogger_InvalidOptionsAttachNothing(t *testing.T) {
	for _, mutate := range []func(*Options){
		func(o *Options) { o.When = "X" },
		func(o *Options) { o.When = "W7" },
		func(o *Options) { o.Level = "LOUD" },
		func(o *Options) { o.Name = "../worker" },
	} {
		var console bytes.Buffer
		opts := testOptions(t, "worker", &console)
		mutate(&opts)
		before := PendingExitHooks()

		h, err := MakeLogger(opts)
		require.Error(t, err)
		assert.Nil(t, h)
		assert.Empty(t, opts.Logger.Sinks())
		assert.Equal(t, before, PendingExitHooks())
		assert.NoFileExists(t, filepath.Join(opts.Dir, "worker.log"))
	}
}

func TestMakeLogger_RepeatedCallsAddSinks(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)

	first, err := MakeLogger(opts)
	require.NoError(t, err)
	defer first.Shutdown()

	second, err := MakeLogger(opts)
	require.NoError(t, err)
	defer second.Shutdown()

	assert.Same(t, first.Logger, second.Logger)
	assert.Equal(t, first.LogPath, second.LogPath)
	assert.Len(t, opts.Logger.Sinks(), 4)

	opts.Name = "other"
	third, err := MakeLogger(opts)
	require.NoError(t, err)
	defer third.Shutdown()
	assert.Len(t, opts.Logger.Sinks(), 6)

	console.Reset()
	opts.Logger.Info("thrice")
	assert.Equal(t, 3, strings.Count(console.String(), "thrice"))
}

func TestMakeLogger_RegistersExitHook(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	before := PendingExitHooks()

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()
	assert.Equal(t, before+1, PendingExitHooks())
}

func TestMakeLogger_SyslogMissing(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.NoSyslog = false
	opts.SyslogPaths = []string{filepath.Join(opts.Dir, "no-such-socket")}

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()

	assert.Len(t, h.Logger.Sinks(), 2)
	assert.NotContains(t, console.String(), "SysLog")
}

func TestMakeLogger_SyslogUnreachable(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.NoSyslog = false
	notASocket := filepath.Join(opts.Dir, "log")
	require.NoError(t, os.WriteFile(notASocket, nil, 0644))
	opts.SyslogPaths = []string{notASocket}

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	defer h.Shutdown()

	assert.Len(t, h.Logger.Sinks(), 2)
	assert.Contains(t, console.String(), "Unix SysLog Server not found, ignore Logging to SysLog")
}

func writeSegments(t *testing.T, logPath string, suffixes ...string) []string {
	t.Helper()
	var segments []string
	for _, s := range suffixes {
		seg := logPath + "." + s
		require.NoError(t, os.WriteFile(seg, []byte("old "+s), 0644))
		segments = append(segments, seg)
	}
	return segments
}

func TestShutdown_SingleZip(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.SingleZip = true
	segments := writeSegments(t, LogPath(opts.Dir, "worker"), "2024-01-01", "2024-01-02")

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	h.Logger.Debug("still running")

	res := h.Shutdown()
	assert.Equal(t, archive.CombinedPath(h.LogPath), res.Container)
	assert.Equal(t, filepath.Join(opts.Dir, "worker.logs-old.zip"), res.Container)
	assert.ElementsMatch(t, segments, res.Archived)
	assert.Empty(t, res.Failed)
	for _, seg := range segments {
		assert.NoFileExists(t, seg)
	}
	assert.FileExists(t, h.LogPath)
	assert.FileExists(t, res.Container)

	// the file sink is detached, console output continues
	assert.Len(t, h.Logger.Sinks(), 1)
	h.Logger.Info("after shutdown")
	assert.NotContains(t, readFile(t, h.LogPath), "after shutdown")

	again := h.Shutdown()
	assert.Equal(t, res.Container, again.Container)
}

func TestShutdown_StaleFileSinkDoesNotReopen(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)

	h, err := MakeLogger(opts)
	require.NoError(t, err)
	snapshot := h.Logger.Sinks()

	h.Shutdown()
	require.NoError(t, os.Remove(h.LogPath))

	rec := &logger.Record{Time: fixedNow(), Level: logger.INFO, Message: "late"}
	err = snapshot[0].Log(rec)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoFileExists(t, h.LogPath)
}

func TestShutdown_PerFile(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	segments := writeSegments(t, LogPath(opts.Dir, "worker"), "2024-01-01", "2024-01-02")

	h, err := MakeLogger(opts)
	require.NoError(t, err)

	res := h.Shutdown()
	assert.Empty(t, res.Container)
	require.Len(t, res.Containers, 2)
	for _, seg := range segments {
		assert.NoFileExists(t, seg)
		assert.FileExists(t, seg+".zip")
	}
}

func TestShutdown_NothingToArchive(t *testing.T) {
	var console bytes.Buffer
	opts := testOptions(t, "worker", &console)
	opts.SingleZip = true

	h, err := MakeLogger(opts)
	require.NoError(t, err)

	res := h.Shutdown()
	assert.Empty(t, res.Container)
	assert.Empty(t, res.Archived)
	assert.NoFileExists(t, archive.CombinedPath(h.LogPath))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.Name = "worker"
	cfg.Logger.SingleZip = true
	cfg.Logger.Syslog = false

	opts := FromConfig(cfg.Logger)
	assert.Equal(t, "worker", opts.Name)
	assert.Equal(t, "midnight", opts.When)
	assert.Equal(t, 1, opts.Interval)
	assert.Equal(t, 999, opts.BackupCount)
	assert.True(t, opts.SingleZip)
	assert.True(t, opts.NoSyslog)
	assert.Equal(t, ColorAuto, opts.Color)
}
