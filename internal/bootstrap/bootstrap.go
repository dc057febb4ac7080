// internal/bootstrap/bootstrap.go

// Package bootstrap builds the process logger: a time-rotated log file in the
// temp directory, console output (colored on terminals), optional syslog
// forwarding and archival of expired rotated files at shutdown.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/orgoj/anglerfish/internal/archive"
	"github.com/orgoj/anglerfish/internal/config"
	"github.com/orgoj/anglerfish/internal/logger"
	"github.com/orgoj/anglerfish/internal/rotation"
	"github.com/orgoj/anglerfish/internal/validation"
)

// FallbackName is used when the logger name is empty after normalization.
const FallbackName = "root"

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options configures MakeLogger. The zero value plus a Name is a usable setup.
type Options struct {
	Name        string
	When        string // rotation keyword, default "midnight"
	Interval    int
	SingleZip   bool // one combined archive instead of one archive per rotated file
	BackupCount int  // rotated files kept, default 999
	Dir         string
	UTC         bool
	Level       string // minimum level name, default: every level
	Color       string // auto, always or never
	Console     io.Writer
	NoSyslog    bool
	SyslogPaths []string // sockets to try instead of the platform defaults
	Logger      *logger.Logger
	Now         func() time.Time
}

// FromConfig maps the logger section of a config file onto Options.
func FromConfig(cfg config.LoggerConfig) Options {
	return Options{
		Name:        cfg.Name,
		When:        cfg.When,
		Interval:    cfg.Interval,
		SingleZip:   cfg.SingleZip,
		BackupCount: cfg.BackupCount,
		Dir:         cfg.Dir,
		UTC:         cfg.UTC,
		Level:       cfg.Level,
		Color:       cfg.Color,
		NoSyslog:    !cfg.Syslog,
	}
}

// Handle is the result of one MakeLogger call.
type Handle struct {
	Logger   *logger.Logger
	LogPath  string
	fileSink *logger.FileSink
	archiver *archive.Archiver

	once   sync.Once
	result archive.Result
}

// LogPath derives the log file path for name under dir.
func LogPath(dir, name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	if base == "" {
		base = FallbackName
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, base+".log")
}

// MakeLogger attaches a rotating file sink, a console sink and, when a local
// socket exists, a syslog sink to the logger (the process-wide one unless
// opts.Logger is set), and registers the archival of expired rotated files as
// an exit hook. Sinks are only ever added: calling MakeLogger again, even with
// another name, adds sinks to the same logger. The level threshold is changed
// only when opts.Level is set; a new logger already accepts every level.
func MakeLogger(opts Options) (*Handle, error) {
	lgr := opts.Logger
	if lgr == nil {
		lgr = logger.Default()
	}
	when := opts.When
	if when == "" {
		when = "midnight"
	}
	backups := opts.BackupCount
	if backups == 0 {
		backups = rotation.DefaultBackupCount
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	if err := validation.LoggerName(opts.Name); err != nil {
		return nil, fmt.Errorf("invalid logger name: %w", err)
	}
	var level *logger.Level
	if opts.Level != "" {
		l, err := logger.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = &l
	}
	if _, err := rotation.ParseWhen(when, opts.Interval); err != nil {
		return nil, err
	}

	logPath := LogPath(opts.Dir, opts.Name)
	h := &Handle{
		Logger:  lgr,
		LogPath: logPath,
		archiver: &archive.Archiver{
			Path:      logPath,
			SingleZip: opts.SingleZip,
			Logger:    lgr,
			Now:       opts.Now,
		},
	}
	writer, err := rotation.NewTimedWriter(rotation.Config{
		Filename:    logPath,
		When:        when,
		Interval:    opts.Interval,
		BackupCount: backups,
		UTC:         opts.UTC,
		Now:         opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open rotating log file: %w", err)
	}
	registerExitHook(func() { h.Shutdown() })

	h.fileSink = logger.NewWriterSink("file:"+logPath, writer)
	lgr.AddSink(h.fileSink)
	if level != nil {
		lgr.SetLevel(*level)
	}

	if colorEnabled(opts.Color, console) {
		lgr.Debug("Enabled Colored Logs on current Terminal.")
		lgr.AddSink(logger.NewColorConsoleSink("console", console, nil))
	} else {
		lgr.AddSink(logger.NewConsoleSink("console", console))
	}

	if !opts.NoSyslog {
		attachSyslog(lgr, opts.SyslogPaths)
	}

	lgr.Debug("Logger created with Log file at: %s.", logPath)
	return h, nil
}

func attachSyslog(lgr *logger.Logger, candidates []string) {
	var addr string
	var ok bool
	if len(candidates) > 0 {
		addr, ok = logger.FindSyslogSocket(candidates)
	} else {
		addr, ok = logger.SyslogSocket()
	}
	if !ok {
		return
	}
	sink, err := logger.NewSyslogSink("syslog:"+addr, addr)
	if err != nil {
		lgr.Debug("Unix SysLog Server not found, ignore Logging to SysLog: %v", err)
		return
	}
	lgr.AddSink(sink)
	lgr.Debug("Unix SysLog Server trying to Log to SysLog: %s", addr)
}

// colorEnabled decides whether console output gets ANSI colors.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if runtime.GOOS == "windows" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Shutdown closes the rotating file sink and archives the expired rotated
// files. It runs once; later calls return the first result.
func (h *Handle) Shutdown() archive.Result {
	h.once.Do(func() {
		if h.fileSink != nil && h.Logger.RemoveSink(h.fileSink) {
			if err := h.fileSink.Close(); err != nil {
				logger.StderrReporter().Report("failed to close %s: %v", h.LogPath, err)
			}
		}
		h.result = h.archiver.Run()
	})
	return h.result
}
