package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orgoj/anglerfish/internal/bootstrap"
	"github.com/orgoj/anglerfish/internal/config"
	"github.com/orgoj/anglerfish/internal/logger"
	"github.com/orgoj/anglerfish/internal/version"
)

var pipeFlags struct {
	config    string
	name      string
	when      string
	interval  int
	singleZip bool
	level     string
	lineLevel string
	color     string
	dir       string
	utc       bool
	noSyslog  bool
}

func init() {
	f := pipeCmd.Flags()
	f.StringVarP(&pipeFlags.config, "config", "c", "", "YAML or TOML configuration file")
	f.StringVar(&pipeFlags.name, "name", "anglerfish", "logger name, also the log file name")
	f.StringVar(&pipeFlags.when, "when", "midnight", "rotation period: S, M, H, D, midnight or W0-W6")
	f.IntVar(&pipeFlags.interval, "interval", 1, "rotation period multiplier")
	f.BoolVar(&pipeFlags.singleZip, "single-zip", false, "archive rotated files into one combined zip")
	f.StringVar(&pipeFlags.level, "level", "ALL", "minimum level written")
	f.StringVar(&pipeFlags.lineLevel, "line-level", "INFO", "level given to each input line")
	f.StringVar(&pipeFlags.color, "color", bootstrap.ColorAuto, "console colors: auto, always or never")
	f.StringVar(&pipeFlags.dir, "dir", "", "log directory (default: OS temp dir)")
	f.BoolVar(&pipeFlags.utc, "utc", false, "rotate on UTC boundaries")
	f.BoolVar(&pipeFlags.noSyslog, "no-syslog", false, "never forward to the local syslog socket")
	rootCmd.AddCommand(pipeCmd)
}

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Log every line read from stdin",
	Long:  "pipe sets up the logger, writes every stdin line as a record and archives old rotated logs on EOF, SIGINT or SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runPipe,
}

// pipeOptions merges the config file (if any) with explicitly set flags.
func pipeOptions(cmd *cobra.Command) (bootstrap.Options, *config.Config, error) {
	cfg := config.Default()
	if pipeFlags.config != "" {
		loaded, err := config.LoadConfig(pipeFlags.config)
		if err != nil {
			return bootstrap.Options{}, nil, err
		}
		cfg = loaded
	}
	opts := bootstrap.FromConfig(cfg.Logger)

	flags := cmd.Flags()
	if pipeFlags.config == "" || flags.Changed("name") {
		opts.Name = pipeFlags.name
	}
	if pipeFlags.config == "" || flags.Changed("when") {
		opts.When = pipeFlags.when
	}
	if pipeFlags.config == "" || flags.Changed("interval") {
		opts.Interval = pipeFlags.interval
	}
	if flags.Changed("single-zip") {
		opts.SingleZip = pipeFlags.singleZip
	}
	if pipeFlags.config == "" || flags.Changed("level") {
		opts.Level = pipeFlags.level
	}
	if pipeFlags.config == "" || flags.Changed("color") {
		opts.Color = pipeFlags.color
	}
	if flags.Changed("dir") {
		opts.Dir = pipeFlags.dir
	}
	if flags.Changed("utc") {
		opts.UTC = pipeFlags.utc
	}
	if flags.Changed("no-syslog") {
		opts.NoSyslog = pipeFlags.noSyslog
	}
	opts.Console = cmd.ErrOrStderr()
	return opts, cfg, nil
}

func runPipe(cmd *cobra.Command, args []string) error {
	lineLevel, err := logger.ParseLevel(pipeFlags.lineLevel)
	if err != nil {
		return err
	}
	opts, cfg, err := pipeOptions(cmd)
	if err != nil {
		return err
	}

	h, err := bootstrap.MakeLogger(opts)
	if err != nil {
		return err
	}
	defer bootstrap.Exit()

	lgr := h.Logger
	lgr.Debug("%s", version.VersionInfo())

	manager := logger.NewManager(lgr)
	if err := manager.InitDestinations(cfg.LogDestinations); err != nil {
		lgr.Warn("Failed to initialize one or more log destinations: %v", err)
	}
	defer manager.CloseAll()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pipeFlags.config != "" {
		go func() {
			err := config.Watch(ctx, pipeFlags.config, func(c *config.Config) {
				if err := lgr.SetLevelFromString(c.Logger.Level); err != nil {
					lgr.Warn("Ignoring reloaded level: %v", err)
					return
				}
				lgr.Info("Configuration reloaded, level is now %s.", lgr.Level())
			}, func(err error) {
				lgr.Warn("Configuration reload failed: %v", err)
			})
			if err != nil {
				lgr.Warn("Configuration watcher stopped: %v", err)
			}
		}()
	}

	n, err := pipeLines(ctx, cmd.InOrStdin(), lgr, lineLevel)
	if err != nil {
		lgr.Error("Reading input failed after %d lines: %v", n, err)
		return fmt.Errorf("reading input: %w", err)
	}
	lgr.Debug("Logged %d input lines.", n)
	return nil
}

// pipeLines logs every line of r at level until EOF or ctx is done and returns
// the number of lines logged.
func pipeLines(ctx context.Context, r io.Reader, lgr *logger.Logger, level logger.Level) (int, error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return n, err
				default:
					return n, nil
				}
			}
			lgr.Output(1, level, line)
			n++
		}
	}
}
