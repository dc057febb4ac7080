package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/orgoj/anglerfish/internal/bootstrap"
	"github.com/orgoj/anglerfish/internal/config"
)

func main() {
	quiet := flag.Bool("q", false, "Only report errors")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: config-validator [-q] <config-file>...")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := check(os.Stdout, path, *quiet); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// check loads and validates one config file and prints what it would set up.
func check(w io.Writer, path string, quiet bool) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if quiet {
		return nil
	}

	lc := cfg.Logger
	fmt.Fprintf(w, "%s: valid\n", path)
	fmt.Fprintf(w, "  log file:  %s\n", bootstrap.LogPath(lc.Dir, lc.Name))
	fmt.Fprintf(w, "  rotation:  when=%s interval=%d backups=%d utc=%t\n", lc.When, lc.Interval, lc.BackupCount, lc.UTC)
	fmt.Fprintf(w, "  archive:   single_zip=%t\n", lc.SingleZip)
	for _, dest := range cfg.LogDestinations {
		state := "enabled"
		if !dest.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(w, "  destination %s: %s (%s)\n", dest.Name, dest.Type, state)
	}
	return nil
}
