package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/orgoj/anglerfish/internal/archive"
	"github.com/orgoj/anglerfish/internal/bootstrap"
	"github.com/orgoj/anglerfish/internal/logger"
)

var archiveFlags struct {
	name      string
	dir       string
	singleZip bool
	verbose   bool
}

func init() {
	f := archiveCmd.Flags()
	f.StringVar(&archiveFlags.name, "name", "", "logger name whose rotated files are archived")
	f.StringVar(&archiveFlags.dir, "dir", "", "log directory (default: OS temp dir)")
	f.BoolVar(&archiveFlags.singleZip, "single-zip", false, "collect everything into one <name>.logs-old.zip")
	f.BoolVarP(&archiveFlags.verbose, "verbose", "v", false, "print the archival debug messages")
	rootCmd.AddCommand(archiveCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Zip the rotated log files of a logger now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := &archive.Archiver{
			Path:      bootstrap.LogPath(archiveFlags.dir, archiveFlags.name),
			SingleZip: archiveFlags.singleZip,
		}
		if archiveFlags.verbose {
			lgr := logger.New("archive")
			lgr.AddSink(logger.NewConsoleSink("console", cmd.ErrOrStderr()))
			a.Logger = lgr
		}

		return printResult(cmd.OutOrStdout(), a.Run())
	},
}

// printResult writes the result and one line per failure, sorted by path.
func printResult(out io.Writer, res archive.Result) error {
	fmt.Fprintln(out, res)
	failed := make([]string, 0, len(res.Failed))
	for seg := range res.Failed {
		failed = append(failed, seg)
	}
	sort.Strings(failed)
	for _, seg := range failed {
		fmt.Fprintf(out, "failed: %s: %v\n", seg, res.Failed[seg])
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d file(s) could not be archived", len(failed))
	}
	return nil
}
