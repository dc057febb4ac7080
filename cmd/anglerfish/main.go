package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "anglerfish",
	Short:         "anglerfish - rotating, archiving process logger",
	Long:          "anglerfish sets up a time-rotated log file with console and syslog output and zips old rotated logs on exit.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[CRITICAL] %v\n", err)
		os.Exit(1)
	}
}
