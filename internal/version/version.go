package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/orgoj/anglerfish/internal/version.Version=..." at release time.
var (
	Version    = "0.3.0-dev"
	BuildDate  = "undefined"
	CommitHash = "undefined"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// buildStamp fills in the commit and date recorded by the go toolchain when
// they were not injected through ldflags.
func buildStamp() (date, commit string) {
	date, commit = BuildDate, CommitHash
	info, ok := readBuildInfo()
	if !ok {
		return date, commit
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.time":
			if date == "undefined" {
				date = s.Value
			}
		case "vcs.revision":
			if commit == "undefined" {
				if len(s.Value) > 12 {
					commit = s.Value[:12]
				} else {
					commit = s.Value
				}
			}
		}
	}
	return date, commit
}

// VersionInfo returns formatted version information
func VersionInfo() string {
	date, commit := buildStamp()
	return fmt.Sprintf("anglerfish version %s (build: %s, commit: %s, %s/%s)", Version, date, commit, runtime.GOOS, runtime.GOARCH)
}
