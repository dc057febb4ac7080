// internal/logger/syslog.go

package logger

import (
	"os"
	"runtime"
)

// Syslog socket locations checked by the bootstrap.
const (
	LinuxSyslogSocket  = "/dev/log"
	DarwinSyslogSocket = "/var/run/syslog"
)

// SyslogSocket returns the local syslog socket if one exists. When either
// known socket exists, the one matching the platform is returned.
func SyslogSocket() (string, bool) {
	if _, ok := FindSyslogSocket([]string{LinuxSyslogSocket, DarwinSyslogSocket}); !ok {
		return "", false
	}
	if runtime.GOOS == "linux" {
		return LinuxSyslogSocket, true
	}
	return DarwinSyslogSocket, true
}

// FindSyslogSocket returns the first candidate path that exists.
func FindSyslogSocket(candidates []string) (string, bool) {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
