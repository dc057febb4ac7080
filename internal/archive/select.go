// internal/archive/select.go

package archive

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

var (
	rotatedGlob   = glob.MustCompile("*.log.*")
	containerGlob = glob.MustCompile("*.zip")
	tempGlob      = glob.MustCompile("*.zip" + TempMarker + "*")
)

// Select returns the rotated segments that belong to logPath: entries of its
// directory whose name carries the ".log." rotation marker, contains the base
// file name and is neither a zip container nor a container left half written.
// The result is sorted by name, which for timestamp suffixes is rotation order.
func Select(logPath string) ([]string, error) {
	dir, base := filepath.Split(logPath)
	if dir == "" {
		dir = "."
	}
	belongs, err := glob.Compile("*" + glob.QuoteMeta(base) + "*")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, e := range entries {
		name := e.Name()
		if name == base || containerGlob.Match(name) || tempGlob.Match(name) {
			continue
		}
		if rotatedGlob.Match(name) && belongs.Match(name) {
			segments = append(segments, filepath.Join(dir, name))
		}
	}
	sort.Strings(segments)
	return segments, nil
}
