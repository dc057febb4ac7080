// internal/logger/reporter.go

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Reporter prints sink failures to stderr. It must never log through a Logger,
// since the failure it reports may be the logger's own.
type Reporter struct {
	mu        sync.Mutex
	w         io.Writer
	sometimes rate.Sometimes
}

// NewReporter returns a reporter that prints the first burst reports and then
// at most one report per interval.
func NewReporter(w io.Writer, burst int, interval time.Duration) *Reporter {
	return &Reporter{
		w:         w,
		sometimes: rate.Sometimes{First: burst, Interval: interval},
	}
}

var (
	defaultReporter     *Reporter
	defaultReporterOnce sync.Once
)

// StderrReporter returns the shared stderr reporter.
func StderrReporter() *Reporter {
	defaultReporterOnce.Do(func() {
		defaultReporter = NewReporter(os.Stderr, 10, time.Second)
	})
	return defaultReporter
}

// Report writes one "[logger] ..." line, subject to throttling.
func (r *Reporter) Report(format string, args ...interface{}) {
	if r == nil {
		return
	}
	r.sometimes.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		_, _ = fmt.Fprintf(r.w, "[logger] "+format+"\n", args...)
	})
}
