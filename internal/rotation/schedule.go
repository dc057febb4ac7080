// internal/rotation/schedule.go

package rotation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWhen is returned for a rollover keyword that is not recognized.
var ErrInvalidWhen = errors.New("invalid rollover interval")

const day = 24 * time.Hour

// Schedule describes when a log file rolls over and how rotated segments are named.
type Schedule struct {
	When     string        // normalized keyword: S, M, H, D, MIDNIGHT, W0..W6
	Interval time.Duration // length of one rotation period
	Suffix   string        // time layout appended to the file name of a rotated segment
	weekday  int           // 0 = Monday, only for W0..W6
	match    *regexp.Regexp
}

// ParseWhen turns a rollover keyword (case-insensitive) and a multiplier into a Schedule.
// An interval below 1 is treated as 1.
func ParseWhen(when string, interval int) (Schedule, error) {
	if interval < 1 {
		interval = 1
	}
	n := time.Duration(interval)
	s := Schedule{When: strings.ToUpper(strings.TrimSpace(when))}

	switch {
	case s.When == "S":
		s.Interval = n * time.Second
		s.Suffix = "2006-01-02_15-04-05"
		s.match = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}$`)
	case s.When == "M":
		s.Interval = n * time.Minute
		s.Suffix = "2006-01-02_15-04"
		s.match = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}$`)
	case s.When == "H":
		s.Interval = n * time.Hour
		s.Suffix = "2006-01-02_15"
		s.match = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}$`)
	case s.When == "D" || s.When == "MIDNIGHT":
		s.Interval = n * day
		s.Suffix = "2006-01-02"
		s.match = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	case strings.HasPrefix(s.When, "W"):
		if len(s.When) != 2 {
			return Schedule{}, fmt.Errorf("%w: you must specify a day for weekly rollover from 0 to 6 (0 is Monday): %s", ErrInvalidWhen, when)
		}
		wd, err := strconv.Atoi(s.When[1:])
		if err != nil || wd < 0 || wd > 6 {
			return Schedule{}, fmt.Errorf("%w: invalid day specified for weekly rollover: %s", ErrInvalidWhen, when)
		}
		s.weekday = wd
		s.Interval = n * 7 * day
		s.Suffix = "2006-01-02"
		s.match = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	default:
		return Schedule{}, fmt.Errorf("%w: %q", ErrInvalidWhen, when)
	}
	return s, nil
}

// alignsToMidnight reports whether rollovers happen at a day boundary.
func (s Schedule) alignsToMidnight() bool {
	return s.When == "MIDNIGHT" || strings.HasPrefix(s.When, "W")
}

// Next returns the first rollover time after t. t must already be in the
// location rollovers are computed in.
func (s Schedule) Next(t time.Time) time.Time {
	if !s.alignsToMidnight() {
		return t.Add(s.Interval)
	}
	y, m, d := t.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	if strings.HasPrefix(s.When, "W") {
		today := (int(t.Weekday()) + 6) % 7 // Monday = 0
		if today != s.weekday {
			var wait int
			if today < s.weekday {
				wait = s.weekday - today
			} else {
				wait = 6 - today + s.weekday + 1
			}
			next = next.AddDate(0, 0, wait)
		}
	}
	return next
}

// periodStart returns the start of the period that ends at rolloverAt.
func (s Schedule) periodStart(rolloverAt time.Time) time.Time {
	if s.alignsToMidnight() {
		days := int(s.Interval / day)
		return rolloverAt.AddDate(0, 0, -days)
	}
	return rolloverAt.Add(-s.Interval)
}

// SegmentName returns the rotated segment name for a period starting at t.
func (s Schedule) SegmentName(base string, t time.Time) string {
	return base + "." + t.Format(s.Suffix)
}

// IsSegmentSuffix reports whether suffix (the part after "<base>.") is a rotation timestamp.
func (s Schedule) IsSegmentSuffix(suffix string) bool {
	return s.match.MatchString(suffix)
}
