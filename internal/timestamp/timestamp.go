// Package timestamp implements the naming scheme for snapshot directories.
//
// A snapshot name is the instant the snapshot was committed, formatted as
// a fixed-width string (20060102T150405) so that lexicographic directory
// order equals chronological order. When two snapshots are committed within
// the same second, a two-digit suffix disambiguates them (…-01, …-02) while
// preserving sort order: '-' sorts below every digit, so a suffixed name
// still sorts before the next full second.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Layout is the base name format. Names use the local timezone, matching
// the calendar semantics of the retention buckets.
const Layout = "20060102T150405"

// ErrInvalidName indicates a string that is not a snapshot name.
// Directory entries that fail to parse are skipped by callers, not errors.
var ErrInvalidName = errors.New("invalid snapshot name")

// Name identifies one snapshot. The zero value is not a valid name.
type Name struct {
	t   time.Time
	seq int
}

// Parse converts a directory entry name into a Name.
// Accepted forms: "20060102T150405" and "20060102T150405-NN".
func Parse(s string) (Name, error) {
	base := s
	seq := 0
	if i := strings.IndexByte(s, '-'); i >= 0 {
		base = s[:i]
		suffix := s[i+1:]
		if len(suffix) != 2 {
			return Name{}, errors.Wrapf(ErrInvalidName, "bad suffix in %q", s)
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return Name{}, errors.Wrapf(ErrInvalidName, "bad suffix in %q", s)
		}
		seq = n
	}
	if len(base) != len(Layout) {
		return Name{}, errors.Wrapf(ErrInvalidName, "%q", s)
	}
	t, err := time.ParseInLocation(Layout, base, time.Local)
	if err != nil {
		return Name{}, errors.Wrapf(ErrInvalidName, "%q", s)
	}
	return Name{t: t, seq: seq}, nil
}

// IsName reports whether s parses as a snapshot name.
func IsName(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String formats the name as its directory entry.
func (n Name) String() string {
	if n.seq == 0 {
		return n.t.Format(Layout)
	}
	return fmt.Sprintf("%s-%02d", n.t.Format(Layout), n.seq)
}

// Time returns the instant this snapshot was committed, truncated to
// second resolution.
func (n Name) Time() time.Time {
	return n.t
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.t.IsZero() && n.seq == 0
}

// Compare orders names chronologically, suffix-disambiguated. It returns
// -1, 0 or 1 like [time.Time.Compare].
func (n Name) Compare(other Name) int {
	if c := n.t.Compare(other.t); c != 0 {
		return c
	}
	switch {
	case n.seq < other.seq:
		return -1
	case n.seq > other.seq:
		return 1
	}
	return 0
}

// Before reports whether n sorts before other.
func (n Name) Before(other Name) bool {
	return n.Compare(other) < 0
}

// Age returns now minus the snapshot instant, clamped at zero so that a
// clock-skewed, future-dated snapshot counts as brand new rather than
// breaking retention arithmetic.
func (n Name) Age(now time.Time) time.Duration {
	age := now.Sub(n.t)
	if age < 0 {
		return 0
	}
	return age
}

// DayKey returns the calendar-day bucket of the snapshot, e.g. "2026-08-26".
// Bucketing is by calendar boundary in the name's timezone, not by fixed
// 24h windows.
func (n Name) DayKey() string {
	return n.t.Format("2006-01-02")
}

// WeekKey returns the ISO-week bucket of the snapshot, e.g. "2026-W35".
func (n Name) WeekKey() string {
	year, week := n.t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Generator issues strictly increasing names. Two names requested in the
// same second differ by suffix. A fresh Generator knows nothing about names
// committed by earlier runs; callers seed it from the latest on-disk name
// so a new process cannot re-issue one that already exists.
type Generator struct {
	mu   sync.Mutex
	last Name
}

// Seed records an existing name so that Next never returns it or anything
// sorting at or below it. Seeding with a name older than the current high
// water mark is a no-op.
func (g *Generator) Seed(n Name) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last.Before(n) {
		g.last = n
	}
}

// Next returns a name for the given instant, strictly greater than any
// name this generator issued before.
func (g *Generator) Next(now time.Time) Name {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := Name{t: now.Truncate(time.Second)}
	if !g.last.IsZero() && n.Compare(g.last) <= 0 {
		n = Name{t: g.last.t, seq: g.last.seq + 1}
	}
	g.last = n
	return n
}
