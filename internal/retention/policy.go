// Package retention decides which snapshots survive a pruning pass.
//
// Both algorithms are pure functions of the snapshot set and a reference
// instant, so a decision can always be re-derived from the directory
// listing alone. Re-running either against the same filesystem state yields
// the same decisions.
package retention

import (
	"time"

	"github.com/thoreinstein/snapback/internal/snapshot"
	"github.com/thoreinstein/snapback/internal/timestamp"
)

// Reason classifies why a snapshot is kept.
type Reason string

const (
	// ReasonLatest marks the single most recent snapshot, kept
	// unconditionally so a misconfigured policy can never delete the only
	// backup.
	ReasonLatest Reason = "latest"

	// ReasonRetainAll marks snapshots inside the retain_all window.
	ReasonRetainAll Reason = "retain-all"

	// ReasonDaily marks the last snapshot of a calendar day inside the
	// retain_daily window.
	ReasonDaily Reason = "daily"

	// ReasonWeekly marks the last snapshot of an ISO week older than the
	// retain_daily window. Weekly snapshots are kept forever; only decay
	// removes them.
	ReasonWeekly Reason = "weekly"

	// ReasonDecay marks snapshots young enough to survive a decay pass.
	ReasonDecay Reason = "decay-window"
)

// Params holds the prune policy windows. Ages are measured from the
// reference instant; bucket membership is by calendar boundary.
type Params struct {
	// RetainAll keeps every snapshot younger than this.
	RetainAll time.Duration

	// RetainDaily keeps one snapshot per calendar day for snapshots
	// younger than this. Older snapshots fall through to the weekly rule.
	RetainDaily time.Duration
}

// Decision records the verdict for one snapshot. Decisions are returned in
// set order, oldest first.
type Decision struct {
	Name timestamp.Name
	Keep bool
	// Reason is set when Keep is true.
	Reason Reason
}

// Prune computes the keep-set as the union of four groups: the latest
// snapshot, everything inside retain_all, the last snapshot of each
// calendar day inside retain_daily, and the last snapshot of each ISO week
// beyond retain_daily. A snapshot kept by any rule is kept.
func Prune(set *snapshot.Set, now time.Time, p Params) []Decision {
	names := set.All()
	decisions := make([]Decision, len(names))

	// Last snapshot per bucket wins; walking oldest first means a later
	// snapshot in the same bucket displaces the earlier one.
	lastOfDay := make(map[string]int)
	lastOfWeek := make(map[string]int)
	for i, n := range names {
		if n.Age(now) <= p.RetainDaily {
			lastOfDay[n.DayKey()] = i
		} else {
			lastOfWeek[n.WeekKey()] = i
		}
	}

	for i, n := range names {
		d := Decision{Name: n}
		switch {
		case i == len(names)-1:
			d.Keep, d.Reason = true, ReasonLatest
		case n.Age(now) <= p.RetainAll:
			d.Keep, d.Reason = true, ReasonRetainAll
		case lastOfDay[n.DayKey()] == i && n.Age(now) <= p.RetainDaily:
			d.Keep, d.Reason = true, ReasonDaily
		case lastOfWeek[n.WeekKey()] == i && n.Age(now) > p.RetainDaily:
			d.Keep, d.Reason = true, ReasonWeekly
		}
		decisions[i] = d
	}
	return decisions
}

// Decay keeps every snapshot younger than window and marks the rest for
// deletion, overriding the prune rules entirely. Two exceptions: a zero
// window disables decay (everything is kept), and if the cutoff would
// delete every snapshot the latest one is exempted, since only an explicit
// destroy may leave a target with zero snapshots.
func Decay(set *snapshot.Set, now time.Time, window time.Duration) []Decision {
	names := set.All()
	decisions := make([]Decision, len(names))

	kept := 0
	for i, n := range names {
		d := Decision{Name: n}
		if window == 0 || n.Age(now) <= window {
			d.Keep, d.Reason = true, ReasonDecay
			kept++
		}
		decisions[i] = d
	}

	if kept == 0 && len(decisions) > 0 {
		last := &decisions[len(decisions)-1]
		last.Keep, last.Reason = true, ReasonLatest
	}
	return decisions
}

// Deletions filters decisions down to the snapshots marked for deletion.
func Deletions(decisions []Decision) []timestamp.Name {
	var out []timestamp.Name
	for _, d := range decisions {
		if !d.Keep {
			out = append(out, d.Name)
		}
	}
	return out
}
