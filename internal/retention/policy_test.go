package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/snapback/internal/snapshot"
	"github.com/thoreinstein/snapback/internal/timestamp"
)

const day = 24 * time.Hour

// now is a fixed Wednesday so week boundaries are predictable.
var now = time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)

// loadSet materializes snapshot directories named after the given offsets
// from now and loads them as a Set.
func loadSet(t *testing.T, ages ...time.Duration) *snapshot.Set {
	t.Helper()
	root := t.TempDir()
	for _, age := range ages {
		name := now.Add(-age).Format(timestamp.Layout)
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}
	set, err := snapshot.Load(root)
	require.NoError(t, err)
	return set
}

func keepReasons(decisions []Decision) map[string]Reason {
	out := make(map[string]Reason)
	for _, d := range decisions {
		if d.Keep {
			out[d.Name.String()] = d.Reason
		}
	}
	return out
}

func TestPruneEmptySet(t *testing.T) {
	set := loadSet(t)
	decisions := Prune(set, now, Params{RetainAll: day, RetainDaily: 14 * day})
	assert.Empty(t, decisions)
	assert.Empty(t, Deletions(decisions))
}

func TestPruneSingleSnapshotAlwaysKept(t *testing.T) {
	// Far older than every window.
	set := loadSet(t, 400*day)
	decisions := Prune(set, now, Params{RetainAll: day, RetainDaily: 14 * day})

	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Keep)
	assert.Equal(t, ReasonLatest, decisions[0].Reason)
}

func TestPruneKeepsLatestPerDayInsideDailyWindow(t *testing.T) {
	// Three snapshots on the same calendar day, three days ago.
	set := loadSet(t,
		3*day+10*time.Hour,
		3*day+5*time.Hour,
		3*day+1*time.Hour,
		1*time.Hour, // latest
	)
	decisions := Prune(set, now, Params{RetainAll: 2 * time.Hour, RetainDaily: 14 * day})
	kept := keepReasons(decisions)

	require.Len(t, kept, 2)
	assert.Equal(t, ReasonDaily, kept[set.All()[2].String()], "latest of the day survives")
	assert.Equal(t, ReasonLatest, kept[set.All()[3].String()])
	assert.Len(t, Deletions(decisions), 2)
}

func TestPruneKeepsLatestPerWeekBeyondDailyWindow(t *testing.T) {
	// Two snapshots in the same ISO week, six weeks ago.
	set := loadSet(t,
		43*day,
		41*day,
		1*time.Hour,
	)
	decisions := Prune(set, now, Params{RetainAll: day, RetainDaily: 14 * day})
	kept := keepReasons(decisions)

	names := set.All()
	assert.NotContains(t, kept, names[0].String(), "older same-week snapshot pruned")
	assert.Equal(t, ReasonWeekly, kept[names[1].String()])
	assert.Equal(t, ReasonLatest, kept[names[2].String()])
}

func TestPruneScenarioFromDesign(t *testing.T) {
	// T-40d, T-10d, T-3d, T-1d, T with retain_all=2d, retain_daily=14d.
	set := loadSet(t, 40*day, 10*day, 3*day, day, 0)
	decisions := Prune(set, now, Params{RetainAll: 2 * day, RetainDaily: 14 * day})
	kept := keepReasons(decisions)

	names := set.All()
	assert.Equal(t, ReasonWeekly, kept[names[0].String()], "T-40d survives as weekly bucket")
	assert.Equal(t, ReasonDaily, kept[names[1].String()], "T-10d is its day's only snapshot")
	assert.Equal(t, ReasonDaily, kept[names[2].String()], "T-3d is its day's only snapshot")
	assert.Equal(t, ReasonRetainAll, kept[names[3].String()])
	assert.Equal(t, ReasonLatest, kept[names[4].String()])
	assert.Empty(t, Deletions(decisions))
}

func TestPruneIdempotent(t *testing.T) {
	set := loadSet(t, 60*day, 43*day, 41*day, 10*day, 3*day+2*time.Hour, 3*day, day, 0)
	params := Params{RetainAll: 2 * day, RetainDaily: 14 * day}

	first := Prune(set, now, params)

	// Apply the deletions, reload and re-run: nothing further to delete.
	for _, n := range Deletions(first) {
		require.NoError(t, os.RemoveAll(set.Path(n)))
	}
	reloaded, err := snapshot.Load(set.Root())
	require.NoError(t, err)
	second := Prune(reloaded, now, params)
	assert.Empty(t, Deletions(second))
}

func TestPruneFutureSnapshotKept(t *testing.T) {
	root := t.TempDir()
	future := now.Add(2 * time.Hour).Format(timestamp.Layout)
	past := now.Add(-25 * time.Hour).Format(timestamp.Layout)
	require.NoError(t, os.MkdirAll(filepath.Join(root, future), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, past), 0o755))

	set, err := snapshot.Load(root)
	require.NoError(t, err)
	decisions := Prune(set, now, Params{RetainAll: 30 * time.Minute, RetainDaily: 14 * day})

	// Clock skew is treated as age zero, not an error: the future-dated
	// snapshot sorts last and is kept as latest, yesterday's as its
	// day's representative.
	assert.Empty(t, Deletions(decisions))
}

func TestDecayHardCutoff(t *testing.T) {
	set := loadSet(t, 400*day, 100*day, 10*day, 0)
	decisions := Decay(set, now, 30*day)
	kept := keepReasons(decisions)

	names := set.All()
	require.Len(t, kept, 2)
	assert.Equal(t, ReasonDecay, kept[names[2].String()])
	assert.Equal(t, ReasonDecay, kept[names[3].String()])
	assert.Len(t, Deletions(decisions), 2)
}

func TestDecayZeroWindowKeepsEverything(t *testing.T) {
	set := loadSet(t, 400*day, 100*day, 10*day)
	decisions := Decay(set, now, 0)
	assert.Empty(t, Deletions(decisions))
}

func TestDecayNeverEmptiesTheSet(t *testing.T) {
	set := loadSet(t, 400*day, 100*day)
	decisions := Decay(set, now, 30*day)
	kept := keepReasons(decisions)

	names := set.All()
	require.Len(t, kept, 1)
	assert.Equal(t, ReasonLatest, kept[names[1].String()])
}

func TestDecayIdempotent(t *testing.T) {
	set := loadSet(t, 400*day, 100*day, 10*day, 0)

	first := Decay(set, now, 30*day)
	for _, n := range Deletions(first) {
		require.NoError(t, os.RemoveAll(set.Path(n)))
	}
	reloaded, err := snapshot.Load(set.Root())
	require.NoError(t, err)
	assert.Empty(t, Deletions(Decay(reloaded, now, 30*day)))
}
