// Package engine orchestrates the snapshot lifecycle for one backup
// target: setup, backup, list, prune, decay, destroy and clean.
//
// Every operation starts by re-deriving the snapshot set from the
// filesystem and ends with the target back in an idle state. Mutating
// operations hold the target's advisory lock for their whole span, so the
// enumerated set and the eventual mutations are consistent; list runs
// without the lock and tolerates a slightly stale view. Byte transfer and
// subvolume manipulation are delegated to the Syncer and Subvolumes
// collaborators, which tests replace with fakes.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/snapback/internal/config"
	snaperrors "github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/retention"
	"github.com/thoreinstein/snapback/internal/rsync"
	"github.com/thoreinstein/snapback/internal/snapshot"
	"github.com/thoreinstein/snapback/internal/timestamp"
)

// Syncer is the incremental file-transfer collaborator.
type Syncer interface {
	Sync(ctx context.Context, source, dest string, opts rsync.Options) error
	CheckReachable(ctx context.Context, source string) error
}

// Subvolumes is the copy-on-write filesystem collaborator.
type Subvolumes interface {
	Create(ctx context.Context, path string) error
	Snapshot(ctx context.Context, src, dst string, readonly bool) error
	Delete(ctx context.Context, path string) error
	IsBtrfs(ctx context.Context, path string) bool
}

// Unlocker releases a held target lock.
type Unlocker interface {
	Release() error
}

// Locker acquires the target-scoped advisory lock. Acquisition is
// fail-fast; a held lock surfaces as a target-busy error.
type Locker interface {
	Acquire() (Unlocker, error)
}

// Confirm authorizes the deletion of one snapshot. It backs the
// interactive y/N guard; ConfirmAll bypasses it.
type Confirm func(name timestamp.Name) bool

// ConfirmAll authorizes every deletion (the --yes flag and auto actions).
func ConfirmAll(timestamp.Name) bool { return true }

// BackupOptions control a single backup run.
type BackupOptions struct {
	// Checksum verifies the transfer by checksum instead of size/mtime.
	Checksum bool
	// Progress streams transfer output to the terminal.
	Progress bool
	// DryRun shows what would be transferred; nothing is committed.
	DryRun bool
}

// Entry describes one snapshot for display.
type Entry struct {
	Name timestamp.Name
	Age  time.Duration
	// Reason is why prune would keep this snapshot; empty marks a prune
	// candidate.
	Reason retention.Reason
	// DecayCandidate marks snapshots the decay cutoff would remove.
	DecayCandidate bool
}

// Result reports the outcome of a prune, decay or destroy pass.
type Result struct {
	// Deleted lists the snapshots actually removed.
	Deleted []timestamp.Name
	// Skipped lists snapshots whose deletion was declined at the prompt.
	Skipped []timestamp.Name
	// Kept is the number of snapshots retained by policy.
	Kept int
}

// Engine runs lifecycle operations against one backup target.
type Engine struct {
	target config.Target
	syncer Syncer
	subvol Subvolumes
	locker Locker
	log    *slog.Logger

	clock func() time.Time
	names timestamp.Generator
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an Engine for the given target and collaborators.
func New(target config.Target, syncer Syncer, subvol Subvolumes, locker Locker, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		target: target,
		syncer: syncer,
		subvol: subvol,
		locker: locker,
		log:    logger.With("target", target.Name),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) stagingPath() string {
	return filepath.Join(e.target.Backups, snapshot.StagingDir)
}

func (e *Engine) params() retention.Params {
	return retention.Params{
		RetainAll:   e.target.RetainAll.Std(),
		RetainDaily: e.target.RetainDaily.Std(),
	}
}

// Setup creates the backup root if needed and verifies it lives on a
// btrfs filesystem. Safe to call on an already-initialized target; the
// first backup establishes the baseline. The lock is taken once the root
// exists, so setup racing another operation fails fast like the rest.
func (e *Engine) Setup(ctx context.Context) error {
	if err := mkdirAll(e.target.Backups); err != nil {
		return errors.Wrap(err, "creating backup root")
	}

	lk, err := e.locker.Acquire()
	if err != nil {
		return err
	}
	defer e.release(lk)

	if !e.subvol.IsBtrfs(ctx, e.target.Backups) {
		return errors.Wrapf(snaperrors.ErrInvalidConfig, "backup root %q is not on a btrfs filesystem", e.target.Backups)
	}
	e.log.Info("backup root ready", "path", e.target.Backups)
	return nil
}

// Backup transfers the source into the staging subvolume and commits it
// as a new read-only snapshot. On any failure the staging area is
// discarded before the lock is released, leaving prior snapshots and the
// snapshot count untouched. With DryRun nothing is committed and the zero
// Name is returned.
func (e *Engine) Backup(ctx context.Context, opts BackupOptions) (timestamp.Name, error) {
	name, err := e.backup(ctx, opts)
	if err != nil || opts.DryRun {
		return name, err
	}

	// Auto actions are best-effort: a failure here does not undo the
	// completed backup.
	if e.target.AutoDecay {
		if _, err := e.Decay(ctx, ConfirmAll); err != nil {
			e.log.Warn("autodecay failed", "error", err)
		}
	}
	if e.target.AutoPrune {
		if _, err := e.Prune(ctx, ConfirmAll); err != nil {
			e.log.Warn("autoprune failed", "error", err)
		}
	}
	return name, nil
}

func (e *Engine) backup(ctx context.Context, opts BackupOptions) (timestamp.Name, error) {
	if err := e.syncer.CheckReachable(ctx, e.target.Source); err != nil {
		return timestamp.Name{}, err
	}

	lk, err := e.locker.Acquire()
	if err != nil {
		return timestamp.Name{}, err
	}
	defer e.release(lk)

	set, err := snapshot.Load(e.target.Backups)
	if err != nil {
		return timestamp.Name{}, err
	}

	if err := e.ensureStaging(ctx, set); err != nil {
		return timestamp.Name{}, err
	}

	staging := e.stagingPath()
	syncOpts := rsync.Options{
		Exclude:  e.target.Ignore,
		Checksum: opts.Checksum,
		Progress: opts.Progress,
		DryRun:   opts.DryRun,
	}
	if err := e.syncer.Sync(ctx, e.target.Source, staging, syncOpts); err != nil {
		e.discardStaging(ctx)
		return timestamp.Name{}, err
	}

	if opts.DryRun {
		return timestamp.Name{}, nil
	}

	// A fresh process must not reuse the name of the snapshot it just
	// loaded, so the generator learns the on-disk high water mark first.
	if latest, ok := set.Latest(); ok {
		e.names.Seed(latest)
	}
	name := e.names.Next(e.clock())
	dest := filepath.Join(e.target.Backups, name.String())
	if err := e.subvol.Snapshot(ctx, staging, dest, true); err != nil {
		e.discardStaging(ctx)
		return timestamp.Name{}, errors.Mark(err, snaperrors.ErrCommitFailed)
	}

	e.log.Info("backup committed", "snapshot", name.String())
	return name, nil
}

// ensureStaging makes sure the staging subvolume exists, seeding it from
// the latest snapshot when one exists so unchanged files share extents.
func (e *Engine) ensureStaging(ctx context.Context, set *snapshot.Set) error {
	staging := e.stagingPath()
	if dirExists(staging) {
		return nil
	}
	if latest, ok := set.Latest(); ok {
		e.log.Debug("seeding staging from latest snapshot", "base", latest.String())
		return e.subvol.Snapshot(ctx, set.Path(latest), staging, false)
	}
	e.log.Debug("creating empty staging subvolume")
	return e.subvol.Create(ctx, staging)
}

// discardStaging removes a staging area that did not reach commit. The
// next backup reseeds it from the latest snapshot.
func (e *Engine) discardStaging(ctx context.Context) {
	if err := e.subvol.Delete(ctx, e.stagingPath()); err != nil {
		e.log.Warn("could not discard staging directory", "error", err)
	}
}

// List returns the snapshots oldest first, annotated with the retention
// verdicts prune and decay would reach right now. It takes no lock.
func (e *Engine) List(ctx context.Context) ([]Entry, error) {
	set, err := snapshot.Load(e.target.Backups)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	pruneDecisions := retention.Prune(set, now, e.params())
	decayDecisions := retention.Decay(set, now, e.target.Decay.Std())

	entries := make([]Entry, set.Len())
	for i, n := range set.All() {
		entries[i] = Entry{
			Name:           n,
			Age:            n.Age(now),
			Reason:         pruneDecisions[i].Reason,
			DecayCandidate: !decayDecisions[i].Keep,
		}
	}
	return entries, nil
}

// Prune applies the tiered retention policy and deletes every snapshot it
// does not keep. A failed deletion is reported and skipped; the pass
// continues and is safe to retry.
func (e *Engine) Prune(ctx context.Context, confirm Confirm) (Result, error) {
	return e.applyPolicy(ctx, confirm, func(set *snapshot.Set) []retention.Decision {
		return retention.Prune(set, e.clock(), e.params())
	})
}

// Decay applies the hard age cutoff. With no decay window configured it
// keeps everything.
func (e *Engine) Decay(ctx context.Context, confirm Confirm) (Result, error) {
	return e.applyPolicy(ctx, confirm, func(set *snapshot.Set) []retention.Decision {
		return retention.Decay(set, e.clock(), e.target.Decay.Std())
	})
}

func (e *Engine) applyPolicy(ctx context.Context, confirm Confirm, decide func(*snapshot.Set) []retention.Decision) (Result, error) {
	lk, err := e.locker.Acquire()
	if err != nil {
		return Result{}, err
	}
	defer e.release(lk)

	set, err := snapshot.Load(e.target.Backups)
	if err != nil {
		return Result{}, err
	}

	var result Result
	var deleteErrs error
	for _, d := range decide(set) {
		if d.Keep {
			result.Kept++
			continue
		}
		if !confirm(d.Name) {
			result.Skipped = append(result.Skipped, d.Name)
			continue
		}
		if err := e.subvol.Delete(ctx, set.Path(d.Name)); err != nil {
			e.log.Error("could not delete snapshot", "snapshot", d.Name.String(), "error", err)
			deleteErrs = errors.CombineErrors(deleteErrs, err)
			continue
		}
		e.log.Info("deleted snapshot", "snapshot", d.Name.String())
		result.Deleted = append(result.Deleted, d.Name)
	}
	return result, deleteErrs
}

// Destroy deletes every snapshot, the staging area and the backup root
// itself. Irreversible. Declined confirmations leave the root in place.
func (e *Engine) Destroy(ctx context.Context, confirm Confirm) (Result, error) {
	lk, err := e.locker.Acquire()
	if err != nil {
		return Result{}, err
	}

	set, err := snapshot.Load(e.target.Backups)
	if err != nil {
		e.release(lk)
		return Result{}, err
	}

	e.discardStaging(ctx)

	var result Result
	var deleteErrs error
	for _, n := range set.All() {
		if !confirm(n) {
			result.Skipped = append(result.Skipped, n)
			continue
		}
		if err := e.subvol.Delete(ctx, set.Path(n)); err != nil {
			e.log.Error("could not delete snapshot", "snapshot", n.String(), "error", err)
			deleteErrs = errors.CombineErrors(deleteErrs, err)
			continue
		}
		result.Deleted = append(result.Deleted, n)
	}

	// The lockfile lives inside the root, so release before removing it.
	e.release(lk)
	if deleteErrs != nil || len(result.Skipped) > 0 {
		return result, deleteErrs
	}
	if err := removeDir(e.target.Backups); err != nil {
		return result, errors.Wrap(err, "removing backup root")
	}
	e.log.Info("backup root destroyed", "path", e.target.Backups)
	return result, nil
}

// Clean deletes the staging subvolume. The next backup recreates it from
// the latest snapshot.
func (e *Engine) Clean(ctx context.Context) error {
	lk, err := e.locker.Acquire()
	if err != nil {
		return err
	}
	defer e.release(lk)

	if !dirExists(e.stagingPath()) {
		return nil
	}
	return e.subvol.Delete(ctx, e.stagingPath())
}

func (e *Engine) release(lk Unlocker) {
	if err := lk.Release(); err != nil {
		e.log.Error("could not release target lock", "error", err)
	}
}
