// Package btrfs wraps the copy-on-write filesystem commands the lifecycle
// engine delegates to: subvolume create, snapshot and delete.
//
// Snapshot creation is atomic from the caller's point of view: either the
// destination directory fully exists (read-only when requested) or it does
// not exist at all. Every mutation is followed by a filesystem sync so a
// power loss right after a command cannot leave a half-registered
// subvolume.
package btrfs

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/snapback/internal/logging"
)

// Commands executes btrfs operations for one process.
type Commands struct {
	log *slog.Logger

	// run is swappable for tests; defaults to real subprocess execution.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns Commands logging through the given logger.
func New(logger *slog.Logger) *Commands {
	c := &Commands{log: logger}
	c.run = c.runExec
	return c
}

func (c *Commands) runExec(ctx context.Context, name string, args ...string) ([]byte, error) {
	c.log.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	c.log.Log(ctx, logging.LevelTrace, "command output", "cmd", name, "output", string(out))
	return out, err
}

// Create makes a new empty subvolume at path.
func (c *Commands) Create(ctx context.Context, path string) error {
	if _, err := c.run(ctx, "btrfs", "subvolume", "create", path); err != nil {
		return errors.Wrapf(err, "creating subvolume %q", path)
	}
	return c.sync(ctx, path)
}

// Snapshot makes a snapshot of src at dst. With readonly the snapshot is
// committed immutable; without it the snapshot seeds a writable staging
// area from a previous snapshot.
func (c *Commands) Snapshot(ctx context.Context, src, dst string, readonly bool) error {
	args := []string{"subvolume", "snapshot"}
	if readonly {
		args = append(args, "-r")
	}
	args = append(args, src, dst)
	if _, err := c.run(ctx, "btrfs", args...); err != nil {
		return errors.Wrapf(err, "snapshotting %q to %q", src, dst)
	}
	return c.sync(ctx, dst)
}

// Delete removes the subvolume at path. Subvolume deletion needs elevated
// privileges on most systems, hence sudo. Deleting a path that does not
// exist is success: retrying a partially-failed prune must converge.
func (c *Commands) Delete(ctx context.Context, path string) error {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return nil
	}
	if _, err := c.run(ctx, "sudo", "btrfs", "subvolume", "delete", path); err != nil {
		return errors.Wrapf(err, "deleting subvolume %q", path)
	}
	return c.sync(ctx, filepath.Dir(path))
}

// IsBtrfs reports whether path lives on a btrfs filesystem.
func (c *Commands) IsBtrfs(ctx context.Context, path string) bool {
	_, err := c.run(ctx, "btrfs", "filesystem", "df", path)
	return err == nil
}

// sync flushes the filesystem at path, a btrfs-aware variant of sync(1).
func (c *Commands) sync(ctx context.Context, path string) error {
	if _, err := c.run(ctx, "btrfs", "filesystem", "sync", path); err != nil {
		return errors.Wrapf(err, "syncing filesystem at %q", path)
	}
	return nil
}
