// Package rsync wraps the external incremental-transfer tool.
//
// The transfer populates the staging subvolume in place: unchanged files
// cost nothing because staging already holds the previous snapshot's
// content on the same copy-on-write filesystem, so rsync only rewrites
// what changed. Remote sources use rsync's own transport; snapback adds no
// transport of its own.
package rsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

// Options controls a single transfer.
type Options struct {
	// Exclude lists rsync exclude patterns.
	Exclude []string

	// Checksum detects changes by checksum instead of size and mtime.
	// Significantly more disk load; off by default.
	Checksum bool

	// Progress streams rsync output to the terminal.
	Progress bool

	// DryRun passes --dry-run and streams rsync's output; nothing is
	// written to the destination.
	DryRun bool
}

// Client runs rsync transfers.
type Client struct {
	log *slog.Logger
}

// New returns a Client logging through the given logger.
func New(logger *slog.Logger) *Client {
	return &Client{log: logger}
}

// Sync transfers source into dest. Interruption or any non-zero rsync
// exit surfaces as ErrSyncFailed with the exit code; partial transfers are
// never reported as success.
func (c *Client) Sync(ctx context.Context, source, dest string, opts Options) error {
	argv := args(source, dest, opts)
	c.log.Debug("running rsync", "args", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, "rsync", argv...)
	if opts.Progress || opts.DryRun {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return wrapSyncErr(err, dest)
		}
		return nil
	}

	out, err := cmd.CombinedOutput()
	c.log.Log(ctx, logging.LevelTrace, "rsync output", "output", string(out))
	if err != nil {
		return wrapSyncErr(err, dest)
	}
	return nil
}

// CheckReachable verifies the source can be listed before any mutation is
// attempted. Remote sources are probed through ssh the same way the
// transfer will reach them.
func (c *Client) CheckReachable(ctx context.Context, source string) error {
	if host, path, ok := splitRemote(source); ok {
		cmd := exec.CommandContext(ctx, "ssh", host, "ls", path)
		if out, err := cmd.CombinedOutput(); err != nil {
			c.log.Log(ctx, logging.LevelTrace, "ssh ls output", "output", string(out))
			return errors.Wrapf(snaperrors.ErrSourceNotReachable, "%s", source)
		}
		return nil
	}
	if _, err := os.Stat(source); err != nil {
		return errors.Wrapf(snaperrors.ErrSourceNotReachable, "%s", source)
	}
	return nil
}

// IsRemote reports whether source uses rsync remote syntax (host:path or
// user@host:path).
func IsRemote(source string) bool {
	_, _, ok := splitRemote(source)
	return ok
}

func splitRemote(source string) (host, path string, ok bool) {
	i := strings.IndexByte(source, ':')
	if i <= 0 || strings.ContainsRune(source[:i], '/') {
		return "", "", false
	}
	return source[:i], source[i+1:], true
}

// args builds the rsync argument vector. Deletions propagate so the
// staging dir converges on the source; --sparse keeps sparse files sparse
// on the snapshot filesystem.
func args(source, dest string, opts Options) []string {
	argv := []string{"--human-readable", "--itemize-changes", "--stats",
		"-azv", "--sparse", "--delete", "--delete-excluded"}
	for _, pattern := range opts.Exclude {
		argv = append(argv, "--exclude="+pattern)
	}
	if opts.Checksum {
		argv = append(argv, "--checksum")
	}
	if opts.DryRun {
		argv = append(argv, "--dry-run")
	}
	// Trailing slash: copy the contents of source, not source itself.
	return append(argv, strings.TrimSuffix(source, "/")+"/", dest)
}

func wrapSyncErr(err error, dest string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.Wrapf(snaperrors.ErrSyncFailed,
			"rsync exited with code %d, %q may be in an inconsistent state", exitErr.ExitCode(), dest)
	}
	return errors.Wrap(err, fmt.Sprintf("running rsync to %q", dest))
}
