// Package lock provides the per-target advisory lock that serializes
// lifecycle-mutating operations across processes.
//
// The lock is a file created with O_EXCL in the target's backup root.
// Acquisition is fail-fast: a held lock is a "target busy" condition for
// this invocation, never something to wait on: stacked cron invocations
// are a configuration error to surface, not hide. Distinct targets lock
// independently and run fully in parallel.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

// Filename is the lockfile name inside a backup root. SnapshotSet skips it
// when listing, so it coexists with snapshot directories.
const Filename = ".sync_lock"

// Info describes the holder of a lock. It is written into the lockfile so
// a busy error can say who is in the way.
type Info struct {
	PID        int       `toml:"pid"`
	Hostname   string    `toml:"hostname"`
	AcquiredAt time.Time `toml:"acquired_at"`
}

// BusyError indicates the target is locked by another invocation.
// It is safe to retry later; no mutation was attempted.
type BusyError struct {
	Path   string
	Holder Info
}

func (e *BusyError) Error() string {
	if e.Holder.PID != 0 {
		return fmt.Sprintf("target busy: %s held by pid %d since %s",
			e.Path, e.Holder.PID, e.Holder.AcquiredAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("target busy: %s already exists", e.Path)
}

// Is matches the shared target-busy sentinel, so callers can classify the
// failure without importing this package's concrete type.
func (e *BusyError) Is(target error) bool {
	return target == snaperrors.ErrTargetBusy
}

// Manager acquires locks for one backup root.
type Manager struct {
	dir string
}

// NewManager returns a Manager locking inside the given backup root.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Lock is a held advisory lock. Release it exactly once.
type Lock struct {
	path string
}

// Acquire creates the lockfile or fails immediately with a *BusyError when
// it already exists. A missing backup root surfaces as-is so the caller
// can report "did you run setup?".
func (m *Manager) Acquire() (*Lock, error) {
	path := filepath.Join(m.dir, Filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &BusyError{Path: path, Holder: readInfo(path)}
		}
		return nil, errors.Wrap(err, "creating lockfile")
	}

	hostname, _ := os.Hostname()
	info := Info{
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: time.Now(),
	}
	if err := toml.NewEncoder(f).Encode(info); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "writing lockfile")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "closing lockfile")
	}

	return &Lock{path: path}, nil
}

// Release removes the lockfile. A lockfile that vanished while held is an
// error: some other process may have "freed" the target under us.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil {
		return errors.Wrap(err, "removing lockfile")
	}
	return nil
}

// readInfo best-effort parses holder info out of an existing lockfile.
func readInfo(path string) Info {
	var info Info
	data, err := os.ReadFile(path)
	if err != nil {
		return info
	}
	_ = toml.Unmarshal(data, &info)
	return info
}
