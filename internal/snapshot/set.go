// Package snapshot provides a read-only view over the snapshots present in
// a backup root.
//
// The filesystem is the source of truth: a Set is re-derived from the
// directory listing on every operation and never cached across invocations,
// so every command is safe to re-run after a crash.
package snapshot

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/snapback/internal/timestamp"
)

// StagingDir is the writable subvolume inside a backup root that receives
// the in-progress transfer before it is committed to a read-only snapshot.
const StagingDir = ".sync"

// ErrRootNotFound indicates the backup root does not exist. Usually the
// target has not been set up yet or the filesystem is not mounted.
var ErrRootNotFound = errors.New("backup root not found")

// Set is an ordered, oldest-first view of the committed snapshots under a
// backup root at the moment Load was called.
type Set struct {
	root  string
	names []timestamp.Name
}

// Load lists the immediate subdirectories of root and keeps those whose
// names parse as snapshot names. Foreign files, the staging dir and the
// lockfile coexist in the backup root and are skipped, not errors.
func Load(root string) (*Set, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRootNotFound, "%s", root)
		}
		return nil, errors.Wrap(err, "reading backup root")
	}

	var names []timestamp.Name
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := timestamp.Parse(entry.Name())
		if err != nil {
			continue
		}
		names = append(names, n)
	}

	slices.SortFunc(names, timestamp.Name.Compare)
	return &Set{root: root, names: names}, nil
}

// Root returns the backup root this set was loaded from.
func (s *Set) Root() string {
	return s.root
}

// Len returns the number of snapshots in the set.
func (s *Set) Len() int {
	return len(s.names)
}

// All returns the snapshot names oldest first. The returned slice is a
// copy and may be modified by the caller.
func (s *Set) All() []timestamp.Name {
	return slices.Clone(s.names)
}

// Latest returns the most recent snapshot, or false when the set is empty.
// An empty set is a valid state meaning "no backups yet".
func (s *Set) Latest() (timestamp.Name, bool) {
	if len(s.names) == 0 {
		return timestamp.Name{}, false
	}
	return s.names[len(s.names)-1], true
}

// Path returns the directory of the named snapshot inside the backup root.
func (s *Set) Path(n timestamp.Name) string {
	return filepath.Join(s.root, n.String())
}

// StagingPath returns the staging directory inside the backup root.
func (s *Set) StagingPath() string {
	return filepath.Join(s.root, StagingDir)
}
