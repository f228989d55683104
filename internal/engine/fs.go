package engine

import (
	"os"

	"github.com/thoreinstein/snapback/internal/lock"
)

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// removeDir removes the (by now empty) backup root.
func removeDir(path string) error {
	return os.Remove(path)
}

// ManagerLocker adapts a *lock.Manager to the Locker interface.
type ManagerLocker struct {
	Manager *lock.Manager
}

func (l ManagerLocker) Acquire() (Unlocker, error) {
	lk, err := l.Manager.Acquire()
	if err != nil {
		return nil, err
	}
	return lk, nil
}
