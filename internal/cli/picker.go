package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/snapback/internal/config"
)

var (
	// ErrNoTargets indicates an empty targets section in the config file.
	ErrNoTargets = errors.New("no targets configured")

	// ErrSelectionAborted indicates the user quit the picker.
	ErrSelectionAborted = errors.New("selection aborted")
)

// PickTarget resolves which target a command operates on. A single
// configured target is selected without prompting; with several, the
// fuzzy finder opens. Aborting the finder surfaces ErrSelectionAborted.
func PickTarget(cfg *config.Config) (string, error) {
	names := cfg.TargetNames()
	if len(names) == 0 {
		return "", ErrNoTargets
	}
	if len(names) == 1 {
		return names[0], nil
	}

	idx, err := fuzzyfinder.Find(
		names,
		func(i int) string {
			return names[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			t, err := cfg.Target(names[i])
			if err != nil {
				return ""
			}
			return fmt.Sprintf("Source: %s\nBackups: %s\nRetain all: %s\nRetain daily: %s",
				t.Source,
				t.Backups,
				t.RetainAll.Std(),
				t.RetainDaily.Std(),
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", ErrSelectionAborted
		}
		return "", errors.Wrap(err, "selecting target")
	}
	return names[idx], nil
}
