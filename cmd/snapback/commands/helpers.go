package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/btrfs"
	"github.com/thoreinstein/snapback/internal/cli"
	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/engine"
	"github.com/thoreinstein/snapback/internal/lock"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/rsync"
	"github.com/thoreinstein/snapback/internal/timestamp"
)

// resolveTarget picks the target a command operates on: the positional
// argument when given, the only configured target when there is exactly
// one, otherwise the interactive picker (TTY only).
func resolveTarget(cfg *config.Config, args []string) (config.Target, error) {
	if len(args) > 0 {
		return cfg.Target(args[0])
	}

	if len(cfg.TargetNames()) > 1 && !logging.IsTTY(os.Stdout) {
		return config.Target{}, fmt.Errorf("target name required (configured: %v)", cfg.TargetNames())
	}

	name, err := cli.PickTarget(cfg)
	if err != nil {
		return config.Target{}, err
	}
	return cfg.Target(name)
}

// newEngine wires a lifecycle engine for the target with the real rsync,
// btrfs and lockfile collaborators.
func newEngine(cmd *cobra.Command, target config.Target) *engine.Engine {
	logger := logging.FromContext(cmd.Context())
	return engine.New(
		target,
		rsync.New(logger),
		btrfs.New(logger),
		engine.ManagerLocker{Manager: lock.NewManager(target.Backups)},
		logger,
	)
}

// confirmFunc builds the per-snapshot deletion guard: --yes skips the
// prompt entirely.
func confirmFunc(cmd *cobra.Command, yes bool, verb string) engine.Confirm {
	if yes {
		return engine.ConfirmAll
	}
	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return func(name timestamp.Name) bool {
		return prompter.Confirm(fmt.Sprintf("%s snapshot %s?", verb, name.String()))
	}
}

// formatAge renders a snapshot age the way humans reason about retention:
// minutes, then hours, then days.
func formatAge(age time.Duration) string {
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%.1fh", age.Hours())
	default:
		return fmt.Sprintf("%.1fd", age.Hours()/24)
	}
}
