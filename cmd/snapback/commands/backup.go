package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/engine"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/notify"
)

var (
	backupChecksum bool
	backupProgress bool
	backupDryRun   bool
	backupSource   string
	backupNotify   bool
)

func init() {
	backupCmd.Flags().BoolVar(&backupChecksum, "checksum", false, "Compare files by checksum instead of size and mtime")
	backupCmd.Flags().BoolVar(&backupProgress, "progress", false, "Stream transfer output to the terminal")
	backupCmd.Flags().BoolVarP(&backupDryRun, "dry-run", "n", false, "Show what would be transferred without committing a snapshot")
	backupCmd.Flags().StringVar(&backupSource, "source", "", "Back up this path instead of the configured source")
	backupCmd.Flags().BoolVar(&backupNotify, "notify", false, "Send a desktop notification when the backup finishes")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup [target]",
	Short: "Take a new snapshot of a target",
	Long: `Sync the source into the target's staging area and commit it as a
read-only snapshot named after the current time.

Only changes since the previous backup are transferred. If anything
fails before the snapshot is committed, the staging area is discarded
and the existing snapshots are untouched.`,
	Example: `  # Take a backup
  snapback backup home

  # Verify file contents by checksum (slow)
  snapback backup home --checksum

  # See what would change without committing anything
  snapback backup home --dry-run

  See Also: snapback list, snapback prune`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}
	if backupSource != "" {
		target.Source = backupSource
	}

	name, err := newEngine(cmd, target).Backup(cmd.Context(), engine.BackupOptions{
		Checksum: backupChecksum,
		Progress: backupProgress,
		DryRun:   backupDryRun,
	})
	sendNotification(cmd, target, err)
	if err != nil {
		return err
	}

	if backupDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run complete; no snapshot committed")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s committed\n", name.String())
	return nil
}

// sendNotification reports the backup outcome on the desktop when the
// target opts in. Best-effort; never fails the command.
func sendNotification(cmd *cobra.Command, target config.Target, backupErr error) {
	if (!backupNotify && target.NotifyRemote == "") || backupDryRun {
		return
	}

	logger := logging.FromContext(cmd.Context())
	title := fmt.Sprintf("snapback: %s", target.Name)
	if backupErr != nil {
		notify.Send(cmd.Context(), logger, title, fmt.Sprintf("backup failed: %v", backupErr), true, target.NotifyRemote)
		return
	}
	notify.Send(cmd.Context(), logger, title, "backup finished", false, target.NotifyRemote)
}
